package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateHotel(ctx context.Context, req HotelRequest) (*Hotel, error)
	UpdateHotel(ctx context.Context, id snowflake.ID, req HotelRequest) (*Hotel, error)
	GetHotel(ctx context.Context, id snowflake.ID) (*Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)

	ListCompetitors(ctx context.Context, hotelID snowflake.ID, active *bool) ([]Competitor, error)
	ActiveCompetitors(ctx context.Context, hotelID snowflake.ID) ([]Competitor, error)
	CreateCompetitor(ctx context.Context, hotelID snowflake.ID, req CompetitorRequest) (*Competitor, error)
	UpdateCompetitor(ctx context.Context, id snowflake.ID, req UpdateCompetitorRequest) (*Competitor, error)
	DeactivateCompetitor(ctx context.Context, id snowflake.ID) (*Competitor, error)
	DeleteCompetitor(ctx context.Context, id snowflake.ID) error
}

type HotelRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	TotalRooms int    `json:"total_rooms"`
}

type CompetitorRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	TotalRooms int    `json:"total_rooms"`
	Notes      string `json:"notes"`
}

type UpdateCompetitorRequest struct {
	Name       *string `json:"name,omitempty"`
	Address    *string `json:"address,omitempty"`
	TotalRooms *int    `json:"total_rooms,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Status     *string `json:"status,omitempty"`
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrHotelNotFound      = errors.New("hotel_not_found")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidTotalRooms  = errors.New("invalid_total_rooms")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrDuplicateName      = errors.New("duplicate_competitor_name")
	ErrCompetitorNotOwned = errors.New("competitor_not_owned")
)
