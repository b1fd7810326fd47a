package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertHotel(ctx context.Context, db *gorm.DB, hotel *Hotel) error
	UpdateHotel(ctx context.Context, db *gorm.DB, hotel *Hotel) error
	FindHotelByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Hotel, error)
	ListHotels(ctx context.Context, db *gorm.DB) ([]Hotel, error)

	InsertCompetitor(ctx context.Context, db *gorm.DB, competitor *Competitor) error
	UpdateCompetitor(ctx context.Context, db *gorm.DB, competitor *Competitor) error
	DeleteCompetitor(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindCompetitorByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Competitor, error)
	FindCompetitorByName(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, name string) (*Competitor, error)
	// ListCompetitors returns the hotel's competitors ordered by name.
	ListCompetitors(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, activeOnly bool) ([]Competitor, error)
}
