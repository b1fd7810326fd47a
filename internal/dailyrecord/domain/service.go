package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	KindHotel      = "hotel"
	KindCompetitor = "competitor"
	KindAll        = "all"
)

type Service interface {
	// Write creates or replaces the record for the entity and date, then recalculates that date.
	Write(ctx context.Context, req WriteRequest) (*DailyRecord, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*DailyRecord, error)
	Delete(ctx context.Context, id snowflake.ID) error
	Get(ctx context.Context, id snowflake.ID) (*DailyRecord, error)
	List(ctx context.Context, filter ListFilter) ([]DailyRecord, error)
	// Save persists an already-derived record inside tx according to intent.
	Save(ctx context.Context, tx *gorm.DB, record *DailyRecord, intent UpdateIntent) error
}

// WriteRequest is the record_write contract used by data entry and import.
// Hotel writes carry TotalRevenue; competitor writes carry EstimatedAverageRate.
type WriteRequest struct {
	HotelID              snowflake.ID     `json:"-"`
	Kind                 string           `json:"entity_kind"`
	CompetitorID         snowflake.ID     `json:"competitor_id,omitempty"`
	Date                 string           `json:"date"`
	RoomsSold            int              `json:"rooms_sold"`
	TotalRevenue         *decimal.Decimal `json:"total_revenue,omitempty"`
	EstimatedAverageRate *decimal.Decimal `json:"estimated_average_rate,omitempty"`
	TotalRooms           *int             `json:"total_rooms,omitempty"`
	Notes                string           `json:"notes"`
}

type UpdateRequest struct {
	Date                 *string          `json:"date,omitempty"`
	RoomsSold            *int             `json:"rooms_sold,omitempty"`
	TotalRevenue         *decimal.Decimal `json:"total_revenue,omitempty"`
	EstimatedAverageRate *decimal.Decimal `json:"estimated_average_rate,omitempty"`
	TotalRooms           *int             `json:"total_rooms,omitempty"`
	Notes                *string          `json:"notes,omitempty"`
}

var (
	ErrNotFound             = errors.New("not_found")
	ErrInvalidKind          = errors.New("invalid_entity_kind")
	ErrInvalidHotel         = errors.New("invalid_hotel")
	ErrInvalidCompetitor    = errors.New("invalid_competitor")
	ErrInactiveCompetitor   = errors.New("inactive_competitor")
	ErrInvalidRoomsSold     = errors.New("invalid_rooms_sold")
	ErrInvalidRevenue       = errors.New("invalid_total_revenue")
	ErrInvalidRate          = errors.New("invalid_estimated_average_rate")
	ErrInvalidTotalRooms    = errors.New("invalid_total_rooms")
	ErrRoomsSoldExceedStock = errors.New("rooms_sold_exceeds_total_rooms")
	ErrInvalidIntent        = errors.New("invalid_update_intent")
	ErrDuplicateRecord      = errors.New("duplicate_daily_record")
)
