package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	HotelID   snowflake.ID
	Kind      string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

type Repository interface {
	// Upsert inserts the record or overwrites the existing one for the same entity and date.
	Upsert(ctx context.Context, db *gorm.DB, record *DailyRecord) error
	Update(ctx context.Context, db *gorm.DB, record *DailyRecord) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DailyRecord, error)
	FindByEntityDate(ctx context.Context, db *gorm.DB, hotelID, competitorID snowflake.ID, date time.Time) (*DailyRecord, error)
	ListForDate(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) ([]DailyRecord, error)
	ListInRange(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, start, end time.Time) ([]DailyRecord, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]DailyRecord, error)

	DatesForCompetitor(ctx context.Context, db *gorm.DB, competitorID snowflake.ID) ([]time.Time, error)
	DeleteByCompetitor(ctx context.Context, db *gorm.DB, competitorID snowflake.ID) error

	// UpdateCachedIndices touches only the three cached index columns.
	UpdateCachedIndices(ctx context.Context, db *gorm.DB, id snowflake.ID, indices CachedIndices) error
	// ClearCachedIndices nulls the cached index columns of every record on the date.
	ClearCachedIndices(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) error
}
