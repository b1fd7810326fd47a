package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Recalculator rebuilds one date's snapshot, indices and ranks inside the caller's transaction.
// A nil snapshot with a nil error means the hotel has no record for the date.
type Recalculator interface {
	Recalculate(ctx context.Context, tx *gorm.DB, hotelID snowflake.ID, date time.Time) (*MarketSnapshot, error)
}

type Service interface {
	Recalculator

	// RecalculateDate runs Recalculate in its own transaction.
	RecalculateDate(ctx context.Context, hotelID snowflake.ID, date time.Time) (*MarketSnapshot, error)
	GetMarketSnapshot(ctx context.Context, hotelID snowflake.ID, date time.Time) (*MarketSnapshot, error)
	GetPerformanceIndex(ctx context.Context, hotelID, competitorID snowflake.ID, date time.Time) (*PerformanceIndex, error)
	GetRankings(ctx context.Context, hotelID snowflake.ID, date time.Time) ([]RankingEntry, error)
}

var (
	ErrNotFound      = errors.New("not_found")
	ErrInvalidHotel  = errors.New("invalid_hotel")
	ErrHotelNotFound = errors.New("hotel_not_found")
)

type triggerKey struct{}

const (
	TriggerRecordWrite  = "record_write"
	TriggerRecordDelete = "record_delete"
	TriggerManual       = "manual"
	TriggerReconcile    = "reconcile"
	TriggerCompetitor   = "competitor_delete"
	TriggerImport       = "import"
)

// WithTrigger labels the recalculations started under ctx.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

func TriggerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(triggerKey{}).(string); ok && v != "" {
		return v
	}
	return TriggerRecordWrite
}
