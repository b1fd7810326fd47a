package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	UpsertSnapshot(ctx context.Context, db *gorm.DB, snapshot *MarketSnapshot) error
	FindSnapshot(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) (*MarketSnapshot, error)
	ListSnapshots(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, start, end time.Time) ([]MarketSnapshot, error)
	DeleteSnapshot(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) error

	UpsertIndex(ctx context.Context, db *gorm.DB, index *PerformanceIndex) error
	FindIndex(ctx context.Context, db *gorm.DB, hotelID, competitorID snowflake.ID, date time.Time) (*PerformanceIndex, error)
	ListIndices(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, start, end time.Time) ([]PerformanceIndex, error)
	// ListRankingEntries returns the competitor rows of a date joined with competitor names.
	ListRankingEntries(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) ([]RankingEntry, error)
	// UpdateRanks writes only the rank columns of one competitor row.
	UpdateRanks(ctx context.Context, db *gorm.DB, hotelID, competitorID snowflake.ID, date time.Time, ranks Ranks) error
	// DeleteIndicesExcept removes the date's rows whose competitor is not in keep.
	DeleteIndicesExcept(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time, keep []snowflake.ID) error
	DeleteIndicesForDate(ctx context.Context, db *gorm.DB, hotelID snowflake.ID, date time.Time) error
	DeleteIndicesByCompetitor(ctx context.Context, db *gorm.DB, competitorID snowflake.ID) error
}
