package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// HotelEntity is the CompetitorID carried by the hotel's own records.
const HotelEntity snowflake.ID = 0

// DailyRecord is one property's figures for one day.
// Derived columns are recomputed on every write; TotalRooms is captured at write time.
type DailyRecord struct {
	ID                  snowflake.ID        `json:"id" gorm:"primaryKey"`
	HotelID             snowflake.ID        `json:"hotel_id" gorm:"not null;uniqueIndex:ux_daily_records_entity_date,priority:1"`
	CompetitorID        snowflake.ID        `json:"competitor_id" gorm:"not null;default:0;uniqueIndex:ux_daily_records_entity_date,priority:2;index"`
	Date                time.Time           `json:"date" gorm:"type:date;not null;uniqueIndex:ux_daily_records_entity_date,priority:3"`
	RoomsSold           int                 `json:"rooms_sold" gorm:"not null"`
	TotalRevenue        decimal.Decimal     `json:"total_revenue" gorm:"type:numeric(14,2);not null"`
	AverageRate         decimal.Decimal     `json:"average_rate" gorm:"type:numeric(12,2);not null"`
	OccupancyPercentage decimal.Decimal     `json:"occupancy_percentage" gorm:"type:numeric(7,2);not null"`
	RevPAR              decimal.Decimal     `json:"revpar" gorm:"column:revpar;type:numeric(12,2);not null"`
	TotalRooms          int                 `json:"total_rooms" gorm:"not null"`
	Notes               string              `json:"notes" gorm:"type:text"`
	OccupancyIndex      decimal.NullDecimal `json:"occupancy_index" gorm:"type:numeric(9,2)"`
	ADRIndex            decimal.NullDecimal `json:"adr_index" gorm:"column:adr_index;type:numeric(9,2)"`
	RevenueIndex        decimal.NullDecimal `json:"revenue_index" gorm:"type:numeric(9,2)"`
	CreatedAt           time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time           `json:"updated_at" gorm:"not null"`
}

func (DailyRecord) TableName() string { return "daily_records" }

func (r DailyRecord) IsHotel() bool { return r.CompetitorID == HotelEntity }

// CachedIndices are the index values copied back onto a competitor's record.
type CachedIndices struct {
	OccupancyIndex decimal.NullDecimal
	ADRIndex       decimal.NullDecimal
	RevenueIndex   decimal.NullDecimal
}

// UpdateIntent tells Save whether a write feeds the market recalculation.
type UpdateIntent int

const (
	// FullRecompute persists the record and recalculates its date.
	FullRecompute UpdateIntent = iota
	// CacheOnly writes the cached index columns and nothing else.
	CacheOnly
)

func (i UpdateIntent) String() string {
	switch i {
	case FullRecompute:
		return "full_recompute"
	case CacheOnly:
		return "cache_only"
	default:
		return "unknown"
	}
}
