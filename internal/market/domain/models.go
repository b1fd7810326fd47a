package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MarketSnapshot aggregates the hotel and its active competitors for one date.
type MarketSnapshot struct {
	ID                  snowflake.ID    `json:"id" gorm:"primaryKey"`
	HotelID             snowflake.ID    `json:"hotel_id" gorm:"not null;uniqueIndex:ux_market_snapshots_hotel_date,priority:1"`
	Date                time.Time       `json:"date" gorm:"type:date;not null;uniqueIndex:ux_market_snapshots_hotel_date,priority:2"`
	TotalRoomsAvailable int             `json:"total_rooms_available" gorm:"not null"`
	TotalRoomsSold      int             `json:"total_rooms_sold" gorm:"not null"`
	TotalRevenue        decimal.Decimal `json:"total_revenue" gorm:"type:numeric(16,2);not null"`
	MarketOccupancy     decimal.Decimal `json:"market_occupancy" gorm:"type:numeric(7,2);not null"`
	MarketADR           decimal.Decimal `json:"market_adr" gorm:"column:market_adr;type:numeric(12,2);not null"`
	MarketRevPAR        decimal.Decimal `json:"market_revpar" gorm:"column:market_revpar;type:numeric(12,2);not null"`
	ParticipantCount    int             `json:"participant_count" gorm:"not null"`
	CreatedAt           time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time       `json:"updated_at" gorm:"not null"`
}

func (MarketSnapshot) TableName() string { return "market_snapshots" }

// PerformanceIndex holds one property's share and index values for a date.
// CompetitorID 0 is the hotel's own row, which never carries ranks.
type PerformanceIndex struct {
	ID                snowflake.ID        `json:"id" gorm:"primaryKey"`
	HotelID           snowflake.ID        `json:"hotel_id" gorm:"not null;uniqueIndex:ux_performance_indices_entity_date,priority:1"`
	CompetitorID      snowflake.ID        `json:"competitor_id" gorm:"not null;default:0;uniqueIndex:ux_performance_indices_entity_date,priority:2;index"`
	Date              time.Time           `json:"date" gorm:"type:date;not null;uniqueIndex:ux_performance_indices_entity_date,priority:3"`
	FairMarketShare   decimal.Decimal     `json:"fair_market_share" gorm:"type:numeric(7,2);not null"`
	ActualMarketShare decimal.Decimal     `json:"actual_market_share" gorm:"type:numeric(7,2);not null"`
	MPI               decimal.NullDecimal `json:"mpi" gorm:"column:mpi;type:numeric(9,2)"`
	ARI               decimal.NullDecimal `json:"ari" gorm:"column:ari;type:numeric(9,2)"`
	RGI               decimal.NullDecimal `json:"rgi" gorm:"column:rgi;type:numeric(9,2)"`
	MPIRank           *int                `json:"mpi_rank" gorm:"column:mpi_rank"`
	ARIRank           *int                `json:"ari_rank" gorm:"column:ari_rank"`
	RGIRank           *int                `json:"rgi_rank" gorm:"column:rgi_rank"`
	CreatedAt         time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time           `json:"updated_at" gorm:"not null"`
}

func (PerformanceIndex) TableName() string { return "performance_indices" }

// Ranks is the rank triple written by the rank-only update.
type Ranks struct {
	MPIRank *int
	ARIRank *int
	RGIRank *int
}

// RankingEntry is one competitor row of the date's ranking table.
type RankingEntry struct {
	CompetitorID   snowflake.ID        `json:"competitor_id"`
	CompetitorName string              `json:"competitor_name"`
	MPI            decimal.NullDecimal `json:"mpi"`
	ARI            decimal.NullDecimal `json:"ari"`
	RGI            decimal.NullDecimal `json:"rgi"`
	MPIRank        *int                `json:"mpi_rank"`
	ARIRank        *int                `json:"ari_rank"`
	RGIRank        *int                `json:"rgi_rank"`
}

// SameFigures reports whether o carries the same aggregate values.
func (s MarketSnapshot) SameFigures(o MarketSnapshot) bool {
	return s.TotalRoomsAvailable == o.TotalRoomsAvailable &&
		s.TotalRoomsSold == o.TotalRoomsSold &&
		s.ParticipantCount == o.ParticipantCount &&
		s.TotalRevenue.Equal(o.TotalRevenue) &&
		s.MarketOccupancy.Equal(o.MarketOccupancy) &&
		s.MarketADR.Equal(o.MarketADR) &&
		s.MarketRevPAR.Equal(o.MarketRevPAR)
}

// SameFigures reports whether o carries the same shares and indices. Ranks are ignored.
func (p PerformanceIndex) SameFigures(o PerformanceIndex) bool {
	return p.FairMarketShare.Equal(o.FairMarketShare) &&
		p.ActualMarketShare.Equal(o.ActualMarketShare) &&
		sameNull(p.MPI, o.MPI) &&
		sameNull(p.ARI, o.ARI) &&
		sameNull(p.RGI, o.RGI)
}

func sameNull(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
