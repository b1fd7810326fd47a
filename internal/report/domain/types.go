package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	ReportPerformance  = "performance"
	ReportCompetitors  = "competitors"
	ReportRevPARMatrix = "revpar_matrix"

	EntityHotel      = "hotel"
	EntityCompetitor = "competitor"
)

// MetricSet holds averaged occupancy, ADR and RevPAR.
type MetricSet struct {
	Occupancy decimal.Decimal `json:"occupancy"`
	ADR       decimal.Decimal `json:"adr"`
	RevPAR    decimal.Decimal `json:"revpar"`
}

// IndexSet holds averaged indices. A value is null when no day in the period carried it.
type IndexSet struct {
	MPI decimal.NullDecimal `json:"mpi"`
	ARI decimal.NullDecimal `json:"ari"`
	RGI decimal.NullDecimal `json:"rgi"`
}

type Period struct {
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	DaysWithData int       `json:"days_with_data"`
	Hotel        MetricSet `json:"hotel"`
	Market       MetricSet `json:"market"`
	Indices      IndexSet  `json:"indices"`
}

// Change is the percent change of each figure against the previous period.
type Change struct {
	Occupancy decimal.Decimal `json:"occupancy"`
	ADR       decimal.Decimal `json:"adr"`
	RevPAR    decimal.Decimal `json:"revpar"`
	MPI       decimal.Decimal `json:"mpi"`
	ARI       decimal.Decimal `json:"ari"`
	RGI       decimal.Decimal `json:"rgi"`
}

type PerformanceSummary struct {
	HotelID   snowflake.ID `json:"hotel_id"`
	HotelName string       `json:"hotel_name"`
	Currency  string       `json:"currency"`
	Current   Period       `json:"current"`
	Previous  Period       `json:"previous"`
	Change    Change       `json:"change"`
}

// AnalyticsRow is one property's totals over the range.
type AnalyticsRow struct {
	EntityType        string              `json:"entity_type"`
	CompetitorID      snowflake.ID        `json:"competitor_id"`
	Name              string              `json:"name"`
	DaysReported      int                 `json:"days_reported"`
	RoomsAvailable    int                 `json:"rooms_available"`
	RoomsSold         int                 `json:"rooms_sold"`
	Revenue           decimal.Decimal     `json:"revenue"`
	Occupancy         decimal.Decimal     `json:"occupancy"`
	ADR               decimal.Decimal     `json:"adr"`
	RevPAR            decimal.Decimal     `json:"revpar"`
	FairMarketShare   decimal.Decimal     `json:"fair_market_share"`
	ActualMarketShare decimal.Decimal     `json:"actual_market_share"`
	MPI               decimal.NullDecimal `json:"mpi"`
	ARI               decimal.NullDecimal `json:"ari"`
	RGI               decimal.NullDecimal `json:"rgi"`
	MPIRank           *int                `json:"mpi_rank"`
	ARIRank           *int                `json:"ari_rank"`
	RGIRank           *int                `json:"rgi_rank"`
}

type CompetitorAnalytics struct {
	HotelID   snowflake.ID   `json:"hotel_id"`
	HotelName string         `json:"hotel_name"`
	Currency  string         `json:"currency"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Rows      []AnalyticsRow `json:"rows"`
	Totals    AnalyticsRow   `json:"totals"`
}

// MatrixPoint places one property on the RevPAR matrix.
// The hotel uses MPI and ARI; competitors use their cached occupancy and ADR indices.
type MatrixPoint struct {
	EntityType   string          `json:"entity_type"`
	CompetitorID snowflake.ID    `json:"competitor_id"`
	Name         string          `json:"name"`
	Date         string          `json:"date"`
	X            decimal.Decimal `json:"x"`
	Y            decimal.Decimal `json:"y"`
}

type RevPARMatrix struct {
	HotelID     snowflake.ID  `json:"hotel_id"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Hotel       *MatrixPoint  `json:"hotel"`
	Competitors []MatrixPoint `json:"competitors"`
}
