package service

import (
	"github.com/shopspring/decimal"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	"github.com/smallbiznis/benchstay/internal/metric"
)

// marketTotals is the unrounded aggregate the indices are computed against.
type marketTotals struct {
	RoomsAvailable int
	RoomsSold      int
	Revenue        decimal.Decimal
	Derived        metric.Values
	Participants   int
}

// aggregate sums the hotel record and the participating competitor records.
// Rooms available come from the total_rooms stored on each record.
func aggregate(hotel dailyrecorddomain.DailyRecord, competitors []dailyrecorddomain.DailyRecord) marketTotals {
	totals := marketTotals{
		RoomsAvailable: hotel.TotalRooms,
		RoomsSold:      hotel.RoomsSold,
		Revenue:        hotel.TotalRevenue,
		Participants:   1,
	}
	for _, rec := range competitors {
		totals.RoomsAvailable += rec.TotalRooms
		totals.RoomsSold += rec.RoomsSold
		totals.Revenue = totals.Revenue.Add(RecordRevenue(rec))
		totals.Participants++
	}
	totals.Derived = metric.Compute(totals.RoomsSold, totals.Revenue, totals.RoomsAvailable)
	return totals
}

// RecordRevenue prefers the stored revenue and falls back to rooms sold times the estimated rate.
// Range reports use it so their totals agree with the daily snapshots.
func RecordRevenue(rec dailyrecorddomain.DailyRecord) decimal.Decimal {
	if rec.TotalRevenue.IsPositive() || rec.RoomsSold == 0 {
		return rec.TotalRevenue
	}
	return rec.AverageRate.Mul(decimal.NewFromInt(int64(rec.RoomsSold)))
}
