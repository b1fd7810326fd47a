package service

import (
	"github.com/shopspring/decimal"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	"github.com/smallbiznis/benchstay/internal/metric"
)

type indexValues struct {
	FairMarketShare   decimal.Decimal
	ActualMarketShare decimal.Decimal
	MPI               decimal.Decimal
	ARI               decimal.Decimal
	RGI               decimal.Decimal
}

// entityMetrics recomputes a record's figures at full precision.
// A competitor's average rate is the estimate that was entered for it.
func entityMetrics(rec dailyrecorddomain.DailyRecord) metric.Values {
	revenue := rec.TotalRevenue
	if !rec.IsHotel() {
		revenue = RecordRevenue(rec)
	}
	values := metric.Compute(rec.RoomsSold, revenue, rec.TotalRooms)
	if !rec.IsHotel() {
		values.AverageRate = rec.AverageRate
	}
	return values
}

// computeIndex derives shares and indices; every zero denominator yields zero.
func computeIndex(rec dailyrecorddomain.DailyRecord, market marketTotals) indexValues {
	own := entityMetrics(rec)

	fair := metric.Ratio(decimal.NewFromInt(int64(rec.TotalRooms)), decimal.NewFromInt(int64(market.RoomsAvailable)))
	actual := metric.Ratio(decimal.NewFromInt(int64(rec.RoomsSold)), decimal.NewFromInt(int64(market.RoomsSold)))

	return indexValues{
		FairMarketShare:   metric.Store(fair),
		ActualMarketShare: metric.Store(actual),
		MPI:               metric.Store(metric.Ratio(actual, fair)),
		ARI:               metric.Store(metric.Ratio(own.AverageRate, market.Derived.AverageRate)),
		RGI:               metric.Store(metric.Ratio(own.RevPAR, market.Derived.RevPAR)),
	}
}
