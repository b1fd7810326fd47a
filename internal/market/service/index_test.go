package service

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
	"github.com/stretchr/testify/assert"
)

func hotelRecord(sold int, revenue string, rooms int) dailyrecorddomain.DailyRecord {
	return dailyrecorddomain.DailyRecord{
		CompetitorID: dailyrecorddomain.HotelEntity,
		RoomsSold:    sold,
		TotalRevenue: decimal.RequireFromString(revenue),
		TotalRooms:   rooms,
	}
}

func competitorRecord(id int64, sold int, rate string, rooms int) dailyrecorddomain.DailyRecord {
	rec := dailyrecorddomain.DailyRecord{
		CompetitorID: snowflake.ID(id),
		RoomsSold:    sold,
		AverageRate:  decimal.RequireFromString(rate),
		TotalRooms:   rooms,
	}
	rec.TotalRevenue = rec.AverageRate.Mul(decimal.NewFromInt(int64(sold)))
	return rec
}

func TestAggregateSumsParticipants(t *testing.T) {
	totals := aggregate(hotelRecord(150, "22500", 300), []dailyrecorddomain.DailyRecord{
		competitorRecord(7, 100, "140", 200),
	})

	assert.Equal(t, 500, totals.RoomsAvailable)
	assert.Equal(t, 250, totals.RoomsSold)
	assert.Equal(t, 2, totals.Participants)
	assert.True(t, totals.Revenue.Equal(decimal.NewFromInt(36500)))
	assert.True(t, totals.Derived.AverageRate.Equal(decimal.NewFromInt(146)))
	assert.True(t, totals.Derived.RevPAR.Equal(decimal.NewFromInt(73)))
	assert.True(t, totals.Derived.OccupancyPercentage.Equal(decimal.NewFromInt(50)))
}

func TestAggregateHotelOnly(t *testing.T) {
	totals := aggregate(hotelRecord(0, "0", 120), nil)

	assert.Equal(t, 120, totals.RoomsAvailable)
	assert.Equal(t, 1, totals.Participants)
	assert.True(t, totals.Derived.AverageRate.IsZero())
}

func TestComputeIndexHotel(t *testing.T) {
	hotel := hotelRecord(150, "22500", 300)
	totals := aggregate(hotel, []dailyrecorddomain.DailyRecord{competitorRecord(7, 100, "140", 200)})

	idx := computeIndex(hotel, totals)

	assert.Equal(t, "60", idx.FairMarketShare.String())
	assert.Equal(t, "60", idx.ActualMarketShare.String())
	assert.Equal(t, "100", idx.MPI.String())
	assert.Equal(t, "102.74", idx.ARI.String())
	assert.Equal(t, "102.74", idx.RGI.String())
}

func TestComputeIndexCompetitorUsesEnteredRate(t *testing.T) {
	hotel := hotelRecord(150, "22500", 300)
	comp := competitorRecord(7, 100, "140", 200)
	totals := aggregate(hotel, []dailyrecorddomain.DailyRecord{comp})

	idx := computeIndex(comp, totals)

	assert.Equal(t, "40", idx.FairMarketShare.String())
	assert.Equal(t, "100", idx.MPI.String())
	assert.Equal(t, "95.89", idx.ARI.String())
	assert.Equal(t, "95.89", idx.RGI.String())
}

func TestComputeIndexZeroDenominators(t *testing.T) {
	hotel := hotelRecord(0, "0", 300)
	comp := competitorRecord(7, 0, "120", 200)
	totals := aggregate(hotel, []dailyrecorddomain.DailyRecord{comp})

	for _, rec := range []dailyrecorddomain.DailyRecord{hotel, comp} {
		idx := computeIndex(rec, totals)
		assert.True(t, idx.MPI.IsZero())
		assert.True(t, idx.ARI.IsZero())
		assert.True(t, idx.RGI.IsZero())
		assert.True(t, idx.ActualMarketShare.IsZero())
	}
}

func TestCompetitorRevenueFallsBackToRate(t *testing.T) {
	rec := competitorRecord(7, 10, "99.5", 50)
	rec.TotalRevenue = decimal.Zero
	assert.True(t, RecordRevenue(rec).Equal(decimal.RequireFromString("995")))

	rec.TotalRevenue = decimal.NewFromInt(1000)
	assert.True(t, RecordRevenue(rec).Equal(decimal.NewFromInt(1000)))
}
