package metric

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		roomsSold  int
		revenue    decimal.Decimal
		totalRooms int
		want       Values
	}{
		{
			name:       "hotel day",
			roomsSold:  150,
			revenue:    dec("22500"),
			totalRooms: 300,
			want:       Values{AverageRate: dec("150"), OccupancyPercentage: dec("50"), RevPAR: dec("75")},
		},
		{
			name:       "market day",
			roomsSold:  250,
			revenue:    dec("36500"),
			totalRooms: 500,
			want:       Values{AverageRate: dec("146"), OccupancyPercentage: dec("50"), RevPAR: dec("73")},
		},
		{
			name:       "no rooms sold",
			roomsSold:  0,
			revenue:    dec("0"),
			totalRooms: 120,
			want:       Values{AverageRate: decimal.Zero, OccupancyPercentage: decimal.Zero, RevPAR: decimal.Zero},
		},
		{
			name:       "zero inventory",
			roomsSold:  10,
			revenue:    dec("1000"),
			totalRooms: 0,
			want:       Values{AverageRate: dec("100"), OccupancyPercentage: decimal.Zero, RevPAR: decimal.Zero},
		},
		{
			name:       "negative inventory treated as zero",
			roomsSold:  10,
			revenue:    dec("1000"),
			totalRooms: -5,
			want:       Values{AverageRate: dec("100"), OccupancyPercentage: decimal.Zero, RevPAR: decimal.Zero},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.roomsSold, tt.revenue, tt.totalRooms)
			assert.True(t, tt.want.AverageRate.Equal(got.AverageRate), "adr %s", got.AverageRate)
			assert.True(t, tt.want.OccupancyPercentage.Equal(got.OccupancyPercentage), "occupancy %s", got.OccupancyPercentage)
			assert.True(t, tt.want.RevPAR.Equal(got.RevPAR), "revpar %s", got.RevPAR)
		})
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	a := Compute(37, dec("5123.45"), 91)
	b := Compute(37, dec("5123.45"), 91)
	assert.Equal(t, a, b)
}

func TestStoreRoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "102.74", Store(dec("102.739726")).StringFixed(2))
	assert.Equal(t, "0.13", Store(dec("0.125")).StringFixed(2))
	assert.Equal(t, "-0.13", Store(dec("-0.125")).StringFixed(2))
}

func TestRatioGuardsZeroDenominator(t *testing.T) {
	assert.True(t, Ratio(dec("5"), decimal.Zero).IsZero())
	assert.Equal(t, "60.00", Ratio(dec("300"), dec("500")).StringFixed(2))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "66.7", Display(dec("66.66666"), 1).String())
	assert.Equal(t, "146", Display(dec("146.00"), 0).String())
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, "25.00", PercentChange(dec("125"), dec("100")).StringFixed(2))
	assert.Equal(t, "-50.00", PercentChange(dec("50"), dec("100")).StringFixed(2))
	assert.True(t, PercentChange(dec("50"), decimal.Zero).IsZero())
}
