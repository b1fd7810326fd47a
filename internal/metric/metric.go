// Package metric derives the per-day hotel performance figures: average daily
// rate, occupancy and revenue per available room. Every quotient is guarded so a
// zero or negative divisor produces zero rather than an error.
package metric

import "github.com/shopspring/decimal"

// StoragePlaces is the precision applied when derived values are persisted.
const StoragePlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// Values are the three figures derived from one day's rooms and revenue.
type Values struct {
	AverageRate         decimal.Decimal
	OccupancyPercentage decimal.Decimal
	RevPAR              decimal.Decimal
}

// Compute derives ADR, occupancy and RevPAR at full precision.
func Compute(roomsSold int, totalRevenue decimal.Decimal, totalRooms int) Values {
	sold := decimal.NewFromInt(int64(roomsSold))
	rooms := decimal.NewFromInt(int64(totalRooms))

	return Values{
		AverageRate:         SafeDiv(totalRevenue, sold),
		OccupancyPercentage: SafeDiv(sold, rooms).Mul(hundred),
		RevPAR:              SafeDiv(totalRevenue, rooms),
	}
}

// Rounded returns v with every field rounded to storage precision.
func (v Values) Rounded() Values {
	return Values{
		AverageRate:         Store(v.AverageRate),
		OccupancyPercentage: Store(v.OccupancyPercentage),
		RevPAR:              Store(v.RevPAR),
	}
}

// SafeDiv returns numerator/denominator, or zero when denominator is not positive.
func SafeDiv(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.DivRound(denominator, 16)
}

// Ratio returns numerator/denominator*100, guarded like SafeDiv.
func Ratio(numerator, denominator decimal.Decimal) decimal.Decimal {
	return SafeDiv(numerator, denominator).Mul(hundred)
}

// Store rounds half away from zero to storage precision.
func Store(v decimal.Decimal) decimal.Decimal {
	return v.Round(StoragePlaces)
}

// Display rounds for presentation only.
func Display(v decimal.Decimal, places int32) decimal.Decimal {
	if places < 0 {
		places = 0
	}
	return v.Round(places)
}

// PercentChange returns (current-previous)/previous*100, or zero when previous is zero.
func PercentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).DivRound(previous.Abs(), 16).Mul(hundred)
}
