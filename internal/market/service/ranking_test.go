package service

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
	"github.com/stretchr/testify/assert"
)

func value(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestCompetitionRanksSharesTiesAndPlacesNullsLast(t *testing.T) {
	items := []RankItem{
		{Key: 1, Name: "Delta", Value: value(80)},
		{Key: 2, Name: "Alpha", Value: value(80)},
		{Key: 3, Name: "Bravo", Value: value(95)},
		{Key: 4, Name: "Aardvark", Value: decimal.NullDecimal{}},
	}

	ranks := CompetitionRanks(items)

	assert.Equal(t, map[snowflake.ID]int{3: 1, 1: 2, 2: 2, 4: 4}, ranks)
}

func TestCompetitionRanksNullsEachTakeTheirPosition(t *testing.T) {
	items := []RankItem{
		{Key: 1, Name: "Zulu", Value: decimal.NullDecimal{}},
		{Key: 2, Name: "Echo", Value: decimal.NullDecimal{}},
		{Key: 3, Name: "Kilo", Value: value(100)},
	}

	ranks := CompetitionRanks(items)

	assert.Equal(t, 1, ranks[3])
	assert.Equal(t, 2, ranks[2])
	assert.Equal(t, 3, ranks[1])
}

func TestCompetitionRanksEqualDecimalsWithDifferentScale(t *testing.T) {
	items := []RankItem{
		{Key: 1, Name: "A", Value: decimal.NewNullDecimal(decimal.RequireFromString("100.00"))},
		{Key: 2, Name: "B", Value: decimal.NewNullDecimal(decimal.RequireFromString("100"))},
		{Key: 3, Name: "C", Value: decimal.NewNullDecimal(decimal.RequireFromString("99.99"))},
	}

	ranks := CompetitionRanks(items)

	assert.Equal(t, 1, ranks[1])
	assert.Equal(t, 1, ranks[2])
	assert.Equal(t, 3, ranks[3])
}

func TestCompetitionRanksEmpty(t *testing.T) {
	assert.Empty(t, CompetitionRanks(nil))
}

func TestSortByMPIRankOrdersTiesByName(t *testing.T) {
	one, two := 1, 2
	entries := []marketdomain.RankingEntry{
		{CompetitorName: "Delta", MPIRank: &two},
		{CompetitorName: "Unranked"},
		{CompetitorName: "Alpha", MPIRank: &two},
		{CompetitorName: "Bravo", MPIRank: &one},
	}

	sortByMPIRank(entries)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.CompetitorName)
	}
	assert.Equal(t, []string{"Bravo", "Alpha", "Delta", "Unranked"}, names)
}
