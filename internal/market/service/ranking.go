package service

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	marketdomain "github.com/smallbiznis/benchstay/internal/market/domain"
)

// RankItem is one property competing for a rank. Value is null when the index is undefined.
type RankItem struct {
	Key   snowflake.ID
	Name  string
	Value decimal.NullDecimal
}

// CompetitionRanks ranks items by value, highest first, keyed by RankItem.Key.
// Equal values share a rank and the next distinct value skips ahead (1, 1, 3).
// Null values follow all others, ordered by name, each at its own position.
// Name only orders ties and never changes a rank.
func CompetitionRanks(items []RankItem) map[snowflake.ID]int {
	ordered := make([]RankItem, len(items))
	copy(ordered, items)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Value.Valid != b.Value.Valid {
			return a.Value.Valid
		}
		if a.Value.Valid {
			if c := a.Value.Decimal.Cmp(b.Value.Decimal); c != 0 {
				return c > 0
			}
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Key < b.Key
	})

	ranks := make(map[snowflake.ID]int, len(ordered))
	prevRank := 0
	for i, item := range ordered {
		rank := i + 1
		if i > 0 && item.Value.Valid {
			prev := ordered[i-1]
			if prev.Value.Valid && prev.Value.Decimal.Equal(item.Value.Decimal) {
				rank = prevRank
			}
		}
		ranks[item.Key] = rank
		prevRank = rank
	}
	return ranks
}

func sortByMPIRank(entries []marketdomain.RankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := rankOrMax(entries[i].MPIRank), rankOrMax(entries[j].MPIRank)
		if ri != rj {
			return ri < rj
		}
		return entries[i].CompetitorName < entries[j].CompetitorName
	})
}

func rankOrMax(rank *int) int {
	if rank == nil {
		return int(^uint(0) >> 1)
	}
	return *rank
}
