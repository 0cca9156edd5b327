package app

import (
	"sort"
	"strings"
)

// RecentBet is one dashboard row: a smart wallet's standout bet inside the
// window, with the wallet's aggregate stats attached.
type RecentBet struct {
	Wallet          string      `json:"wallet"`
	Label           string      `json:"label"`
	Outcome         Outcome     `json:"outcome"`
	SizeUSD         float64     `json:"sizeUSD"`
	Price           float64     `json:"price"`
	MarketID        string      `json:"marketId,omitempty"`
	MarketQuestion  string      `json:"marketQuestion,omitempty"`
	MarketURL       string      `json:"marketUrl"`
	Timestamp       int64       `json:"timestamp"`
	DistinctMarkets int         `json:"distinctMarkets"`
	BetsCount       int         `json:"betsCount"`
	Stats           TraderStats `json:"stats"`
}

// SortKey selects the ranking dimension for the dashboard.
type SortKey string

const (
	SortBySize      SortKey = "size"
	SortByTimestamp SortKey = "timestamp"
	SortByLabel     SortKey = "label"
	SortByMarkets   SortKey = "markets"
	SortByBets      SortKey = "bets"
)

const defaultResultCap = 50

// RankBets sorts bets by the given key, descending for the numeric keys and
// ascending for label, then truncates to the cap. The input slice is not
// modified. Ties keep their incoming order.
func RankBets(bets []RecentBet, key SortKey, limit int) []RecentBet {
	if limit <= 0 {
		limit = defaultResultCap
	}

	ranked := make([]RecentBet, len(bets))
	copy(ranked, bets)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch key {
		case SortByTimestamp:
			return a.Timestamp > b.Timestamp
		case SortByLabel:
			return strings.ToLower(a.Label) < strings.ToLower(b.Label)
		case SortByMarkets:
			return a.DistinctMarkets > b.DistinctMarkets
		case SortByBets:
			return a.BetsCount > b.BetsCount
		default:
			return a.SizeUSD > b.SizeUSD
		}
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
