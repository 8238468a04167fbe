package scoring

import (
	"sort"

	"github.com/camden-git/jeudelamort/models"
)

const (
	FavoritesLimit         = 3
	SeasonFavoritesMinPick = 3
)

type PickCount struct {
	CandidateID uint `json:"candidate_id"`
	Picks       int  `json:"picks"`
}

// TopByPickCount counts picks per candidate and returns the limit most picked
// with at least minCount picks. Ties keep the order of first appearance.
func TopByPickCount(bets []models.Bet, limit, minCount int) []PickCount {
	index := make(map[uint]int)
	var counts []PickCount
	for _, b := range bets {
		i, ok := index[b.CandidateID]
		if !ok {
			i = len(counts)
			index[b.CandidateID] = i
			counts = append(counts, PickCount{CandidateID: b.CandidateID})
		}
		counts[i].Picks++
	}

	filtered := counts[:0]
	for _, c := range counts {
		if c.Picks >= minCount {
			filtered = append(filtered, c)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Picks > filtered[j].Picks
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// SeasonFavorites is the current-season podium: candidates picked at least
// SeasonFavoritesMinPick times that season. It is empty unless a full podium
// qualifies.
func SeasonFavorites(bets []models.Bet, season int) []PickCount {
	var inSeason []models.Bet
	for _, b := range bets {
		if b.Season == season {
			inSeason = append(inSeason, b)
		}
	}
	top := TopByPickCount(inSeason, FavoritesLimit, SeasonFavoritesMinPick)
	if len(top) < FavoritesLimit {
		return []PickCount{}
	}
	return top
}
