package scoring

import (
	"sort"
	"time"

	"github.com/camden-git/jeudelamort/models"
)

// UnknownPlayerName is shown for players without a display name.
const UnknownPlayerName = "Joueur inconnu"

type Standing struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	TotalPoints int    `json:"total_points"`
	WinCount    int    `json:"win_count"`
}

// BuildLeaderboard ranks every player who placed at least one bet in season.
// Won bets score the candidate's age at death. Ordering is by points, then
// wins, then the order players appear in profiles; players with bets but no
// profile follow in order of first bet.
func BuildLeaderboard(profiles []models.Profile, bets []models.Bet, candidates map[uint]models.Candidate, season int) []Standing {
	byPlayer := make(map[string]*Standing)
	var order []string

	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.UserID] = p.DisplayName
	}

	active := make(map[string]bool)
	for _, b := range bets {
		if b.Season == season {
			active[b.PlayerID] = true
		}
	}
	add := func(id string) {
		if _, ok := byPlayer[id]; ok || !active[id] {
			return
		}
		name := names[id]
		if name == "" {
			name = UnknownPlayerName
		}
		byPlayer[id] = &Standing{PlayerID: id, DisplayName: name}
		order = append(order, id)
	}
	for _, p := range profiles {
		add(p.UserID)
	}
	for _, b := range bets {
		add(b.PlayerID)
	}

	won := Partition(bets, LookupFromCandidates(candidates), season).Won
	for _, b := range won {
		c := candidates[b.CandidateID]
		s := byPlayer[b.PlayerID]
		s.WinCount++
		if age, ok := ComputeAge(c.BirthDate, c.DeathDate, time.Time{}); ok {
			s.TotalPoints += PointsForAge(age)
		}
	}

	standings := make([]Standing, 0, len(order))
	for _, id := range order {
		standings = append(standings, *byPlayer[id])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].TotalPoints != standings[j].TotalPoints {
			return standings[i].TotalPoints > standings[j].TotalPoints
		}
		return standings[i].WinCount > standings[j].WinCount
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func sortDesc(xs []int) {
	sort.Sort(sort.Reverse(sort.IntSlice(xs)))
}
