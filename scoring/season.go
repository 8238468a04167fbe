package scoring

import (
	"time"

	"github.com/camden-git/jeudelamort/models"
)

// Status is the outcome of a bet, always derived from the candidate's death
// date and the bet's season.
type Status string

const (
	StatusPending Status = "pending" // alive, or died after the season
	StatusWon     Status = "won"     // died during the season
	StatusStale   Status = "stale"   // already dead before the season started
)

// StatusFor classifies a bet for the given season.
func StatusFor(deathDate *time.Time, season int) Status {
	if deathDate == nil {
		return StatusPending
	}
	switch year := deathDate.Year(); {
	case year == season:
		return StatusWon
	case year > season:
		return StatusPending
	default:
		return StatusStale
	}
}

// DeathDateLookup resolves a candidate id to its death date, nil when alive
// or unknown.
type DeathDateLookup func(candidateID uint) *time.Time

// LookupFromCandidates builds a DeathDateLookup over an in-memory index.
func LookupFromCandidates(candidates map[uint]models.Candidate) DeathDateLookup {
	return func(id uint) *time.Time {
		c, ok := candidates[id]
		if !ok {
			return nil
		}
		return c.DeathDate
	}
}

// Partitioned holds the bets of one season split by status. Input order is
// kept within each slice.
type Partitioned struct {
	Pending []models.Bet
	Won     []models.Bet
	Stale   []models.Bet
}

// Partition classifies every bet of the given season. Bets of other seasons
// are ignored.
func Partition(bets []models.Bet, deathDate DeathDateLookup, season int) Partitioned {
	var p Partitioned
	for _, b := range bets {
		if b.Season != season {
			continue
		}
		switch StatusFor(deathDate(b.CandidateID), season) {
		case StatusWon:
			p.Won = append(p.Won, b)
		case StatusStale:
			p.Stale = append(p.Stale, b)
		default:
			p.Pending = append(p.Pending, b)
		}
	}
	return p
}

// Seasons lists the distinct seasons present in bets, newest first.
func Seasons(bets []models.Bet) []int {
	seen := make(map[int]struct{})
	var seasons []int
	for _, b := range bets {
		if _, ok := seen[b.Season]; ok {
			continue
		}
		seen[b.Season] = struct{}{}
		seasons = append(seasons, b.Season)
	}
	sortDesc(seasons)
	return seasons
}

// DefaultSeason picks current when it is among seasons, otherwise the newest
// one. It returns current when seasons is empty.
func DefaultSeason(seasons []int, current int) int {
	if len(seasons) == 0 {
		return current
	}
	newest := seasons[0]
	for _, s := range seasons {
		if s == current {
			return current
		}
		if s > newest {
			newest = s
		}
	}
	return newest
}
