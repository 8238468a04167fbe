package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/camden-git/jeudelamort/models"
)

// unknownAgeRank sorts candidates without a birth date after everyone else
// when looking for the youngest pick.
const unknownAgeRank = 999

// SeasonSummary is a player's view of one season.
type SeasonSummary struct {
	Season         int                `json:"season"`
	Seasons        []int              `json:"seasons"`
	Pending        []models.Candidate `json:"pending"`
	Won            []models.Candidate `json:"won"`
	Stale          []models.Candidate `json:"stale"`
	TotalPoints    int                `json:"total_points"`
	Longshot       *models.Candidate  `json:"longshot,omitempty"` // youngest pending pick
	AveragePending int                `json:"average_pending_age"`
}

// SummarizeSeason builds a SeasonSummary from one player's bets. The bets must
// have their Candidate association loaded. A season of 0 selects the default
// season.
func SummarizeSeason(bets []models.Bet, season int, ref time.Time) SeasonSummary {
	seasons := Seasons(bets)
	if season == 0 {
		season = DefaultSeason(seasons, ref.Year())
	}

	candidates := make(map[uint]models.Candidate)
	for _, b := range bets {
		if b.Candidate != nil {
			candidates[b.CandidateID] = *b.Candidate
		}
	}
	p := Partition(bets, LookupFromCandidates(candidates), season)

	summary := SeasonSummary{
		Season:  season,
		Seasons: seasons,
		Pending: resolve(p.Pending, candidates),
		Won:     resolve(p.Won, candidates),
		Stale:   resolve(p.Stale, candidates),
	}
	if summary.Seasons == nil {
		summary.Seasons = []int{}
	}

	for _, c := range summary.Won {
		summary.TotalPoints += CandidatePoints(c, ref)
	}

	youngest := unknownAgeRank
	sum := 0
	for i, c := range summary.Pending {
		age, ok := CandidateAge(c, ref)
		if ok {
			sum += age
		}
		rank := unknownAgeRank
		if ok {
			rank = age
		}
		if summary.Longshot == nil || rank < youngest {
			youngest = rank
			summary.Longshot = &summary.Pending[i]
		}
	}
	if n := len(summary.Pending); n > 0 {
		summary.AveragePending = int(math.Round(float64(sum) / float64(n)))
	}
	return summary
}

func resolve(bets []models.Bet, candidates map[uint]models.Candidate) []models.Candidate {
	out := make([]models.Candidate, 0, len(bets))
	for _, b := range bets {
		if c, ok := candidates[b.CandidateID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Picker is one player who picked a candidate in a given season.
type Picker struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
}

type SeasonPickers struct {
	Season  int      `json:"season"`
	Pickers []Picker `json:"pickers"`
}

// CandidateSummary is the public page of a candidate.
type CandidateSummary struct {
	Candidate     models.Candidate `json:"candidate"`
	Age           *int             `json:"age"`
	Points        int              `json:"points"`
	PhotoURL      string           `json:"photo_url,omitempty"`
	TotalPicks    int              `json:"total_picks"`
	FirstSeason   *int             `json:"first_season,omitempty"`
	WinningSeason *int             `json:"winning_season,omitempty"`
	Winners       []Picker         `json:"winners"`
	BySeason      []SeasonPickers  `json:"by_season"`
}

// SummarizeCandidate aggregates the bets placed on c. photoBase is prefixed to
// the photo reference.
func SummarizeCandidate(c models.Candidate, bets []models.Bet, names map[string]string, photoBase string, ref time.Time) CandidateSummary {
	s := CandidateSummary{
		Candidate: c,
		Points:    CandidatePoints(c, ref),
		Winners:   []Picker{},
		BySeason:  []SeasonPickers{},
	}
	if age, ok := CandidateAge(c, ref); ok {
		s.Age = &age
	}
	if c.Photo != "" {
		s.PhotoURL = photoBase + c.Photo
	}

	grouped := make(map[int][]Picker)
	for _, b := range bets {
		if b.CandidateID != c.ID {
			continue
		}
		s.TotalPicks++
		if s.FirstSeason == nil || b.Season < *s.FirstSeason {
			season := b.Season
			s.FirstSeason = &season
		}
		name := names[b.PlayerID]
		if name == "" {
			name = UnknownPlayerName
		}
		picker := Picker{PlayerID: b.PlayerID, DisplayName: name}
		grouped[b.Season] = append(grouped[b.Season], picker)
		if StatusFor(c.DeathDate, b.Season) == StatusWon {
			s.Winners = append(s.Winners, picker)
		}
	}
	if c.DeathDate != nil {
		year := c.DeathDate.Year()
		s.WinningSeason = &year
	}

	seasons := make([]int, 0, len(grouped))
	for season := range grouped {
		seasons = append(seasons, season)
	}
	sortDesc(seasons)
	for _, season := range seasons {
		s.BySeason = append(s.BySeason, SeasonPickers{Season: season, Pickers: grouped[season]})
	}
	return s
}

type DeathYear struct {
	Year       int                `json:"year"`
	Candidates []models.Candidate `json:"candidates"`
}

// GroupDeathsByYear buckets deceased candidates by year of death, newest year
// first. Living candidates are skipped; order within a year is kept.
func GroupDeathsByYear(candidates []models.Candidate) []DeathYear {
	byYear := make(map[int][]models.Candidate)
	for _, c := range candidates {
		if c.DeathDate == nil {
			continue
		}
		y := c.DeathDate.Year()
		byYear[y] = append(byYear[y], c)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	out := make([]DeathYear, 0, len(years))
	for _, y := range years {
		out = append(out, DeathYear{Year: y, Candidates: byYear[y]})
	}
	return out
}
