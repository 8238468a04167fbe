package handlers

import (
	"net/http"
	"sort"

	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/scoring"
	"github.com/camden-git/jeudelamort/services"
	"github.com/sirupsen/logrus"
)

// GameHandler serves the pages computed over every player's bets.
type GameHandler struct {
	Candidates repository.CandidateRepository
	Bets       repository.BetRepository
	Profiles   repository.ProfileRepository
	Logger     *logrus.Logger
}

type SeasonCount struct {
	Season int `json:"season"`
	Bets   int `json:"bets"`
}

type LeaderboardResponse struct {
	Season    int                `json:"season"`
	Seasons   []SeasonCount      `json:"seasons"`
	Standings []scoring.Standing `json:"standings"`
}

type Favorite struct {
	Candidate models.Candidate `json:"candidate"`
	Picks     int              `json:"picks"`
}

type FavoritesResponse struct {
	AllTime         []Favorite `json:"all_time"`
	Season          int        `json:"season"`
	SeasonFavorites []Favorite `json:"season_favorites"`
}

// Leaderboard ranks players for ?season=, defaulting to the latest season
// with bets.
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	counts, err := h.Bets.CountBySeason(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	seasons := make([]SeasonCount, 0, len(counts))
	for s, n := range counts {
		seasons = append(seasons, SeasonCount{Season: s, Bets: n})
	}
	sort.Slice(seasons, func(i, j int) bool { return seasons[i].Season > seasons[j].Season })
	if season == 0 {
		season = services.CurrentSeason(timeNow())
		if len(seasons) > 0 {
			season = seasons[0].Season
		}
	}

	bets, err := h.Bets.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	profiles, err := h.Profiles.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	candidates, err := h.Candidates.GetByIDs(r.Context(), candidateIDs(bets))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}

	standings := scoring.BuildLeaderboard(profiles, bets, candidates, season)
	if standings == nil {
		standings = []scoring.Standing{}
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Season: season, Seasons: seasons, Standings: standings})
}

// Favorites lists the most picked candidates of all time and of the current
// season.
func (h *GameHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	bets, err := h.Bets.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	season := services.CurrentSeason(timeNow())
	allTime := scoring.TopByPickCount(bets, scoring.FavoritesLimit, 1)
	seasonal := scoring.SeasonFavorites(bets, season)

	var ids []uint
	for _, pc := range append(append([]scoring.PickCount{}, allTime...), seasonal...) {
		ids = append(ids, pc.CandidateID)
	}
	candidates, err := h.Candidates.GetByIDs(r.Context(), ids)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{
		AllTime:         hydrate(allTime, candidates),
		Season:          season,
		SeasonFavorites: hydrate(seasonal, candidates),
	})
}

// InMemoriam lists deceased candidates grouped by year of death.
func (h *GameHandler) InMemoriam(w http.ResponseWriter, r *http.Request) {
	deceased, err := h.Candidates.ListDeceased(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.GroupDeathsByYear(deceased))
}

func candidateIDs(bets []models.Bet) []uint {
	seen := make(map[uint]bool)
	var ids []uint
	for _, b := range bets {
		if !seen[b.CandidateID] {
			seen[b.CandidateID] = true
			ids = append(ids, b.CandidateID)
		}
	}
	return ids
}

func hydrate(counts []scoring.PickCount, candidates map[uint]models.Candidate) []Favorite {
	out := make([]Favorite, 0, len(counts))
	for _, pc := range counts {
		c, ok := candidates[pc.CandidateID]
		if !ok {
			continue
		}
		out = append(out, Favorite{Candidate: c, Picks: pc.Picks})
	}
	return out
}
