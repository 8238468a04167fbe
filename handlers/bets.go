package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/scoring"
	"github.com/camden-git/jeudelamort/services"
	"github.com/sirupsen/logrus"
)

// timeNow is the reference date for ages and seasons.
var timeNow = time.Now

type BetHandler struct {
	Intake *services.IntakeService
	Bets   repository.BetRepository
	Logger *logrus.Logger
}

// PlaceBetPayload is a search result, optionally targeting a later season.
type PlaceBetPayload struct {
	services.CandidateFacts
	Season int `json:"season,omitempty"`
}

func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var payload PlaceBetPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	current := services.CurrentSeason(timeNow())
	season := payload.Season
	if season == 0 {
		season = current
	}
	if season < current {
		WriteAPIError(w, http.StatusBadRequest, "invalid_season", "Impossible de parier sur une saison passée")
		return
	}

	var playerID string
	if account := AccountFromContext(r.Context()); account != nil {
		playerID = account.ID
	}
	bet, err := h.Intake.AddCandidate(r.Context(), playerID, payload.CandidateFacts, season)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, bet)
}

// MyBets returns the signed-in player's season summary.
func (h *BetHandler) MyBets(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	if account == nil {
		writeServiceError(w, h.Logger, services.ErrNotAuthenticated)
		return
	}
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	bets, err := h.Bets.ListByPlayer(r.Context(), account.ID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.SummarizeSeason(bets, season, timeNow()))
}

// seasonParam reads ?season=, returning 0 when absent.
func seasonParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("season")
	if raw == "" {
		return 0, true
	}
	season, err := strconv.Atoi(raw)
	if err != nil || season <= 0 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_season", "Saison invalide")
		return 0, false
	}
	return season, true
}
