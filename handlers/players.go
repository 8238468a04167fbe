package handlers

import (
	"errors"
	"net/http"

	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/scoring"
	"github.com/camden-git/jeudelamort/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PlayerHandler struct {
	Profiles       repository.ProfileRepository
	Bets           repository.BetRepository
	ProfileService *services.ProfileService
	Logger         *logrus.Logger
}

type PlayerPage struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	scoring.SeasonSummary
}

// GetPlayer serves a player's public page for one season.
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	profile, err := h.Profiles.GetByUserID(r.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		WriteAPIError(w, http.StatusNotFound, "player_not_found", "Joueur introuvable")
		return
	}
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	bets, err := h.Bets.ListByPlayer(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, PlayerPage{
		UserID:        profile.UserID,
		DisplayName:   profile.DisplayName,
		SeasonSummary: scoring.SummarizeSeason(bets, season, timeNow()),
	})
}

// UpdateProfile applies the signed-in player's settings.
func (h *PlayerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	if account == nil {
		writeServiceError(w, h.Logger, services.ErrNotAuthenticated)
		return
	}
	var payload services.ProfileSettings
	if !decodeJSON(w, r, &payload) {
		return
	}
	profile, err := h.ProfileService.UpdateSettings(r.Context(), account.ID, payload)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
