package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/scoring"
	"github.com/camden-git/jeudelamort/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CandidateHandler struct {
	Candidates   repository.CandidateRepository
	Bets         repository.BetRepository
	Profiles     repository.ProfileRepository
	Deaths       *services.DeathService
	PhotoBaseURL string
	Logger       *logrus.Logger
}

type CandidatePage struct {
	scoring.CandidateSummary
	Season int            `json:"season,omitempty"`
	Status scoring.Status `json:"status,omitempty"` // outcome of a pick made in Season
}

type DeathPayload struct {
	DeathDate string `json:"death_date"` // YYYY-MM-DD
}

func candidateIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Identifiant invalide")
		return 0, false
	}
	return uint(id), true
}

// GetCandidate serves a candidate's page.
func (h *CandidateHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateIDParam(w, r)
	if !ok {
		return
	}
	season, ok := seasonParam(w, r)
	if !ok {
		return
	}
	candidate, err := h.Candidates.GetByID(r.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = services.ErrCandidateNotFound
	}
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	bets, err := h.Bets.ListByCandidate(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	profiles, err := h.Profiles.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.UserID] = p.DisplayName
	}

	page := CandidatePage{
		CandidateSummary: scoring.SummarizeCandidate(*candidate, bets, names, h.PhotoBaseURL, timeNow()),
	}
	if season != 0 {
		page.Season = season
		page.Status = scoring.StatusFor(candidate.DeathDate, season)
	}
	writeJSON(w, http.StatusOK, page)
}

// RecordDeath sets a candidate's date of death.
func (h *CandidateHandler) RecordDeath(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateIDParam(w, r)
	if !ok {
		return
	}
	var payload DeathPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	date, err := time.Parse("2006-01-02", payload.DeathDate)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_death_date", "Date de décès invalide (AAAA-MM-JJ)")
		return
	}
	candidate, err := h.Deaths.RecordDeath(r.Context(), id, date)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if account := AccountFromContext(r.Context()); account != nil {
		h.Logger.WithFields(logrus.Fields{"candidate": id, "account": account.ID}).Info("death recorded manually")
	}
	writeJSON(w, http.StatusOK, candidate)
}
