package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/camden-git/jeudelamort/services"
	"github.com/camden-git/jeudelamort/wikidata"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

type apiError struct {
	status int
	code   string
	detail string
}

// knownErrors maps service outcomes to what players see.
var knownErrors = []struct {
	err error
	apiError
}{
	{services.ErrNotAuthenticated, apiError{http.StatusUnauthorized, "not_authenticated", "Vous devez être connecté"}},
	{services.ErrQuotaExceeded, apiError{http.StatusConflict, "quota_exceeded", "Vous avez déjà 10 candidats pour cette saison"}},
	{services.ErrAlreadyPicked, apiError{http.StatusConflict, "already_picked", "Vous avez déjà parié sur ce candidat cette saison"}},
	{services.ErrInvalidCandidate, apiError{http.StatusBadRequest, "invalid_candidate", "Candidat invalide"}},
	{services.ErrDisplayNameRequired, apiError{http.StatusBadRequest, "display_name_required", "Le pseudo est requis"}},
	{services.ErrDisplayNameTooShort, apiError{http.StatusBadRequest, "display_name_too_short", "Le pseudo doit contenir au moins 3 caractères"}},
	{services.ErrDisplayNameTaken, apiError{http.StatusConflict, "display_name_taken", "Ce pseudo est déjà utilisé"}},
	{services.ErrInvalidEmail, apiError{http.StatusBadRequest, "invalid_email", "Adresse e-mail invalide"}},
	{services.ErrEmailTaken, apiError{http.StatusConflict, "email_taken", "Cette adresse e-mail est déjà utilisée"}},
	{services.ErrPasswordTooShort, apiError{http.StatusBadRequest, "password_too_short", "Le mot de passe doit contenir au moins 6 caractères"}},
	{services.ErrPasswordMismatch, apiError{http.StatusBadRequest, "password_mismatch", "Les mots de passe ne correspondent pas"}},
	{services.ErrInvalidCredentials, apiError{http.StatusUnauthorized, "invalid_credentials", "E-mail ou mot de passe incorrect"}},
	{services.ErrInvalidToken, apiError{http.StatusUnauthorized, "invalid_token", "Session invalide ou expirée"}},
	{services.ErrSetupCompleted, apiError{http.StatusForbidden, "setup_completed", "La configuration initiale a déjà été effectuée"}},
	{services.ErrCandidateNotFound, apiError{http.StatusNotFound, "candidate_not_found", "Candidat introuvable"}},
	{services.ErrAlreadyDeceased, apiError{http.StatusConflict, "already_deceased", "Le décès de ce candidat est déjà enregistré"}},
	{services.ErrInvalidDeathDate, apiError{http.StatusBadRequest, "invalid_death_date", "La date de décès précède la date de naissance"}},
	{wikidata.ErrUpstream, apiError{http.StatusBadGateway, "upstream_error", "Erreur lors de la recherche"}},
	{gorm.ErrRecordNotFound, apiError{http.StatusNotFound, "not_found", "Introuvable"}},
}

// classify picks the response for err. Unknown errors are internal.
func classify(err error) apiError {
	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			return known.apiError
		}
	}
	var perr *services.PersistenceError
	if errors.As(err, &perr) {
		return apiError{http.StatusInternalServerError, "persistence_error", "Erreur lors de l'enregistrement"}
	}
	return apiError{http.StatusInternalServerError, "internal_error", "Erreur interne"}
}

// writeServiceError logs server-side failures and writes the mapped response.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	e := classify(err)
	if e.status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	WriteAPIError(w, e.status, e.code, e.detail)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Requête invalide")
		return false
	}
	return true
}
