package handlers

import (
	"context"
	"net/http"

	"github.com/camden-git/jeudelamort/wikidata"
	"github.com/sirupsen/logrus"
)

// Searcher finds living people to pick.
type Searcher interface {
	Search(ctx context.Context, query string) ([]wikidata.Result, error)
}

type SearchHandler struct {
	Searcher Searcher
	Logger   *logrus.Logger
}

// Search proxies GET /api/search?q= to Wikidata.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.Searcher.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, h.Logger.WithField("query", r.URL.Query().Get("q")), err)
		return
	}
	if results == nil {
		results = []wikidata.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}
