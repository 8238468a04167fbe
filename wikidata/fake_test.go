package wikidata

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeEntity struct {
	id, label, description string
	claims                 map[string]interface{}
}

// fakeWikidata serves wbsearchentities and wbgetclaims from a fixed list.
type fakeWikidata struct {
	entities []fakeEntity
	calls    atomic.Int32
	failAll  bool
}

func (f *fakeWikidata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if f.failAll {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	w.Header().Set("Content-Type", "application/json")
	switch q.Get("action") {
	case "wbsearchentities":
		var hits []map[string]interface{}
		for _, e := range f.entities {
			hits = append(hits, map[string]interface{}{
				"id":          e.id,
				"label":       e.label,
				"description": e.description,
				"display":     map[string]interface{}{"label": map[string]string{"value": e.label, "language": "fr"}},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"search": hits})
	case "wbgetclaims":
		for _, e := range f.entities {
			if e.id == q.Get("entity") {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"claims": e.claims})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": map[string]string{"code": "no-such-entity", "info": "missing"}})
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func timeClaim(stamp string) []interface{} {
	return []interface{}{map[string]interface{}{
		"mainsnak": map[string]interface{}{"datavalue": map[string]interface{}{"value": map[string]string{"time": stamp}}},
	}}
}

func stringClaim(v string) []interface{} {
	return []interface{}{map[string]interface{}{
		"mainsnak": map[string]interface{}{"datavalue": map[string]interface{}{"value": v}},
	}}
}

func newTestClient(t *testing.T, fake *fakeWikidata) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(ClientOptions{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		RPS:     1000,
		Logger:  log,
	})
}
