package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSearchKeepsLivingPeopleInOrder(t *testing.T) {
	fake := &fakeWikidata{entities: []fakeEntity{
		{id: "Q1", label: "Vivant Un", description: "acteur", claims: map[string]interface{}{
			"P569": timeClaim("+1950-04-02T00:00:00Z"),
			"P18":  stringClaim("Vivant Un portrait.jpg"),
		}},
		{id: "Q2", label: "Mort", claims: map[string]interface{}{
			"P569": timeClaim("+1920-01-01T00:00:00Z"),
			"P570": timeClaim("+2001-01-01T00:00:00Z"),
		}},
		{id: "Q3", label: "Sans Date", claims: map[string]interface{}{}},
		{id: "Q4", label: "Vivant Deux", claims: map[string]interface{}{
			"P569": timeClaim("+1980-11-30T00:00:00Z"),
		}},
	}}
	searcher := NewSearcher(newTestClient(t, fake), nil, 0, quietLogger())

	results, err := searcher.Search(context.Background(), "vivant")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Result{
		ID:             "Q1",
		Name:           "Vivant Un",
		BirthDate:      "1950-04-02",
		Description:    "acteur",
		PhotoReference: "Vivant_Un_portrait.jpg",
		ExternalID:     "Q1",
	}, results[0])
	assert.Equal(t, "Q4", results[1].ID)
	assert.Empty(t, results[1].PhotoReference)
	assert.Empty(t, results[1].Description)
}

func TestSearchTruncatesToFive(t *testing.T) {
	fake := &fakeWikidata{}
	for i := 1; i <= 10; i++ {
		fake.entities = append(fake.entities, fakeEntity{
			id:     fmt.Sprintf("Q%d", i),
			label:  fmt.Sprintf("Person %d", i),
			claims: map[string]interface{}{"P569": timeClaim("+1970-01-01T00:00:00Z")},
		})
	}
	searcher := NewSearcher(newTestClient(t, fake), nil, 0, quietLogger())

	results, err := searcher.Search(context.Background(), "person")

	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("Q%d", i+1), r.ID)
	}
}

func TestSearchBlankQuery(t *testing.T) {
	fake := &fakeWikidata{}
	searcher := NewSearcher(newTestClient(t, fake), nil, 0, quietLogger())

	results, err := searcher.Search(context.Background(), "   ")

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
	assert.Zero(t, fake.calls.Load())
}

func TestSearchUpstreamFailure(t *testing.T) {
	fake := &fakeWikidata{failAll: true}
	searcher := NewSearcher(newTestClient(t, fake), nil, 0, quietLogger())

	_, err := searcher.Search(context.Background(), "x")

	assert.ErrorIs(t, err, ErrUpstream)
}

func TestSearchUsesCache(t *testing.T) {
	fake := &fakeWikidata{entities: []fakeEntity{
		{id: "Q1", label: "Vivant", claims: map[string]interface{}{"P569": timeClaim("+1950-04-02T00:00:00Z")}},
	}}
	cache := &memoryCache{data: map[string][]byte{}}
	searcher := NewSearcher(newTestClient(t, fake), cache, time.Minute, quietLogger())

	first, err := searcher.Search(context.Background(), "Vivant")
	require.NoError(t, err)
	calls := fake.calls.Load()

	second, err := searcher.Search(context.Background(), "vivant")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, calls, fake.calls.Load(), "second search served from cache")
}
