package wikidata

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	searchCandidates = 10 // entities fetched before the living filter
	maxResults       = 5
)

// Result is a living person suggested to a player. Its fields feed the intake
// workflow unchanged.
type Result struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	BirthDate      string `json:"birthDate"` // YYYY-MM-DD, "" when unparsable
	Description    string `json:"description"`
	PhotoReference string `json:"photoReference"`
	ExternalID     string `json:"externalId"`
}

// Source is the subset of Client the searcher needs.
type Source interface {
	SearchEntities(ctx context.Context, query string, limit int) ([]Entity, error)
	GetClaims(ctx context.Context, entityID string) (Claims, error)
}

type Searcher struct {
	source   Source
	cache    Cache
	cacheTTL time.Duration
	logger   *logrus.Logger
}

// NewSearcher builds a Searcher. cache may be nil.
func NewSearcher(source Source, cache Cache, cacheTTL time.Duration, logger *logrus.Logger) *Searcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Searcher{source: source, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Search returns at most five living people matching query. A blank query
// yields an empty result. Any upstream failure fails the whole search with an
// error wrapping ErrUpstream.
func (s *Searcher) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}

	key := cacheKey(query)
	if s.cache != nil {
		var cached []Result
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	entities, err := s.source.SearchEntities(ctx, query, searchCandidates)
	if err != nil {
		return nil, err
	}

	// one slot per entity keeps Wikidata's relevance order
	slots := make([]*Result, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	for i, entity := range entities {
		i, entity := i, entity
		g.Go(func() error {
			claims, err := s.source.GetClaims(gctx, entity.ID)
			if err != nil {
				return err
			}
			if !claims.IsLiving() {
				return nil
			}
			slots[i] = &Result{
				ID:             entity.ID,
				Name:           entity.Name(),
				BirthDate:      claims.DateStamp(PropDateOfBirth),
				Description:    entity.Description,
				PhotoReference: claims.Image(),
				ExternalID:     entity.ID,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, maxResults)
	for _, r := range slots {
		if r == nil {
			continue
		}
		results = append(results, *r)
		if len(results) == maxResults {
			break
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, results, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("failed to cache search results")
		}
	}
	return results, nil
}
