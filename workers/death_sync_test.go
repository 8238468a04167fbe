package workers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/jeudelamort/database"
	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/services"
	"github.com/camden-git/jeudelamort/wikidata"
)

type fakeClaims struct {
	mu    sync.Mutex
	byID  map[string]string // entity id -> raw claims JSON
	calls []string
}

func (f *fakeClaims) GetClaims(_ context.Context, id string) (wikidata.Claims, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	raw, ok := f.byID[id]
	if !ok {
		return nil, wikidata.ErrUpstream
	}
	var claims wikidata.Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func timeClaim(prop, stamp string) string {
	return `"` + prop + `":[{"mainsnak":{"datavalue":{"value":{"time":"` + stamp + `"}}}}]`
}

func newSyncFixture(t *testing.T) (repository.CandidateRepository, *services.DeathService, *logrus.Logger) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	db, err := database.InitGormDB(database.DriverSQLite, filepath.Join(t.TempDir(), "sync.db"), log)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	candidates := repository.NewGormCandidateRepository(db)
	deaths := services.NewDeathService(candidates, repository.NewGormBetRepository(db), repository.NewGormProfileRepository(db), nil, log)
	return candidates, deaths, log
}

func addCandidate(t *testing.T, repo repository.CandidateRepository, externalID string, birth time.Time, death *time.Time) models.Candidate {
	t.Helper()
	c := &models.Candidate{Name: externalID, ExternalID: externalID, BirthDate: &birth, DeathDate: death}
	_, err := repo.CreateIfAbsent(context.Background(), c)
	require.NoError(t, err)
	stored, err := repo.GetByExternalID(context.Background(), externalID)
	require.NoError(t, err)
	return *stored
}

func TestDeathSyncRecordsNewDeaths(t *testing.T) {
	candidates, deaths, log := newSyncFixture(t)
	birth := time.Date(1940, 6, 1, 0, 0, 0, 0, time.UTC)
	gone := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	died := addCandidate(t, candidates, "Q1", birth, nil)
	addCandidate(t, candidates, "Q2", birth, nil)
	addCandidate(t, candidates, "Q3", birth, &gone)
	addCandidate(t, candidates, "Q4", birth, nil)

	source := &fakeClaims{byID: map[string]string{
		"Q1": `{` + timeClaim(wikidata.PropDateOfBirth, "+1940-06-01T00:00:00Z") + `,` + timeClaim(wikidata.PropDateOfDeath, "+2024-03-00T00:00:00Z") + `}`,
		"Q2": `{` + timeClaim(wikidata.PropDateOfBirth, "+1940-06-01T00:00:00Z") + `}`,
	}}

	job := NewDeathSync(candidates, source, deaths, 2, log)
	report, err := job.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SyncReport{Checked: 3, Recorded: 1, Failed: 1}, report)
	assert.NotContains(t, source.calls, "Q3")

	stored, err := candidates.GetByID(context.Background(), died.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeathDate)
	assert.Equal(t, "2024-03-01", stored.DeathDate.Format("2006-01-02"))

	// a second run finds nothing new
	report, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Recorded)
	assert.Equal(t, 2, report.Checked)
}

func TestDeathSyncRejectsOverlappingRuns(t *testing.T) {
	candidates, deaths, log := newSyncFixture(t)
	job := NewDeathSync(candidates, &fakeClaims{}, deaths, 1, log)

	job.running.Lock()
	_, err := job.RunOnce(context.Background())
	job.running.Unlock()

	assert.True(t, errors.Is(err, ErrSyncInProgress))
}

func TestDeathSyncInvalidSchedule(t *testing.T) {
	candidates, deaths, log := newSyncFixture(t)
	job := NewDeathSync(candidates, &fakeClaims{}, deaths, 1, log)

	assert.Error(t, job.Start("not a schedule"))
	job.Stop()
}
