package repository

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/database"
	"github.com/camden-git/jeudelamort/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := database.InitGormDB(database.DriverSQLite, filepath.Join(t.TempDir(), "repo.db"), log)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCandidateCreateIfAbsent(t *testing.T) {
	repo := NewGormCandidateRepository(openTestDB(t))
	ctx := context.Background()

	first := &models.Candidate{Name: "Alain Delon", ExternalID: "Q106418", BirthDate: day(1935, time.November, 8)}
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotZero(t, first.ID)

	again := &models.Candidate{Name: "Someone else", ExternalID: "Q106418"}
	created, err = repo.CreateIfAbsent(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Alain Delon", again.Name)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCandidateRecordDeathOnce(t *testing.T) {
	repo := NewGormCandidateRepository(openTestDB(t))
	ctx := context.Background()

	c := &models.Candidate{Name: "X", ExternalID: "Q1", BirthDate: day(1950, time.January, 1)}
	_, err := repo.CreateIfAbsent(ctx, c)
	require.NoError(t, err)

	updated, err := repo.RecordDeath(ctx, c.ID, *day(2024, time.March, 3))
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.RecordDeath(ctx, c.ID, *day(2025, time.March, 3))
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeathDate)
	assert.Equal(t, 2024, stored.DeathDate.Year())

	living, err := repo.ListLiving(ctx)
	require.NoError(t, err)
	assert.Empty(t, living)
	deceased, err := repo.ListDeceased(ctx)
	require.NoError(t, err)
	assert.Len(t, deceased, 1)
}

func TestCandidateRejectsDeathBeforeBirth(t *testing.T) {
	repo := NewGormCandidateRepository(openTestDB(t))
	c := &models.Candidate{Name: "X", ExternalID: "Q2", BirthDate: day(1950, time.January, 1), DeathDate: day(1949, time.January, 1)}
	_, err := repo.CreateIfAbsent(context.Background(), c)
	assert.ErrorIs(t, err, models.ErrDeathBeforeBirth)
}

func TestGetMissingCandidate(t *testing.T) {
	repo := NewGormCandidateRepository(openTestDB(t))
	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBetRepository(t *testing.T) {
	db := openTestDB(t)
	candidates := NewGormCandidateRepository(db)
	bets := NewGormBetRepository(db)
	ctx := context.Background()

	c := &models.Candidate{Name: "X", ExternalID: "Q3"}
	_, err := candidates.CreateIfAbsent(ctx, c)
	require.NoError(t, err)

	bet := &models.Bet{PlayerID: "p1", CandidateID: c.ID, Season: 2024}
	placed, err := bets.PlaceWithinQuota(ctx, bet, models.MaxBetsPerSeason)
	require.NoError(t, err)
	assert.True(t, placed)
	assert.NotZero(t, bet.ID)

	placed, err = bets.PlaceWithinQuota(ctx, &models.Bet{PlayerID: "p1", CandidateID: c.ID, Season: 2024}, models.MaxBetsPerSeason)
	require.NoError(t, err)
	assert.False(t, placed)

	exists, err := bets.Exists(ctx, "p1", c.ID, 2024)
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := bets.CountForSeason(ctx, "p1", 2024)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	mine, err := bets.ListByPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Candidate)
	assert.Equal(t, "Q3", mine[0].Candidate.ExternalID)
}

func TestAccountAndProfile(t *testing.T) {
	db := openTestDB(t)
	accounts := NewGormAccountRepository(db)
	profiles := NewGormProfileRepository(db)
	ctx := context.Background()

	account := &models.Account{Email: " Jean@Example.org "}
	require.NoError(t, account.SetPassword("secret1"))
	require.NoError(t, accounts.CreateWithProfile(ctx, account, &models.Profile{DisplayName: "Jean", AlertOwnCandidates: true}))
	require.NotEmpty(t, account.ID)

	loaded, err := accounts.GetByEmail(ctx, "jean@example.org")
	require.NoError(t, err)
	require.NotNil(t, loaded.Profile)
	assert.Equal(t, "Jean", loaded.Profile.DisplayName)
	assert.Equal(t, 1, loaded.SessionVersion)
	assert.True(t, loaded.CheckPassword("secret1"))

	taken, err := profiles.DisplayNameTaken(ctx, "JEAN", "")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = profiles.DisplayNameTaken(ctx, "JEAN", account.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	other := &models.Account{Email: "marie@example.org"}
	require.NoError(t, other.SetPassword("secret2"))
	require.NoError(t, accounts.CreateWithProfile(ctx, other, &models.Profile{DisplayName: "Marie"}))
	assert.ErrorIs(t, profiles.Rename(ctx, other.ID, "jean"), gorm.ErrDuplicatedKey)
	require.NoError(t, profiles.Rename(ctx, other.ID, "Marie-Anne"))

	require.NoError(t, profiles.UpdateAlerts(ctx, other.ID, false, true))
	p, err := profiles.GetByUserID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marie-Anne", p.DisplayName)
	assert.False(t, p.AlertOwnCandidates)
	assert.True(t, p.AlertOtherCandidates)

	version, err := accounts.BumpSessionVersion(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	count, err := accounts.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
