package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := InitGormDB(DriverSQLite, filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	require.NoError(t, AutoMigrateModels(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedCandidates(t *testing.T, db *gorm.DB, n int) []models.Candidate {
	t.Helper()
	out := make([]models.Candidate, 0, n)
	for i := 0; i < n; i++ {
		c := models.Candidate{Name: "Candidate", ExternalID: "Q" + string(rune('A'+i))}
		require.NoError(t, db.Create(&c).Error)
		out = append(out, c)
	}
	return out
}

func TestInsertBetIfUnderQuota(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	candidates := seedCandidates(t, db, 4)

	id, inserted, err := InsertBetIfUnderQuota(ctx, db, "player-1", candidates[0].ID, 2024, 2)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, id)

	_, inserted, err = InsertBetIfUnderQuota(ctx, db, "player-1", candidates[0].ID, 2024, 2)
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate pick must not insert")

	_, inserted, err = InsertBetIfUnderQuota(ctx, db, "player-1", candidates[1].ID, 2024, 2)
	require.NoError(t, err)
	assert.True(t, inserted)

	_, inserted, err = InsertBetIfUnderQuota(ctx, db, "player-1", candidates[2].ID, 2024, 2)
	require.NoError(t, err)
	assert.False(t, inserted, "quota reached")

	_, inserted, err = InsertBetIfUnderQuota(ctx, db, "player-1", candidates[2].ID, 2025, 2)
	require.NoError(t, err)
	assert.True(t, inserted, "quota is per season")

	var count int64
	require.NoError(t, db.Model(&models.Bet{}).Where("player_id = ?", "player-1").Count(&count).Error)
	assert.EqualValues(t, 3, count)

	var bet models.Bet
	require.NoError(t, db.First(&bet, id).Error)
	assert.Equal(t, 2024, bet.Season)
	assert.False(t, bet.CreatedAt.IsZero())
}

func TestCountBetsBySeason(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	candidates := seedCandidates(t, db, 2)

	for _, b := range []models.Bet{
		{PlayerID: "a", CandidateID: candidates[0].ID, Season: 2023},
		{PlayerID: "a", CandidateID: candidates[1].ID, Season: 2024},
		{PlayerID: "b", CandidateID: candidates[1].ID, Season: 2024},
	} {
		b := b
		require.NoError(t, db.Create(&b).Error)
	}

	counts, err := CountBetsBySeason(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{2023: 1, 2024: 2}, counts)
}
