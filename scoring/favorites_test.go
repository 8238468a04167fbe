package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camden-git/jeudelamort/models"
)

func picks(season int, ids ...uint) []models.Bet {
	bets := make([]models.Bet, 0, len(ids))
	for _, id := range ids {
		bets = append(bets, models.Bet{CandidateID: id, Season: season})
	}
	return bets
}

func TestTopByPickCount(t *testing.T) {
	bets := picks(2024, 5, 1, 1, 2, 2, 2, 3, 3, 4)

	top := TopByPickCount(bets, 3, 0)

	assert.Equal(t, []PickCount{{2, 3}, {1, 2}, {3, 2}}, top)
}

func TestTopByPickCountMinCount(t *testing.T) {
	bets := picks(2024, 1, 1, 1, 2, 2)
	assert.Equal(t, []PickCount{{1, 3}}, TopByPickCount(bets, 3, 3))
}

func TestSeasonFavorites(t *testing.T) {
	t.Run("full podium", func(t *testing.T) {
		bets := append(picks(2024, 1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4, 4), picks(2023, 9, 9, 9, 9, 9)...)
		assert.Equal(t, []PickCount{{4, 4}, {1, 3}, {2, 3}}, SeasonFavorites(bets, 2024))
	})
	t.Run("not enough qualifying candidates", func(t *testing.T) {
		bets := picks(2024, 1, 1, 1, 2, 2, 2, 3, 3)
		assert.Empty(t, SeasonFavorites(bets, 2024))
	})
}
