package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/jeudelamort/models"
)

func leaderboardFixture() ([]models.Profile, []models.Bet, map[uint]models.Candidate) {
	profiles := []models.Profile{
		{UserID: "alice", DisplayName: "Alice"},
		{UserID: "bob", DisplayName: "Bob"},
		{UserID: "carol", DisplayName: "Carol"},
		{UserID: "dave", DisplayName: ""},
		{UserID: "erin", DisplayName: "Erin"},
	}
	candidates := map[uint]models.Candidate{
		1: {ID: 1, BirthDate: date(1960, time.March, 1), DeathDate: date(2024, time.January, 1)}, // 63 -> 9
		2: {ID: 2, BirthDate: date(1930, time.March, 1), DeathDate: date(2024, time.May, 1)},     // 94 -> 1
		3: {ID: 3, BirthDate: date(1980, time.March, 1), DeathDate: date(2024, time.May, 1)},     // 44 -> 10
		4: {ID: 4, BirthDate: date(1950, time.March, 1)},
	}
	bets := []models.Bet{
		{PlayerID: "alice", CandidateID: 1, Season: 2024},
		{PlayerID: "alice", CandidateID: 2, Season: 2024},
		{PlayerID: "bob", CandidateID: 3, Season: 2024},
		{PlayerID: "carol", CandidateID: 4, Season: 2024},
		{PlayerID: "dave", CandidateID: 4, Season: 2024},
		{PlayerID: "erin", CandidateID: 1, Season: 2023},
	}
	return profiles, bets, candidates
}

func TestBuildLeaderboard(t *testing.T) {
	profiles, bets, candidates := leaderboardFixture()

	standings := BuildLeaderboard(profiles, bets, candidates, 2024)

	require.Len(t, standings, 4)
	assert.Equal(t, Standing{Rank: 1, PlayerID: "alice", DisplayName: "Alice", TotalPoints: 10, WinCount: 2}, standings[0])
	assert.Equal(t, Standing{Rank: 2, PlayerID: "bob", DisplayName: "Bob", TotalPoints: 10, WinCount: 1}, standings[1])
	assert.Equal(t, Standing{Rank: 3, PlayerID: "carol", DisplayName: "Carol"}, standings[2])
	assert.Equal(t, Standing{Rank: 4, PlayerID: "dave", DisplayName: UnknownPlayerName}, standings[3])
}

func TestBuildLeaderboardIsIdempotent(t *testing.T) {
	profiles, bets, candidates := leaderboardFixture()
	assert.Equal(t,
		BuildLeaderboard(profiles, bets, candidates, 2024),
		BuildLeaderboard(profiles, bets, candidates, 2024))
}

func TestBuildLeaderboardPlayerWithoutProfile(t *testing.T) {
	candidates := map[uint]models.Candidate{1: {ID: 1}}
	bets := []models.Bet{{PlayerID: "ghost", CandidateID: 1, Season: 2024}}

	standings := BuildLeaderboard(nil, bets, candidates, 2024)

	require.Len(t, standings, 1)
	assert.Equal(t, UnknownPlayerName, standings[0].DisplayName)
}

func TestBuildLeaderboardEmptySeason(t *testing.T) {
	profiles, bets, candidates := leaderboardFixture()
	assert.Empty(t, BuildLeaderboard(profiles, bets, candidates, 2020))
}
