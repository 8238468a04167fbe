package models

import "time"

// MaxBetsPerSeason caps how many candidates a player may pick in one season.
const MaxBetsPerSeason = 10

// Bet records that a player picked a candidate for a season (a calendar year).
// Bets are never updated or deleted; their outcome is derived from the
// candidate's death date.
type Bet struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	PlayerID    string     `json:"player_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_bet_pick,priority:1;index:idx_bet_player_season,priority:1"`
	CandidateID uint       `json:"candidate_id" gorm:"not null;uniqueIndex:idx_bet_pick,priority:2;index"`
	Season      int        `json:"season" gorm:"not null;uniqueIndex:idx_bet_pick,priority:3;index:idx_bet_player_season,priority:2"`
	Candidate   *Candidate `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
	CreatedAt   time.Time  `json:"created_at"`
}
