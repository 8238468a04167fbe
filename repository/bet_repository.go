package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/database"
	"github.com/camden-git/jeudelamort/models"
)

type GormBetRepository struct {
	db *gorm.DB
}

func NewGormBetRepository(db *gorm.DB) BetRepository {
	return &GormBetRepository{db: db}
}

func (r *GormBetRepository) CountForSeason(ctx context.Context, playerID string, season int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("player_id = ? AND season = ?", playerID, season).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count bets of player %s for %d: %w", playerID, season, err)
	}
	return count, nil
}

func (r *GormBetRepository) Exists(ctx context.Context, playerID string, candidateID uint, season int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("player_id = ? AND candidate_id = ? AND season = ?", playerID, candidateID, season).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check bet of player %s on candidate %d: %w", playerID, candidateID, err)
	}
	return count > 0, nil
}

func (r *GormBetRepository) PlaceWithinQuota(ctx context.Context, bet *models.Bet, quota int) (bool, error) {
	id, inserted, err := database.InsertBetIfUnderQuota(ctx, r.db, bet.PlayerID, bet.CandidateID, bet.Season, quota)
	if err != nil || !inserted {
		return false, err
	}
	if err := r.db.WithContext(ctx).First(bet, id).Error; err != nil {
		return true, fmt.Errorf("failed to reload bet %d: %w", id, err)
	}
	return true, nil
}

func (r *GormBetRepository) ListAll(ctx context.Context) ([]models.Bet, error) {
	var bets []models.Bet
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

// ListByPlayer returns the player's bets with their candidates loaded.
func (r *GormBetRepository) ListByPlayer(ctx context.Context, playerID string) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.WithContext(ctx).Preload("Candidate").
		Where("player_id = ?", playerID).
		Order("season DESC").Order("id ASC").
		Find(&bets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bets of player %s: %w", playerID, err)
	}
	return bets, nil
}

func (r *GormBetRepository) ListByCandidate(ctx context.Context, candidateID uint) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("season DESC").Order("id ASC").
		Find(&bets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bets on candidate %d: %w", candidateID, err)
	}
	return bets, nil
}

func (r *GormBetRepository) CountBySeason(ctx context.Context) (map[int]int, error) {
	return database.CountBetsBySeason(ctx, r.db)
}
