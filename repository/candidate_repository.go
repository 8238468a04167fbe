package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/jeudelamort/models"
)

type GormCandidateRepository struct {
	db *gorm.DB
}

func NewGormCandidateRepository(db *gorm.DB) CandidateRepository {
	return &GormCandidateRepository{db: db}
}

func (r *GormCandidateRepository) CreateIfAbsent(ctx context.Context, c *models.Candidate) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(c)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create candidate %s: %w", c.ExternalID, result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	existing, err := r.GetByExternalID(ctx, c.ExternalID)
	if err != nil {
		return false, err
	}
	*c = *existing
	return false, nil
}

func (r *GormCandidateRepository) GetByID(ctx context.Context, id uint) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get candidate by ID %d: %w", id, err)
	}
	return &c, nil
}

func (r *GormCandidateRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get candidate by external ID %s: %w", externalID, err)
	}
	return &c, nil
}

func (r *GormCandidateRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Candidate, error) {
	out := make(map[uint]models.Candidate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var candidates []models.Candidate
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	for _, c := range candidates {
		out[c.ID] = c
	}
	return out, nil
}

func (r *GormCandidateRepository) ListAll(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// ListDeceased returns dead candidates, most recent death first.
func (r *GormCandidateRepository) ListDeceased(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.WithContext(ctx).
		Where("death_date IS NOT NULL").
		Order("death_date DESC").Order("id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deceased candidates: %w", err)
	}
	return candidates, nil
}

func (r *GormCandidateRepository) ListLiving(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.WithContext(ctx).Where("death_date IS NULL").Order("id ASC").Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list living candidates: %w", err)
	}
	return candidates, nil
}

func (r *GormCandidateRepository) RecordDeath(ctx context.Context, id uint, deathDate time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ? AND death_date IS NULL", id).
		Updates(map[string]interface{}{"death_date": deathDate, "updated_at": time.Now()})
	if result.Error != nil {
		return false, fmt.Errorf("failed to record death of candidate %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
