package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/models"
)

type GormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get profile of %s: %w", userID, err)
	}
	return &p, nil
}

// ListAll returns profiles in sign-up order.
func (r *GormProfileRepository) ListAll(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("user_id ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (r *GormProfileRepository) DisplayNameTaken(ctx context.Context, name string, exceptUserID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("display_name_key = ?", models.NormalizeDisplayName(name))
	if exceptUserID != "" {
		q = q.Where("user_id <> ?", exceptUserID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check display name: %w", err)
	}
	return count > 0, nil
}

// Rename returns gorm.ErrDuplicatedKey when another profile holds the name.
func (r *GormProfileRepository) Rename(ctx context.Context, userID, displayName string) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"display_name":     displayName,
			"display_name_key": models.NormalizeDisplayName(displayName),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return result.Error
		}
		return fmt.Errorf("failed to rename profile %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormProfileRepository) UpdateAlerts(ctx context.Context, userID string, own, others bool) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"alert_own_candidates":   own,
			"alert_other_candidates": others,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update alerts of %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
