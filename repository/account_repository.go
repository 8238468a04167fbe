package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/jeudelamort/models"
)

type GormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) AccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) CreateWithProfile(ctx context.Context, account *models.Account, profile *models.Profile) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(account).Error; err != nil {
			return err
		}
		profile.UserID = account.ID
		return tx.Create(profile).Error
	})
}

func (r *GormAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Preload("Roles").Preload("Profile").Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return &account, nil
}

func (r *GormAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Preload("Roles").Preload("Profile").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

func (r *GormAccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func (r *GormAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (int, error) {
	return r.bump(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

func (r *GormAccountRepository) BumpSessionVersion(ctx context.Context, id string) (int, error) {
	return r.bump(ctx, id, map[string]interface{}{})
}

func (r *GormAccountRepository) bump(ctx context.Context, id string, updates map[string]interface{}) (int, error) {
	var versions []int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates["session_version"] = gorm.Expr("session_version + 1")
		result := tx.Model(&models.Account{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Account{}).Where("id = ?", id).Pluck("session_version", &versions).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to update session of account %s: %w", id, err)
	}
	if len(versions) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return versions[0], nil
}

func (r *GormAccountRepository) AddRole(ctx context.Context, accountID string, roleID uint) error {
	link := models.AccountRole{AccountID: accountID, RoleID: roleID}
	// avoid error if association already exists
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}
