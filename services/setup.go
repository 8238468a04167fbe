package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/permissions"
)

// SyncAdminRole ensures the administrator role exists and holds every defined
// permission. It is idempotent and runs on every startup.
func (s *AuthService) SyncAdminRole(ctx context.Context) (*models.Role, error) {
	all := permissions.GetAllPermissionKeys()
	sort.Strings(all)

	role, err := s.roles.GetByName(ctx, models.AdminRoleName)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to query for '%s' role: %w", models.AdminRoleName, err)
		}
		role = &models.Role{Name: models.AdminRoleName, GlobalPermissions: all}
		if err := s.roles.Create(ctx, role); err != nil {
			return nil, fmt.Errorf("failed to create '%s' role: %w", models.AdminRoleName, err)
		}
		s.logger.WithField("role", role.Name).Info("admin role created")
		return role, nil
	}

	sort.Strings(role.GlobalPermissions)
	if !reflect.DeepEqual(role.GlobalPermissions, all) {
		role.GlobalPermissions = all
		if err := s.roles.Update(ctx, role); err != nil {
			return nil, fmt.Errorf("failed to update '%s' role permissions: %w", models.AdminRoleName, err)
		}
		s.logger.WithField("role", role.Name).Info("admin role permissions updated")
	}
	return role, nil
}

// CreateFirstAdmin creates the initial administrator. It only succeeds while
// no account exists.
func (s *AuthService) CreateFirstAdmin(ctx context.Context, in SignUpInput) (*Session, error) {
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, persistence("count accounts", err)
	}
	if count > 0 {
		return nil, ErrSetupCompleted
	}

	displayName, err := ValidateDisplayName(in.DisplayName)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePassword(in.Password, in.PasswordConfirm); err != nil {
		return nil, err
	}

	role, err := s.SyncAdminRole(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{Email: email, GlobalPermissions: []string{}}
	if err := account.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	profile := &models.Profile{DisplayName: displayName, AlertOwnCandidates: true}
	if err := s.accounts.CreateWithProfile(ctx, account, profile); err != nil {
		return nil, persistence("create admin", err)
	}
	if err := s.accounts.AddRole(ctx, account.ID, role.ID); err != nil {
		return nil, persistence("assign admin role", err)
	}
	account.Roles = []*models.Role{role}
	account.Profile = profile

	s.logger.WithField("user", account.ID).Info("initial admin account created")
	return s.issue(account)
}
