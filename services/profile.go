package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/repository"
)

// ProfileSettings is a partial update; nil fields are left unchanged.
type ProfileSettings struct {
	DisplayName          *string `json:"display_name"`
	AlertOwnCandidates   *bool   `json:"alert_mes_candidats"`
	AlertOtherCandidates *bool   `json:"alert_autres_candidats"`
}

type ProfileService struct {
	profiles repository.ProfileRepository
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// UpdateSettings applies settings to the player's profile and returns it.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID string, settings ProfileSettings) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	current, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, persistence("load profile", err)
	}

	if settings.DisplayName != nil {
		name, err := ValidateDisplayName(*settings.DisplayName)
		if err != nil {
			return nil, err
		}
		if name != current.DisplayName {
			taken, err := s.profiles.DisplayNameTaken(ctx, name, userID)
			if err != nil {
				return nil, persistence("check display name", err)
			}
			if taken {
				return nil, ErrDisplayNameTaken
			}
			if err := s.profiles.Rename(ctx, userID, name); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return nil, ErrDisplayNameTaken
				}
				return nil, persistence("rename profile", err)
			}
		}
	}

	if settings.AlertOwnCandidates != nil || settings.AlertOtherCandidates != nil {
		own, others := current.AlertOwnCandidates, current.AlertOtherCandidates
		if settings.AlertOwnCandidates != nil {
			own = *settings.AlertOwnCandidates
		}
		if settings.AlertOtherCandidates != nil {
			others = *settings.AlertOtherCandidates
		}
		if err := s.profiles.UpdateAlerts(ctx, userID, own, others); err != nil {
			return nil, persistence("update alerts", err)
		}
	}

	updated, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, persistence("reload profile", err)
	}
	return updated, nil
}
