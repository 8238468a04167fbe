package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/scoring"
)

// Notifier delivers game events to connected players.
type Notifier interface {
	Broadcast(eventType string, payload map[string]interface{})
	SendToUser(userID, eventType string, payload map[string]interface{})
}

const (
	EventCandidateDeceased = "candidate.deceased"
	EventAlert             = "alert"
)

type DeathService struct {
	candidates repository.CandidateRepository
	bets       repository.BetRepository
	profiles   repository.ProfileRepository
	notifier   Notifier
	logger     *logrus.Logger
}

func NewDeathService(candidates repository.CandidateRepository, bets repository.BetRepository, profiles repository.ProfileRepository, notifier Notifier, logger *logrus.Logger) *DeathService {
	return &DeathService{candidates: candidates, bets: bets, profiles: profiles, notifier: notifier, logger: logger}
}

// RecordDeath stores the date of death of a candidate, once, and alerts
// players according to their preferences: those who picked the candidate for
// the season of death when they follow their own candidates, everyone else
// when they follow other players' candidates.
func (s *DeathService) RecordDeath(ctx context.Context, candidateID uint, deathDate time.Time) (*models.Candidate, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, persistence("load candidate", err)
	}
	if candidate.DeathDate != nil {
		return nil, ErrAlreadyDeceased
	}
	deathDate = time.Date(deathDate.Year(), deathDate.Month(), deathDate.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.BirthDate != nil && deathDate.Before(*candidate.BirthDate) {
		return nil, ErrInvalidDeathDate
	}

	updated, err := s.candidates.RecordDeath(ctx, candidateID, deathDate)
	if err != nil {
		return nil, persistence("record death", err)
	}
	if !updated {
		return nil, ErrAlreadyDeceased
	}
	candidate.DeathDate = &deathDate

	log := s.logger.WithFields(logrus.Fields{"candidate": candidate.ID, "name": candidate.Name, "death": deathDate.Format("2006-01-02")})
	log.Info("death recorded")

	if err := s.notify(ctx, *candidate); err != nil {
		log.WithError(err).Warn("failed to send death alerts")
	}
	return candidate, nil
}

func (s *DeathService) notify(ctx context.Context, c models.Candidate) error {
	if s.notifier == nil {
		return nil
	}
	season := c.DeathDate.Year()
	points := scoring.CandidatePoints(c, time.Now())
	payload := map[string]interface{}{
		"candidate_id": c.ID,
		"name":         c.Name,
		"death_date":   c.DeathDate.Format("2006-01-02"),
		"season":       season,
		"points":       points,
	}
	s.notifier.Broadcast(EventCandidateDeceased, payload)

	bets, err := s.bets.ListByCandidate(ctx, c.ID)
	if err != nil {
		return err
	}
	winners := make(map[string]bool)
	for _, b := range bets {
		if b.Season == season {
			winners[b.PlayerID] = true
		}
	}

	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		own := winners[p.UserID]
		if (own && p.AlertOwnCandidates) || (!own && p.AlertOtherCandidates) {
			alert := make(map[string]interface{}, len(payload)+1)
			for k, v := range payload {
				alert[k] = v
			}
			alert["own"] = own
			s.notifier.SendToUser(p.UserID, EventAlert, alert)
		}
	}
	return nil
}
