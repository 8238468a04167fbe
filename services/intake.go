package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/wikidata"
)

// CandidateFacts is what a search result tells us about a person.
type CandidateFacts struct {
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	BirthDate   string `json:"birthDate"` // YYYY-MM-DD
	Description string `json:"description"`
	Photo       string `json:"photoReference"`
}

type IntakeService struct {
	candidates repository.CandidateRepository
	bets       repository.BetRepository
	logger     *logrus.Logger
}

func NewIntakeService(candidates repository.CandidateRepository, bets repository.BetRepository, logger *logrus.Logger) *IntakeService {
	return &IntakeService{candidates: candidates, bets: bets, logger: logger}
}

// AddCandidate registers a pick of the person described by facts for season.
// The candidate row is created on first pick. The bet itself is inserted by a
// single conditional statement so concurrent submissions can't exceed the
// quota or duplicate a pick.
func (s *IntakeService) AddCandidate(ctx context.Context, playerID string, facts CandidateFacts, season int) (*models.Bet, error) {
	if playerID == "" {
		return nil, ErrNotAuthenticated
	}
	facts.ExternalID = strings.TrimSpace(facts.ExternalID)
	facts.Name = strings.TrimSpace(facts.Name)
	if facts.ExternalID == "" || facts.Name == "" {
		return nil, ErrInvalidCandidate
	}

	log := s.logger.WithFields(logrus.Fields{"player": playerID, "candidate": facts.ExternalID, "season": season})

	count, err := s.bets.CountForSeason(ctx, playerID, season)
	if err != nil {
		return nil, persistence("count bets", err)
	}
	if count >= models.MaxBetsPerSeason {
		return nil, ErrQuotaExceeded
	}

	candidate := &models.Candidate{
		Name:        facts.Name,
		Description: facts.Description,
		Photo:       facts.Photo,
		ExternalID:  facts.ExternalID,
	}
	if birth, ok := wikidata.ParseDateStamp(facts.BirthDate); ok {
		candidate.BirthDate = &birth
	}
	created, err := s.candidates.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, persistence("store candidate", err)
	}

	if !created {
		exists, err := s.bets.Exists(ctx, playerID, candidate.ID, season)
		if err != nil {
			return nil, persistence("check bet", err)
		}
		if exists {
			return nil, ErrAlreadyPicked
		}
	}

	bet := &models.Bet{PlayerID: playerID, CandidateID: candidate.ID, Season: season}
	placed, err := s.bets.PlaceWithinQuota(ctx, bet, models.MaxBetsPerSeason)
	if err != nil {
		return nil, persistence("insert bet", err)
	}
	if !placed {
		// lost a race with another submission, find out which rule stopped us
		exists, err := s.bets.Exists(ctx, playerID, candidate.ID, season)
		if err != nil {
			return nil, persistence("check bet", err)
		}
		if exists {
			return nil, ErrAlreadyPicked
		}
		return nil, ErrQuotaExceeded
	}

	bet.Candidate = candidate
	log.WithField("bet", bet.ID).Info("bet placed")
	return bet, nil
}

// CurrentSeason is the season bets are placed in at t.
func CurrentSeason(t time.Time) int {
	return t.Year()
}
