package repository

import (
	"context"
	"time"

	"github.com/camden-git/jeudelamort/models"
)

// CandidateRepository defines the methods for candidate data operations
type CandidateRepository interface {
	// CreateIfAbsent inserts c unless a candidate with the same external id
	// exists, in which case c is replaced by the stored row.
	CreateIfAbsent(ctx context.Context, c *models.Candidate) (created bool, err error)
	GetByID(ctx context.Context, id uint) (*models.Candidate, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Candidate, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Candidate, error)
	ListAll(ctx context.Context) ([]models.Candidate, error)
	ListDeceased(ctx context.Context) ([]models.Candidate, error)
	ListLiving(ctx context.Context) ([]models.Candidate, error)
	// RecordDeath sets the death date only if none is recorded yet.
	RecordDeath(ctx context.Context, id uint, deathDate time.Time) (updated bool, err error)
}

// BetRepository defines the methods for bet data operations
type BetRepository interface {
	CountForSeason(ctx context.Context, playerID string, season int) (int64, error)
	Exists(ctx context.Context, playerID string, candidateID uint, season int) (bool, error)
	// PlaceWithinQuota inserts bet atomically with the quota and uniqueness
	// checks. placed is false when either check rejected it.
	PlaceWithinQuota(ctx context.Context, bet *models.Bet, quota int) (placed bool, err error)
	ListAll(ctx context.Context) ([]models.Bet, error)
	ListByPlayer(ctx context.Context, playerID string) ([]models.Bet, error)
	ListByCandidate(ctx context.Context, candidateID uint) ([]models.Bet, error)
	CountBySeason(ctx context.Context) (map[int]int, error)
}

// ProfileRepository defines the methods for player profile data operations
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	ListAll(ctx context.Context) ([]models.Profile, error)
	DisplayNameTaken(ctx context.Context, name string, exceptUserID string) (bool, error)
	Rename(ctx context.Context, userID, displayName string) error
	UpdateAlerts(ctx context.Context, userID string, own, others bool) error
}

// AccountRepository defines the methods for account data operations
type AccountRepository interface {
	// CreateWithProfile stores the account and its profile in one transaction.
	CreateWithProfile(ctx context.Context, account *models.Account, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Count(ctx context.Context) (int64, error)
	// UpdatePassword stores the new hash and revokes older sessions.
	UpdatePassword(ctx context.Context, id, passwordHash string) (sessionVersion int, err error)
	BumpSessionVersion(ctx context.Context, id string) (int, error)
	AddRole(ctx context.Context, accountID string, roleID uint) error
}

// RoleRepository defines the methods for role data operations
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
}
