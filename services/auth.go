package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/repository"
)

const (
	MinPasswordLength = 6
	tokenIssuer       = "jeudelamort"
	placeholderName   = "Nouveau joueur"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthEventType names an identity change.
type AuthEventType string

const (
	EventSignedUp        AuthEventType = "signed_up"
	EventSignedIn        AuthEventType = "signed_in"
	EventSignedOut       AuthEventType = "signed_out"
	EventPasswordUpdated AuthEventType = "password_updated"
)

type AuthEvent struct {
	Type   AuthEventType `json:"type"`
	UserID string        `json:"user_id"`
	At     time.Time     `json:"at"`
}

// SessionClaims are carried by every session token. SessionVersion must match
// the account's current version for the token to be accepted.
type SessionClaims struct {
	SessionVersion int `json:"sv"`
	jwt.RegisteredClaims
}

type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *models.Account `json:"account"`
}

type SignUpInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	DisplayName     string `json:"display_name"`
}

type AuthService struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	roles    repository.RoleRepository
	secret   []byte
	ttl      time.Duration
	logger   *logrus.Logger
	now      func() time.Time

	mu          sync.RWMutex
	subscribers map[int]func(AuthEvent)
	nextSubID   int
}

func NewAuthService(accounts repository.AccountRepository, profiles repository.ProfileRepository, roles repository.RoleRepository, secret string, ttl time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{
		accounts:    accounts,
		profiles:    profiles,
		roles:       roles,
		secret:      []byte(secret),
		ttl:         ttl,
		logger:      logger,
		now:         time.Now,
		subscribers: make(map[int]func(AuthEvent)),
	}
}

// Subscribe registers fn to be called after every identity change. The
// returned function removes the subscription.
func (s *AuthService) Subscribe(fn func(AuthEvent)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthService) publish(t AuthEventType, userID string) {
	event := AuthEvent{Type: t, UserID: userID, At: s.now()}
	s.mu.RLock()
	fns := make([]func(AuthEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(event)
	}
}

// ValidateDisplayName applies the display name rules shared by sign-up and
// profile edits, returning the trimmed name.
func ValidateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrDisplayNameRequired
	}
	if utf8.RuneCountInString(name) < models.MinDisplayNameLength {
		return "", ErrDisplayNameTooShort
	}
	return name, nil
}

// ValidatePassword checks the length rule and the confirmation.
func ValidatePassword(password, confirm string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// SignUp creates an account and its profile, then signs the player in. The
// profile starts with a placeholder name and is renamed once the account
// exists; a failed rename leaves the placeholder in place.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
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

	taken, err := s.profiles.DisplayNameTaken(ctx, displayName, "")
	if err != nil {
		return nil, persistence("check display name", err)
	}
	if taken {
		return nil, ErrDisplayNameTaken
	}

	account := &models.Account{Email: email, GlobalPermissions: []string{}}
	if err := account.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	profile := &models.Profile{
		DisplayName:          placeholderName + " " + uuid.NewString()[:8],
		AlertOwnCandidates:   true,
		AlertOtherCandidates: false,
	}
	if err := s.accounts.CreateWithProfile(ctx, account, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, persistence("create account", err)
	}

	log := s.logger.WithField("user", account.ID)
	if err := s.profiles.Rename(ctx, account.ID, displayName); err != nil {
		log.WithError(err).Warn("failed to apply chosen display name, keeping placeholder")
	} else {
		profile.DisplayName = displayName
	}
	account.Profile = profile
	log.Info("account created")

	session, err := s.issue(account)
	if err != nil {
		return nil, err
	}
	s.publish(EventSignedUp, account.ID)
	return session, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, persistence("load account", err)
	}
	if !account.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	session, err := s.issue(account)
	if err != nil {
		return nil, err
	}
	s.publish(EventSignedIn, account.ID)
	return session, nil
}

// SignOut revokes every token issued to the account so far.
func (s *AuthService) SignOut(ctx context.Context, account *models.Account) error {
	if account == nil {
		return ErrNotAuthenticated
	}
	if _, err := s.accounts.BumpSessionVersion(ctx, account.ID); err != nil {
		return persistence("revoke sessions", err)
	}
	s.publish(EventSignedOut, account.ID)
	return nil
}

// Authenticate resolves a session token to its account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, persistence("load account", err)
	}
	if account.SessionVersion != claims.SessionVersion {
		return nil, ErrInvalidToken
	}
	return account, nil
}

// UpdatePassword changes the password, revokes older tokens and returns a
// fresh session.
func (s *AuthService) UpdatePassword(ctx context.Context, account *models.Account, password, confirm string) (*Session, error) {
	if account == nil {
		return nil, ErrNotAuthenticated
	}
	if err := ValidatePassword(password, confirm); err != nil {
		return nil, err
	}
	updated := *account
	if err := updated.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	version, err := s.accounts.UpdatePassword(ctx, account.ID, updated.PasswordHash)
	if err != nil {
		return nil, persistence("update password", err)
	}
	updated.SessionVersion = version

	session, err := s.issue(&updated)
	if err != nil {
		return nil, err
	}
	s.publish(EventPasswordUpdated, account.ID)
	return session, nil
}

func (s *AuthService) issue(account *models.Account) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &SessionClaims{
		SessionVersion: account.SessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: expiresAt, Account: account}, nil
}
