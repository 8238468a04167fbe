package services

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/database"
	"github.com/camden-git/jeudelamort/repository"
)

type testEnv struct {
	db         *gorm.DB
	logger     *logrus.Logger
	candidates repository.CandidateRepository
	bets       repository.BetRepository
	profiles   repository.ProfileRepository
	accounts   repository.AccountRepository
	roles      repository.RoleRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := database.InitGormDB(database.DriverSQLite, filepath.Join(t.TempDir(), "services.db"), log)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{
		db:         db,
		logger:     log,
		candidates: repository.NewGormCandidateRepository(db),
		bets:       repository.NewGormBetRepository(db),
		profiles:   repository.NewGormProfileRepository(db),
		accounts:   repository.NewGormAccountRepository(db),
		roles:      repository.NewGormRoleRepository(db),
	}
}

func (e *testEnv) auth() *AuthService {
	return NewAuthService(e.accounts, e.profiles, e.roles, "test-secret", time.Hour, e.logger)
}

func (e *testEnv) signUp(t *testing.T, email, name string) *Session {
	t.Helper()
	session, err := e.auth().SignUp(context.Background(), SignUpInput{
		Email:           email,
		Password:        "motdepasse",
		PasswordConfirm: "motdepasse",
		DisplayName:     name,
	})
	require.NoError(t, err)
	return session
}

type sentEvent struct {
	UserID  string // empty for broadcasts
	Type    string
	Payload map[string]interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Broadcast(eventType string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{Type: eventType, Payload: payload})
}

func (n *recordingNotifier) SendToUser(userID, eventType string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{UserID: userID, Type: eventType, Payload: payload})
}
