package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/jeudelamort/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// InitGormDB opens the store selected by driver and routes GORM's SQL log
// through log.
func InitGormDB(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	gormLogger := logger.New(
		log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database using GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	if driver == DriverSQLite {
		// enable write-ahead logging so readers don't block the writer
		if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
			log.WithError(err).Warn("failed to set WAL mode")
		}
		if err := db.Exec("PRAGMA busy_timeout=5000;").Error; err != nil {
			log.WithError(err).Warn("failed to set busy timeout")
		}
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.WithField("driver", driver).Info("database initialized")
	return db, nil
}

// AutoMigrateModels creates or updates every table the game uses.
func AutoMigrateModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Account{},
		&models.Role{},
		&models.AccountRole{},
		&models.Profile{},
		&models.Candidate{},
		&models.Bet{},
	)
	if err != nil {
		return fmt.Errorf("GORM AutoMigrate failed: %w", err)
	}
	return nil
}
