package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/camden-git/jeudelamort/config"
	"github.com/camden-git/jeudelamort/database"
	"github.com/camden-git/jeudelamort/handlers"
	"github.com/camden-git/jeudelamort/realtime"
	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/services"
	"github.com/camden-git/jeudelamort/wikidata"
	"github.com/camden-git/jeudelamort/workers"
)

type app struct {
	log       *logrus.Logger
	db        *gorm.DB
	hub       *realtime.Hub
	cache     *wikidata.RedisCache
	deathSync *workers.DeathSync
	router    http.Handler

	unsubscribe func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := cfg.NewLogger()

	db, err := database.InitGormDB(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrateModels(db); err != nil {
		return nil, err
	}

	candidates := repository.NewGormCandidateRepository(db)
	bets := repository.NewGormBetRepository(db)
	profiles := repository.NewGormProfileRepository(db)
	accounts := repository.NewGormAccountRepository(db)
	roles := repository.NewGormRoleRepository(db)

	auth := services.NewAuthService(accounts, profiles, roles, cfg.JWTSecret, cfg.JWTTTL, log)
	if _, err := auth.SyncAdminRole(ctx); err != nil {
		return nil, err
	}

	hub := realtime.NewHub(log)
	go hub.Run()
	a := &app{log: log, db: db, hub: hub}
	a.unsubscribe = hub.FollowIdentity(auth)

	client := wikidata.NewClient(wikidata.ClientOptions{
		BaseURL:  cfg.WikidataURL,
		Language: cfg.WikidataLanguage,
		Timeout:  cfg.WikidataTimeout,
		RPS:      cfg.WikidataRPS,
		Logger:   log,
	})
	var cache wikidata.Cache
	if cfg.RedisURL != "" {
		rc, err := wikidata.NewRedisCacheFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("search cache disabled")
		} else {
			a.cache = rc
			cache = rc
		}
	}
	searcher := wikidata.NewSearcher(client, cache, cfg.SearchCacheTTL, log)

	deaths := services.NewDeathService(candidates, bets, profiles, hub, log)
	a.deathSync = workers.NewDeathSync(candidates, client, deaths, cfg.DeathSyncWorkers, log)

	a.router = handlers.NewRouter(handlers.Deps{
		Candidates:     candidates,
		Bets:           bets,
		Profiles:       profiles,
		Auth:           auth,
		Intake:         services.NewIntakeService(candidates, bets, log),
		Profile:        services.NewProfileService(profiles),
		Deaths:         deaths,
		Searcher:       searcher,
		Sync:           a.deathSync,
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins,
		PhotoBaseURL:   cfg.PhotoBaseURL,
		Logger:         log,
	})
	return a, nil
}

func (a *app) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.hub.Stop()
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
