package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/camden-git/jeudelamort/config"
	"github.com/camden-git/jeudelamort/database"
)

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jdlm",
		Short:   "Backend of the Jeu de la Mort prediction game.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.PersistentFlags()
	cfg.RegisterFlags(fs)
	config.BindEnv(fs)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit.",
			Args:  cobra.ExactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				log := cfg.NewLogger()
				db, err := database.InitGormDB(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
				if err != nil {
					return err
				}
				if err := database.AutoMigrateModels(db); err != nil {
					return err
				}
				log.Info("database schema is up to date")
				return nil
			},
		},
		&cobra.Command{
			Use:   "sync-deaths",
			Short: "Check every living candidate against Wikidata once.",
			Args:  cobra.ExactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer a.Close()
				report, err := a.deathSync.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("checked %d, recorded %d, failed %d\n", report.Checked, report.Recorded, report.Failed)
				return nil
			},
		},
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("jdlm v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.DeathSyncSchedule != "" {
		if err := a.deathSync.Start(cfg.DeathSyncSchedule); err != nil {
			return fmt.Errorf("invalid death sync schedule: %w", err)
		}
		defer a.deathSync.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
