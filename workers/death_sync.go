package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/services"
	"github.com/camden-git/jeudelamort/wikidata"
)

// ErrSyncInProgress is returned when a run is requested while one is active.
var ErrSyncInProgress = errors.New("death sync already running")

// syncRunTimeout bounds a scheduled run.
const syncRunTimeout = 30 * time.Minute

type ClaimsSource interface {
	GetClaims(ctx context.Context, entityID string) (wikidata.Claims, error)
}

type DeathRecorder interface {
	RecordDeath(ctx context.Context, candidateID uint, deathDate time.Time) (*models.Candidate, error)
}

type SyncReport struct {
	Checked  int `json:"checked"`
	Recorded int `json:"recorded"`
	Failed   int `json:"failed"`
}

// DeathSync checks living candidates against Wikidata and records the deaths
// it finds.
type DeathSync struct {
	Candidates repository.CandidateRepository
	Claims     ClaimsSource
	Deaths     DeathRecorder
	NumWorkers int
	Logger     *logrus.Logger

	running sync.Mutex
	cron    *cron.Cron
}

func NewDeathSync(candidates repository.CandidateRepository, claims ClaimsSource, deaths DeathRecorder, numWorkers int, logger *logrus.Logger) *DeathSync {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &DeathSync{
		Candidates: candidates,
		Claims:     claims,
		Deaths:     deaths,
		NumWorkers: numWorkers,
		Logger:     logger,
	}
}

// RunOnce checks every living candidate once. Failures on single candidates
// are counted, not returned.
func (d *DeathSync) RunOnce(ctx context.Context) (SyncReport, error) {
	if !d.running.TryLock() {
		return SyncReport{}, ErrSyncInProgress
	}
	defer d.running.Unlock()

	living, err := d.Candidates.ListLiving(ctx)
	if err != nil {
		return SyncReport{}, err
	}

	var (
		report SyncReport
		mu     sync.Mutex
		wg     sync.WaitGroup
	)
	jobs := make(chan models.Candidate)
	wg.Add(d.NumWorkers)
	for i := 0; i < d.NumWorkers; i++ {
		go func(id int) {
			defer wg.Done()
			for c := range jobs {
				recorded, err := d.check(ctx, c)
				mu.Lock()
				report.Checked++
				if err != nil {
					report.Failed++
				} else if recorded {
					report.Recorded++
				}
				mu.Unlock()
				if err != nil {
					d.Logger.WithError(err).WithFields(logrus.Fields{"worker": id, "candidate": c.ID}).Warn("death sync check failed")
				}
			}
		}(i)
	}

feed:
	for _, c := range living {
		select {
		case jobs <- c:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	d.Logger.WithFields(logrus.Fields{
		"checked":  report.Checked,
		"recorded": report.Recorded,
		"failed":   report.Failed,
	}).Info("death sync finished")
	return report, ctx.Err()
}

func (d *DeathSync) check(ctx context.Context, c models.Candidate) (bool, error) {
	claims, err := d.Claims.GetClaims(ctx, c.ExternalID)
	if err != nil {
		return false, err
	}
	deathDate, ok := claims.Date(wikidata.PropDateOfDeath)
	if !ok {
		return false, nil
	}
	if _, err := d.Deaths.RecordDeath(ctx, c.ID, deathDate); err != nil {
		if errors.Is(err, services.ErrAlreadyDeceased) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Start schedules RunOnce on a cron spec such as "@daily".
func (d *DeathSync) Start(schedule string) error {
	c := cron.New(cron.WithLogger(cron.PrintfLogger(d.Logger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncRunTimeout)
		defer cancel()
		if _, err := d.RunOnce(ctx); err != nil {
			d.Logger.WithError(err).Warn("scheduled death sync did not complete")
		}
	})
	if err != nil {
		return err
	}
	d.cron = c
	c.Start()
	d.Logger.WithField("schedule", schedule).Info("death sync scheduled")
	return nil
}

// Stop waits for a running scheduled job to finish.
func (d *DeathSync) Stop() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
}
