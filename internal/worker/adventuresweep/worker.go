// Package adventuresweep runs a periodic sweep over generated-but-never-
// submitted adventures, logging them so an operator can see when a child
// abandoned a scenario instead of silently losing that signal.
package adventuresweep

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/moneyquest/backend/internal/repository"
	"github.com/moneyquest/backend/pkg/logger"
)

// staleAfter is how long an adventure can sit unsubmitted before the
// sweep logs it.
const staleAfter = 24 * time.Hour

// sweepBatchSize bounds how many stale rows one tick inspects.
const sweepBatchSize = 100

// Worker periodically logs adventures that were generated but never
// submitted.
type Worker struct {
	adventures *repository.AdventureRepository
	log        *logger.Logger
	cron       *cron.Cron
}

// New creates a Worker. Call Start to begin the schedule.
func New(adventures *repository.AdventureRepository, log *logger.Logger) *Worker {
	return &Worker{
		adventures: adventures,
		log:        log,
		cron:       cron.New(),
	}
}

// Start schedules the sweep to run on the given cron spec (e.g. "@hourly")
// and begins running it in the background.
func (w *Worker) Start(spec string) error {
	_, err := w.cron.AddFunc(spec, w.sweep)
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for any in-flight run to finish.
func (w *Worker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *Worker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-staleAfter)
	stale, err := w.adventures.ListStaleUnsubmitted(ctx, cutoff, sweepBatchSize)
	if err != nil {
		w.log.Error("adventure sweep failed", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	w.log.Warn("stale unsubmitted adventures found",
		"count", len(stale),
		"cutoff", cutoff.Format(time.RFC3339))
	for _, a := range stale {
		w.log.Info("adventure abandoned without a choice",
			"adventureId", a.ID.String(),
			"userId", a.UserID.String(),
			"generatedAt", a.CreatedAt.Format(time.RFC3339))
	}
}
