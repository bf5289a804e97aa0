package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/quantum-synth/internal/events"
)

// EventPruner trims the synthesis event history to a fixed size.
type EventPruner interface {
	Prune(keep int) (int64, error)
	Count() (int, error)
}

// PruneEventsJob keeps the synthesis_events table from growing without
// bound. Runs hourly.
type PruneEventsJob struct {
	log    zerolog.Logger
	repo   EventPruner
	events *events.Manager
	keep   int
}

// NewPruneEventsJob creates a new prune job that keeps the newest `keep`
// events.
func NewPruneEventsJob(repo EventPruner, eventManager *events.Manager, keep int, log zerolog.Logger) *PruneEventsJob {
	return &PruneEventsJob{
		log:    log.With().Str("job", "prune_events").Logger(),
		repo:   repo,
		events: eventManager,
		keep:   keep,
	}
}

// Name returns the job name
func (j *PruneEventsJob) Name() string {
	return "prune_events"
}

// Run deletes everything but the newest events.
func (j *PruneEventsJob) Run() error {
	deleted, err := j.repo.Prune(j.keep)
	if err != nil {
		return err
	}

	if deleted == 0 {
		j.log.Debug().Int("keep", j.keep).Msg("No events to prune")
		return nil
	}

	remaining, err := j.repo.Count()
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to count remaining events")
		remaining = j.keep
	}

	j.log.Info().
		Int64("deleted", deleted).
		Int("remaining", remaining).
		Msg("Pruned synthesis event history")

	if j.events != nil {
		j.events.Emit(events.EventsPruned, "scheduler", map[string]interface{}{
			"deleted":   deleted,
			"remaining": remaining,
		})
	}

	return nil
}
