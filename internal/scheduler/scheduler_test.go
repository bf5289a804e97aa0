package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopJob struct{}

func (noopJob) Run() error   { return nil }
func (noopJob) Name() string { return "noop" }

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	// The schedules the server registers.
	require.NoError(t, s.AddJob("@hourly", noopJob{}))
	require.NoError(t, s.AddJob("@every 6h", noopJob{}))

	assert.Error(t, s.AddJob("not a schedule", noopJob{}))
}
