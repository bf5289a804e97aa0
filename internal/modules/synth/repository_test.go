package synth

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, InitSchema(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func testEvent(id string, gateType string) *SynthesisEvent {
	return &SynthesisEvent{
		ID:             id,
		Timestamp:      time.Now().UTC(),
		GateType:       gateType,
		AffectedQubits: []int{0, 1},
		Probabilities:  map[int]float64{0: 0.5, 1: 1.0},
		TrackCount:     2,
	}
}

func TestRepository_CreateAndRecent(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Create(testEvent("ev-1", "h")))
	require.NoError(t, repo.Create(testEvent("ev-2", "cx")))

	recent, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, "ev-2", recent[0].ID)
	assert.Equal(t, "cx", recent[0].GateType)
	assert.Equal(t, []int{0, 1}, recent[0].AffectedQubits)
	assert.Equal(t, map[int]float64{0: 0.5, 1: 1.0}, recent[0].Probabilities)
	assert.Equal(t, 2, recent[0].TrackCount)
}

func TestRepository_RecentRespectsLimit(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(testEvent(fmt.Sprintf("ev-%d", i), "h")))
	}

	recent, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "ev-4", recent[0].ID)
	assert.Equal(t, "ev-3", recent[1].ID)
}

func TestRepository_DuplicateIDRejected(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	require.NoError(t, repo.Create(testEvent("dup", "h")))
	assert.Error(t, repo.Create(testEvent("dup", "x")))
}

func TestRepository_Count(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, repo.Create(testEvent("ev-1", "h")))
	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepository_Prune(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Create(testEvent(fmt.Sprintf("ev-%d", i), "h")))
	}

	deleted, err := repo.Prune(3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)

	recent, err := repo.Recent(100)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "ev-9", recent[0].ID)
	assert.Equal(t, "ev-7", recent[2].ID)

	// Pruning below the floor is a no-op.
	deleted, err = repo.Prune(3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
