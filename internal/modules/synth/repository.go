package synth

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Repository persists synthesis events to SQLite.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a synthesis event repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "synth_events").Logger(),
	}
}

// Create inserts one synthesis event.
func (r *Repository) Create(event *SynthesisEvent) error {
	qubitsJSON, err := json.Marshal(event.AffectedQubits)
	if err != nil {
		return fmt.Errorf("failed to encode affected qubits: %w", err)
	}
	probsBlob, err := msgpack.Marshal(event.Probabilities)
	if err != nil {
		return fmt.Errorf("failed to encode probability snapshot: %w", err)
	}

	query := `
		INSERT INTO synthesis_events (
			event_id, timestamp, gate_type, affected_qubits, probabilities, track_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(
		query,
		event.ID,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.GateType,
		string(qubitsJSON),
		probsBlob,
		event.TrackCount,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert synthesis event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (r *Repository) Recent(limit int) ([]SynthesisEvent, error) {
	query := `
		SELECT event_id, timestamp, gate_type, affected_qubits, probabilities, track_count
		FROM synthesis_events
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query synthesis events: %w", err)
	}
	defer rows.Close()

	var out []SynthesisEvent
	for rows.Next() {
		var (
			ev         SynthesisEvent
			ts         string
			qubitsJSON string
			probsBlob  []byte
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.GateType, &qubitsJSON, &probsBlob, &ev.TrackCount); err != nil {
			return nil, fmt.Errorf("failed to scan synthesis event: %w", err)
		}
		ev.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if err := json.Unmarshal([]byte(qubitsJSON), &ev.AffectedQubits); err != nil {
			r.log.Warn().Err(err).Str("event_id", ev.ID).Msg("Malformed affected_qubits column")
		}
		if len(probsBlob) > 0 {
			if err := msgpack.Unmarshal(probsBlob, &ev.Probabilities); err != nil {
				r.log.Warn().Err(err).Str("event_id", ev.ID).Msg("Malformed probability blob")
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating synthesis events: %w", err)
	}
	return out, nil
}

// Count returns the number of stored events.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM synthesis_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count synthesis events: %w", err)
	}
	return count, nil
}

// Prune deletes everything but the newest keep events and reports how many
// rows went away.
func (r *Repository) Prune(keep int) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM synthesis_events
		WHERE id NOT IN (SELECT id FROM synthesis_events ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune synthesis events: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read prune row count: %w", err)
	}
	return deleted, nil
}
