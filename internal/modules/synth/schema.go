package synth

import "database/sql"

// EventsSchema holds the synthesis event history. Probabilities are stored
// as a msgpack blob keyed by qubit index.
const EventsSchema = `
CREATE TABLE IF NOT EXISTS synthesis_events (
    id INTEGER PRIMARY KEY,
    event_id TEXT UNIQUE NOT NULL,
    timestamp TEXT NOT NULL,
    gate_type TEXT NOT NULL,
    affected_qubits TEXT NOT NULL,
    probabilities BLOB,
    track_count INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_synthesis_events_gate ON synthesis_events(gate_type);
CREATE INDEX IF NOT EXISTS idx_synthesis_events_timestamp ON synthesis_events(timestamp);
`

// InitSchema ensures the synthesis_events table exists.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(EventsSchema)
	return err
}
