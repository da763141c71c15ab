package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/raspverry/manus-like-agent/agentloop"
)

// Journal persists every observation to sqlite so a crashed or cancelled
// run leaves an inspectable trace.
type Journal struct {
	db *sql.DB
}

// JournalEntry is one recorded observation.
type JournalEntry struct {
	ID         int64
	RunID      string
	Capability string
	Arguments  string
	Result     string
	Err        string
	CreatedAt  time.Time
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS observations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	capability TEXT NOT NULL,
	arguments TEXT NOT NULL,
	result TEXT,
	error TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_observations_run ON observations(run_id);
`

// OpenJournal opens or creates the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one observation for runID.
func (j *Journal) Record(runID string, action agentloop.ActionEvent, observation agentloop.ObservationEvent) error {
	args, err := json.Marshal(action.Arguments)
	if err != nil {
		args = []byte("{}")
	}
	_, err = j.db.Exec(
		`INSERT INTO observations (run_id, capability, arguments, result, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, action.Capability, string(args), observation.Result, observation.Err, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

// Recent returns the most recent entries for runID, newest first.
func (j *Journal) Recent(runID string, limit int) ([]JournalEntry, error) {
	rows, err := j.db.Query(
		`SELECT id, run_id, capability, arguments, result, error, created_at
		 FROM observations WHERE run_id = ? ORDER BY id DESC LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var result, errText sql.NullString
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Capability, &e.Arguments, &result, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Result = result.String
		e.Err = errText.String
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
