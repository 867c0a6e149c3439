package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const checkpointSchema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	id                    TEXT PRIMARY KEY,
	pipeline_id           TEXT NOT NULL,
	step_index_completed  INTEGER NOT NULL,
	context_snapshot      TEXT NOT NULL,
	created_at            INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkpoints_pipeline ON checkpoints(pipeline_id);
`

// SQLiteCheckpointSink is a modernc.org/sqlite-backed CheckpointSink
// (pure Go, no cgo) — deliberately a different driver than the usage
// sink's mattn/go-sqlite3 so the checkpoint store can ship in
// cgo-disabled builds while the usage log keeps mattn's faster cgo path.
type SQLiteCheckpointSink struct {
	db *sql.DB
}

// NewSQLiteCheckpointSink opens (or creates) a checkpoint store at path.
func NewSQLiteCheckpointSink(path string) (*SQLiteCheckpointSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sink: opening checkpoint db %q: %w", path, err)
	}
	if _, err := db.Exec(checkpointSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: creating checkpoint schema: %w", err)
	}
	return &SQLiteCheckpointSink{db: db}, nil
}

// Save persists cp, generating an id if unset, and returns that id.
func (s *SQLiteCheckpointSink) Save(cp Checkpoint) (string, error) {
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	snapshot, err := json.Marshal(cp.ContextSnapshot)
	if err != nil {
		return "", fmt.Errorf("sink: encoding context snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO checkpoints (id, pipeline_id, step_index_completed, context_snapshot, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		cp.ID, cp.PipelineID, cp.StepIndexCompleted, string(snapshot), cp.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("sink: saving checkpoint: %w", err)
	}
	return cp.ID, nil
}

// Load returns the checkpoint for checkpointID.
func (s *SQLiteCheckpointSink) Load(checkpointID string) (Checkpoint, error) {
	row := s.db.QueryRow(
		`SELECT id, pipeline_id, step_index_completed, context_snapshot, created_at
		 FROM checkpoints WHERE id = ?`, checkpointID)

	var cp Checkpoint
	var snapshot string
	var createdMs int64
	if err := row.Scan(&cp.ID, &cp.PipelineID, &cp.StepIndexCompleted, &snapshot, &createdMs); err != nil {
		return Checkpoint{}, fmt.Errorf("sink: loading checkpoint %q: %w", checkpointID, err)
	}
	if err := json.Unmarshal([]byte(snapshot), &cp.ContextSnapshot); err != nil {
		return Checkpoint{}, fmt.Errorf("sink: decoding context snapshot: %w", err)
	}
	cp.CreatedAt = time.UnixMilli(createdMs)
	return cp, nil
}

// List returns every checkpoint for pipelineID, earliest step first.
func (s *SQLiteCheckpointSink) List(pipelineID string) ([]Checkpoint, error) {
	rows, err := s.db.Query(
		`SELECT id, pipeline_id, step_index_completed, context_snapshot, created_at
		 FROM checkpoints WHERE pipeline_id = ? ORDER BY step_index_completed ASC`, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("sink: listing checkpoints: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		var snapshot string
		var createdMs int64
		if err := rows.Scan(&cp.ID, &cp.PipelineID, &cp.StepIndexCompleted, &snapshot, &createdMs); err != nil {
			return nil, fmt.Errorf("sink: scanning checkpoint: %w", err)
		}
		if err := json.Unmarshal([]byte(snapshot), &cp.ContextSnapshot); err != nil {
			return nil, fmt.Errorf("sink: decoding context snapshot: %w", err)
		}
		cp.CreatedAt = time.UnixMilli(createdMs)
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteCheckpointSink) Close() error {
	return s.db.Close()
}
