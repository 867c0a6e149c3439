package sink

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const usageSchema = `
CREATE TABLE IF NOT EXISTS usage_records (
	trace_id      TEXT NOT NULL,
	model_id      TEXT NOT NULL,
	provider      TEXT NOT NULL,
	started_at    INTEGER NOT NULL,
	finished_at   INTEGER NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	cost_usd      REAL NOT NULL,
	outcome       TEXT NOT NULL,
	attempt_index INTEGER NOT NULL,
	error_kind    TEXT
);
CREATE INDEX IF NOT EXISTS idx_usage_trace ON usage_records(trace_id);
`

// SQLiteUsageSink is a mattn/go-sqlite3-backed UsageSink, matching the
// evidence package's WAL-mode SQLite storage idiom.
type SQLiteUsageSink struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLiteUsageSink opens (or creates) a usage log at path.
func NewSQLiteUsageSink(path string) (*SQLiteUsageSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sink: opening usage db %q: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: enabling WAL mode: %w", err)
	}
	if _, err := db.Exec(usageSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: creating usage schema: %w", err)
	}
	return &SQLiteUsageSink{db: db, log: slog.Default()}, nil
}

// Append inserts record. Per spec §6.4, a write failure is logged, not
// propagated to the caller.
func (s *SQLiteUsageSink) Append(record UsageRecord) {
	_, err := s.db.Exec(
		`INSERT INTO usage_records
			(trace_id, model_id, provider, started_at, finished_at,
			 input_tokens, output_tokens, cost_usd, outcome, attempt_index, error_kind)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.TraceID, record.ModelID, record.Provider,
		record.StartedAt.UnixMilli(), record.FinishedAt.UnixMilli(),
		record.InputTokens, record.OutputTokens, record.CostUSD,
		string(record.Outcome), record.AttemptIndex, record.ErrorKind,
	)
	if err != nil {
		s.log.Error("sink: failed to append usage record", "trace_id", record.TraceID, "error", err)
	}
}

// Close releases the underlying database handle.
func (s *SQLiteUsageSink) Close() error {
	return s.db.Close()
}

// ByTrace returns every usage record for traceID, oldest first.
func (s *SQLiteUsageSink) ByTrace(traceID string) ([]UsageRecord, error) {
	rows, err := s.db.Query(
		`SELECT trace_id, model_id, provider, started_at, finished_at,
			input_tokens, output_tokens, cost_usd, outcome, attempt_index, error_kind
		 FROM usage_records WHERE trace_id = ? ORDER BY started_at ASC`, traceID)
	if err != nil {
		return nil, fmt.Errorf("sink: querying usage records: %w", err)
	}
	defer rows.Close()

	var out []UsageRecord
	for rows.Next() {
		var r UsageRecord
		var startedMs, finishedMs int64
		var outcome string
		var errorKind sql.NullString
		if err := rows.Scan(&r.TraceID, &r.ModelID, &r.Provider, &startedMs, &finishedMs,
			&r.InputTokens, &r.OutputTokens, &r.CostUSD, &outcome, &r.AttemptIndex, &errorKind); err != nil {
			return nil, fmt.Errorf("sink: scanning usage record: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedMs)
		r.FinishedAt = time.UnixMilli(finishedMs)
		r.Outcome = Outcome(outcome)
		r.ErrorKind = errorKind.String
		out = append(out, r)
	}
	return out, rows.Err()
}
