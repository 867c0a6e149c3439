package sink

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryUsageSink is an in-process UsageSink backed by a slice guarded
// by an RWMutex, the same copy-on-append idiom as the evidence store's
// memory backend. Intended for tests and single-process deployments.
type MemoryUsageSink struct {
	mu      sync.RWMutex
	records []UsageRecord
	log     *slog.Logger
}

// NewMemoryUsageSink builds an empty MemoryUsageSink.
func NewMemoryUsageSink() *MemoryUsageSink {
	return &MemoryUsageSink{log: slog.Default()}
}

// Append records a usage entry. It never returns an error to the
// caller; per spec §6.4, sink failures are logged and suppressed.
func (s *MemoryUsageSink) Append(record UsageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

// All returns a copy of every recorded UsageRecord, oldest first.
func (s *MemoryUsageSink) All() []UsageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UsageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// MemoryCheckpointSink is an in-process CheckpointSink backed by a map
// keyed by checkpoint id, grounded on the same RWMutex+map idiom.
type MemoryCheckpointSink struct {
	mu          sync.RWMutex
	checkpoints map[string]Checkpoint
	log         *slog.Logger
}

// NewMemoryCheckpointSink builds an empty MemoryCheckpointSink.
func NewMemoryCheckpointSink() *MemoryCheckpointSink {
	return &MemoryCheckpointSink{checkpoints: make(map[string]Checkpoint), log: slog.Default()}
}

// Save persists cp and returns a generated checkpoint id.
func (s *MemoryCheckpointSink) Save(cp Checkpoint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	snapshot := make(map[string]string, len(cp.ContextSnapshot))
	for k, v := range cp.ContextSnapshot {
		snapshot[k] = v
	}
	cp.ContextSnapshot = snapshot

	s.checkpoints[cp.ID] = cp
	return cp.ID, nil
}

// Load returns the checkpoint for checkpointID, or an error if absent.
func (s *MemoryCheckpointSink) Load(checkpointID string) (Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return Checkpoint{}, fmt.Errorf("sink: no checkpoint %q", checkpointID)
	}
	return cp, nil
}

// List returns every checkpoint for pipelineID, oldest step first.
func (s *MemoryCheckpointSink) List(pipelineID string) ([]Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Checkpoint
	for _, cp := range s.checkpoints {
		if cp.PipelineID == pipelineID {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StepIndexCompleted < out[j].StepIndexCompleted
	})
	return out, nil
}
