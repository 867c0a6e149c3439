package registry

import (
	"sort"
	"sync/atomic"
)

// snapshot is the read-mostly view swapped atomically on reload.
type snapshot struct {
	models map[string]ModelCapability
	order  []string // insertion order, for deterministic List output
}

// Registry is the in-memory model catalog. Reads never block a concurrent
// Reload, and Reload either fully succeeds or leaves the previous
// snapshot intact (spec §4.2 invariant).
type Registry struct {
	current atomic.Pointer[snapshot]
}

// New builds an empty registry. Load or Reload populates it.
func New() *Registry {
	r := &Registry{}
	r.current.Store(&snapshot{models: make(map[string]ModelCapability)})
	return r
}

// NewFromModels builds a registry from an already-validated model list,
// bypassing manifest parsing (used by tests and programmatic callers).
func NewFromModels(models []ModelCapability) (*Registry, error) {
	snap, err := buildSnapshot(models)
	if err != nil {
		return nil, err
	}
	r := &Registry{}
	r.current.Store(snap)
	return r, nil
}

// Get returns the catalog entry for id, or NotFoundError.
func (r *Registry) Get(id string) (ModelCapability, error) {
	snap := r.current.Load()
	m, ok := snap.models[id]
	if !ok {
		return ModelCapability{}, &NotFoundError{ID: id}
	}
	return m, nil
}

// List returns catalog entries matching filter, in manifest order.
func (r *Registry) List(filter Filter) []ModelCapability {
	snap := r.current.Load()
	out := make([]ModelCapability, 0, len(snap.order))
	for _, id := range snap.order {
		m := snap.models[id]
		if filter.matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// Len reports the number of entries in the current snapshot.
func (r *Registry) Len() int {
	return len(r.current.Load().models)
}

// Reload atomically replaces the catalog with models. On validation
// failure the previous snapshot remains visible to all readers.
func (r *Registry) Reload(models []ModelCapability) error {
	snap, err := buildSnapshot(models)
	if err != nil {
		return err
	}
	r.current.Store(snap)
	return nil
}

// buildSnapshot validates and indexes models per spec §6.1: duplicate
// ids, negative numeric fields, unrecognized provider tags, and unknown
// capability flags are all rejected wholesale.
func buildSnapshot(models []ModelCapability) (*snapshot, error) {
	snap := &snapshot{
		models: make(map[string]ModelCapability, len(models)),
		order:  make([]string, 0, len(models)),
	}

	for _, m := range models {
		if m.ID == "" {
			return nil, &ManifestError{Reason: "model entry missing id"}
		}
		if _, dup := snap.models[m.ID]; dup {
			return nil, &ManifestError{Reason: "duplicate model id " + m.ID}
		}
		if !knownProviders[m.Provider] {
			return nil, &ManifestError{Reason: "unrecognized provider tag for " + m.ID}
		}
		if m.ContextWindow <= 0 {
			return nil, &ManifestError{Reason: "context_window must be positive for " + m.ID}
		}
		if m.InputCostPer1K < 0 || m.OutputCostPer1K < 0 {
			return nil, &ManifestError{Reason: "negative cost field for " + m.ID}
		}
		for flag := range m.Capabilities {
			if !knownCapabilities[flag] {
				return nil, &ManifestError{Reason: "unknown capability flag " + string(flag) + " for " + m.ID}
			}
		}

		snap.models[m.ID] = m
		snap.order = append(snap.order, m.ID)
	}

	return snap, nil
}

// SortedIDs returns every id in the current snapshot, lexicographically
// sorted; used by the CLI's validate-registry surface and tests.
func (r *Registry) SortedIDs() []string {
	snap := r.current.Load()
	ids := make([]string, 0, len(snap.models))
	for id := range snap.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
