package registry

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// manifestDoc mirrors the declarative YAML shape of spec §6.1: a version
// string plus an ordered model list. Unknown top-level fields inside a
// model entry are ignored with a warning, not rejected.
type manifestDoc struct {
	Version string          `yaml:"version"`
	Models  []manifestModel `yaml:"models"`
}

type manifestModel struct {
	ID              string             `yaml:"id"`
	Provider        string             `yaml:"provider"`
	APIName         string             `yaml:"api_name"`
	ContextWindow   int                `yaml:"context_window"`
	InputCostPer1K  float64            `yaml:"input_cost_per_1k"`
	OutputCostPer1K float64            `yaml:"output_cost_per_1k"`
	Scores          manifestScores     `yaml:"scores"`
	Capabilities    []string           `yaml:"capabilities"`
	Maturity        string             `yaml:"maturity"`
	Available       *bool              `yaml:"available"`
}

type manifestScores struct {
	Reasoning float64 `yaml:"reasoning"`
	Coding    float64 `yaml:"coding"`
	Speed     float64 `yaml:"speed"`
	Accuracy  float64 `yaml:"accuracy"`
}

// LoadManifest reads and validates a registry manifest file, returning
// the decoded models in declaration order. It does not mutate any
// Registry; callers pass the result to Reload or NewFromModels.
func LoadManifest(path string) ([]ModelCapability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: failed to read manifest %q: %w", path, err)
	}
	return ParseManifest(path, data)
}

// ParseManifest decodes and validates manifest bytes. path is used only
// for error messages (pass "" when there is no file).
func ParseManifest(path string, data []byte) ([]ModelCapability, error) {
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ManifestError{Path: path, Reason: "invalid yaml: " + err.Error()}
	}

	var raw struct {
		Models []map[string]interface{} `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &raw); err == nil {
		for _, entry := range raw.Models {
			logUnknownFields(path, entry)
		}
	}

	if doc.Version == "" {
		return nil, &ManifestError{Path: path, Reason: "missing required \"version\" key"}
	}
	if doc.Models == nil {
		return nil, &ManifestError{Path: path, Reason: "missing required \"models\" key"}
	}

	models := make([]ModelCapability, 0, len(doc.Models))
	for _, dm := range doc.Models {
		m, err := convertModel(dm)
		if err != nil {
			return nil, &ManifestError{Path: path, Reason: err.Error()}
		}
		models = append(models, m)
	}

	// buildSnapshot re-validates cross-entry invariants (duplicate ids,
	// unknown flags) so LoadManifest and NewFromModels share one source
	// of truth for manifest acceptance.
	if _, err := buildSnapshot(models); err != nil {
		return nil, err
	}

	return models, nil
}

func convertModel(dm manifestModel) (ModelCapability, error) {
	available := true
	if dm.Available != nil {
		available = *dm.Available
	}

	caps := make(map[Capability]bool, len(dm.Capabilities))
	for _, c := range dm.Capabilities {
		cap := Capability(c)
		if !knownCapabilities[cap] {
			return ModelCapability{}, fmt.Errorf("model %q: unknown capability flag %q", dm.ID, c)
		}
		caps[cap] = true
	}

	provider := Provider(dm.Provider)
	if !knownProviders[provider] {
		return ModelCapability{}, fmt.Errorf("model %q: unrecognized provider %q", dm.ID, dm.Provider)
	}

	if dm.InputCostPer1K < 0 || dm.OutputCostPer1K < 0 || dm.ContextWindow < 0 {
		return ModelCapability{}, fmt.Errorf("model %q: negative numeric field", dm.ID)
	}

	maturity := Maturity(dm.Maturity)
	if maturity == "" {
		maturity = MaturityStable
	}

	return ModelCapability{
		ID:              dm.ID,
		Provider:        provider,
		APIName:         dm.APIName,
		ContextWindow:   dm.ContextWindow,
		InputCostPer1K:  dm.InputCostPer1K,
		OutputCostPer1K: dm.OutputCostPer1K,
		Scores: Scores{
			Reasoning: dm.Scores.Reasoning,
			Coding:    dm.Scores.Coding,
			Speed:     dm.Scores.Speed,
			Accuracy:  dm.Scores.Accuracy,
		},
		Capabilities: caps,
		Maturity:     maturity,
		Available:    available,
	}, nil
}

// Serialize encodes the current snapshot back into manifest form (used by
// the round-trip property in spec §8 and by the CLI's validate-registry
// command to re-emit a normalized manifest).
func (r *Registry) Serialize(version string) ([]byte, error) {
	snap := r.current.Load()
	doc := manifestDoc{Version: version}
	for _, id := range snap.order {
		m := snap.models[id]
		caps := make([]string, 0, len(m.Capabilities))
		for c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		available := m.Available
		doc.Models = append(doc.Models, manifestModel{
			ID:              m.ID,
			Provider:        string(m.Provider),
			APIName:         m.APIName,
			ContextWindow:   m.ContextWindow,
			InputCostPer1K:  m.InputCostPer1K,
			OutputCostPer1K: m.OutputCostPer1K,
			Scores: manifestScores{
				Reasoning: m.Scores.Reasoning,
				Coding:    m.Scores.Coding,
				Speed:     m.Scores.Speed,
				Accuracy:  m.Scores.Accuracy,
			},
			Capabilities: caps,
			Maturity:     string(m.Maturity),
			Available:    &available,
		})
	}
	return yaml.Marshal(doc)
}

// logUnknownFields warns about manifest keys the loader doesn't
// recognize. yaml.v3 silently drops these during Unmarshal; this is a
// best-effort pass over the raw node tree for operator visibility.
func logUnknownFields(path string, raw map[string]interface{}) {
	known := map[string]bool{
		"id": true, "provider": true, "api_name": true, "context_window": true,
		"input_cost_per_1k": true, "output_cost_per_1k": true, "scores": true,
		"capabilities": true, "maturity": true, "available": true,
	}
	for k := range raw {
		if !known[k] {
			slog.Warn("registry: ignoring unknown manifest field", "manifest", path, "field", k)
		}
	}
}
