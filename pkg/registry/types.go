// Package registry holds the in-memory catalog of model capabilities the
// Selector scores against. It is loaded from a declarative manifest and
// supports atomic hot-reload: readers never observe a torn state.
package registry

// Provider is an enumerated backend tag. Unlike pkg/providers.Provider
// (a running adapter instance), this is a plain classification label
// attached to a catalog entry.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderXAI       Provider = "xai"
	ProviderAzure     Provider = "azure"
	ProviderBedrock   Provider = "bedrock"
	ProviderLocal     Provider = "local"
	ProviderDial      Provider = "dial"
)

// knownProviders backs manifest validation (spec §6.1(c)).
var knownProviders = map[Provider]bool{
	ProviderOpenAI:    true,
	ProviderAnthropic: true,
	ProviderGoogle:    true,
	ProviderXAI:       true,
	ProviderAzure:     true,
	ProviderBedrock:   true,
	ProviderLocal:     true,
	ProviderDial:      true,
}

// Maturity classifies how production-ready a catalog entry is.
type Maturity string

const (
	MaturityStable Maturity = "stable"
	MaturityBeta   Maturity = "beta"
	MaturityAlpha  Maturity = "alpha"
)

// maturityRank orders maturity for the Scorer's tie-break ladder:
// stable before beta before alpha.
var maturityRank = map[Maturity]int{
	MaturityStable: 0,
	MaturityBeta:   1,
	MaturityAlpha:  2,
}

// Rank returns this maturity's tie-break precedence (lower sorts first).
// Unknown maturities sort last.
func (m Maturity) Rank() int {
	if r, ok := maturityRank[m]; ok {
		return r
	}
	return len(maturityRank)
}

// Capability is one of the flags a model may advertise.
type Capability string

const (
	CapVision          Capability = "vision"
	CapTools           Capability = "tools"
	CapJSONMode        Capability = "json_mode"
	CapStreaming       Capability = "streaming"
	CapLongContext     Capability = "long_context"
	CapFunctionCalling Capability = "function_calling"
)

var knownCapabilities = map[Capability]bool{
	CapVision:          true,
	CapTools:           true,
	CapJSONMode:        true,
	CapStreaming:       true,
	CapLongContext:     true,
	CapFunctionCalling: true,
}

// Scores are the model's quality dimensions, each in [0, 100].
type Scores struct {
	Reasoning float64
	Coding    float64
	Speed     float64
	Accuracy  float64
}

// ModelCapability is one immutable catalog entry. Entries are never
// mutated in place; a reload replaces the whole snapshot.
type ModelCapability struct {
	ID               string
	Provider         Provider
	APIName          string
	ContextWindow    int
	InputCostPer1K   float64
	OutputCostPer1K  float64
	Scores           Scores
	Capabilities     map[Capability]bool
	Maturity         Maturity
	Available        bool
}

// HasCapability reports whether the model advertises the given flag.
func (m ModelCapability) HasCapability(c Capability) bool {
	return m.Capabilities[c]
}

// EffectiveCost is the Scorer's cost figure: output tokens weigh 3x
// input tokens, spec §4.4.
func (m ModelCapability) EffectiveCost() float64 {
	return (m.InputCostPer1K + 3*m.OutputCostPer1K) / 4
}

// Cost prices a completed call using this entry's per-1k rates.
func (m ModelCapability) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)/1000)*m.InputCostPer1K + (float64(outputTokens)/1000)*m.OutputCostPer1K
}

// Filter restricts List to a subset of the catalog. Zero value matches
// everything.
type Filter struct {
	Provider     Provider
	Capability   Capability
	Maturity     Maturity
	OnlyAvailable bool
}

func (f Filter) matches(m ModelCapability) bool {
	if f.Provider != "" && m.Provider != f.Provider {
		return false
	}
	if f.Capability != "" && !m.HasCapability(f.Capability) {
		return false
	}
	if f.Maturity != "" && m.Maturity != f.Maturity {
		return false
	}
	if f.OnlyAvailable && !m.Available {
		return false
	}
	return true
}
