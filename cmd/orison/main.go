// Orison is a model orchestration core for LLM inference: it classifies
// a request's task type, scores and selects a model against live
// capability and cost data, executes the call with bounded retries,
// and falls back across providers on transient failure.
//
// Usage:
//
//	# Run a single request against the orchestrator
//	orison route --prompt "explain mutexes in go" --config config.yaml
//
//	# Validate a registry manifest
//	orison validate-registry --manifest registry/models.yaml
//
//	# Show version information
//	orison version
//
// For complete documentation, see: https://github.com/mercator-hq/orison
package main

func main() {
	Execute()
}
