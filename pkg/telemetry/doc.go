// Package telemetry is the parent of orison's observability
// subpackages.
//
// # Components
//
//   - tracing: OpenTelemetry distributed tracing for route_request,
//     the Consensus Engine, and the Chain Orchestrator
//
// Structured logging uses log/slog directly throughout the rest of
// the tree (see cmd/orison's configureLogging), following the same
// WithLogger(*slog.Logger) option convention each component already
// exposes; it does not live under this package.
package telemetry
