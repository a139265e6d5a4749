// Package lifecycle starts and stops long-running faultline components
// (tracing, orchestrator, config watcher, API server) in dependency order.
package lifecycle

import "context"

// Component is a unit managed by Manager.
type Component interface {
	// Start brings the component up. A returned error aborts startup and
	// rolls back everything started before it.
	Start(ctx context.Context) error

	// Stop releases the component. ctx carries the per-component grace period.
	Stop(ctx context.Context) error

	// Name identifies the component in logs and errors. Must be non-empty.
	Name() string
}
