// Package recorder collects what happens during a run so that callers can
// inspect or summarise it afterwards. Nothing is written to disk.
package recorder

import (
	"time"

	"github.com/vesselsim/vesselsim/pkg/core"
)

// Backend is the interface every recorder implementation must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management
	StartRun(run *core.Run) error
	EndRun() error

	// State recording
	RecordFrame(tick uint, at time.Time, vessels []core.Vessel) error

	// Event recording
	RecordGrounding(e *core.GroundingEvent) error
	RecordCollision(e *core.CollisionEvent) error
	RecordDecision(tick uint, e *core.DecisionEvent) error
}
