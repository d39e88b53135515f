// pkg/core/run.go
package core

import "time"

// Run describes one simulation run over a single fleet.
type Run struct {
	ID          string
	Name        string
	StartTime   time.Time
	TickMinutes float64
	SpawnPoint  Position
	Roster      []Vessel // vessels before the first tick
}
