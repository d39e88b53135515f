package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/vesselsim/vesselsim/internal/config"
	"github.com/vesselsim/vesselsim/internal/logging"
	"github.com/vesselsim/vesselsim/internal/recorder"
	"github.com/vesselsim/vesselsim/internal/runner"
	"github.com/vesselsim/vesselsim/internal/scenario"
	"github.com/vesselsim/vesselsim/internal/sim"
)

// generateRadiusNM is how far from the spawn point generated vessels start.
const generateRadiusNM = 10

// buildFleets creates run.fleets fleets. If the scenario file exists every
// fleet sails it; otherwise each fleet gets a generated roster seeded with
// run.seed plus its index.
func buildFleets(cfg sim.Config, newLogger func(name string) *logging.EngineLogger) ([]runner.Fleet, error) {
	n := config.GetInt("run.fleets")
	if n < 1 {
		return nil, fmt.Errorf("run.fleets must be >= 1, got %d", n)
	}

	sc, err := scenario.Load(config.GetString("run.scenario"))
	generated := errors.Is(err, fs.ErrNotExist)
	if err != nil && !generated {
		return nil, err
	}

	fleets := make([]runner.Fleet, 0, n)
	for i := 0; i < n; i++ {
		f := runner.Fleet{Recorder: recorder.NewMemory()}
		if generated {
			seed := int64(config.GetInt("run.seed") + i)
			f.Name = fmt.Sprintf("generated-%d", seed)
			f.Vessels = scenario.Generate(cfg.SpawnPoint, generateRadiusNM, config.GetInt("run.vessels"), seed)
		} else {
			f.Name = fmt.Sprintf("%s-%d", sc.Name, i+1)
			f.Vessels = sc.Vessels
			f.Land = sc.Land
		}
		if newLogger != nil {
			if l := newLogger(f.Name); l != nil {
				f.Logger = l
			}
		}
		fleets = append(fleets, f)
	}

	if generated && Logger != nil {
		Logger.Warn("Scenario file not found, generated fleets", "path", config.GetString("run.scenario"))
	}
	return fleets, nil
}
