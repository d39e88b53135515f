package sim

import (
	"errors"
	"fmt"

	"github.com/vesselsim/vesselsim/internal/avoidance"
	"github.com/vesselsim/vesselsim/internal/geo"
	"github.com/vesselsim/vesselsim/internal/motion"
	"github.com/vesselsim/vesselsim/pkg/core"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds the kernel parameters. It is passed by value into every tick.
type Config struct {
	MaxTrailLength    int     `json:"maxTrailLength" mapstructure:"maxTrailLength"`
	MaxTurnRatePerMin float64 `json:"maxTurnRatePerMin" mapstructure:"maxTurnRatePerMin"`
	TurnAccelPerMin   float64 `json:"turnAccelPerMin" mapstructure:"turnAccelPerMin"`
	MaxAccelPerMinute float64 `json:"maxAccelPerMinute" mapstructure:"maxAccelPerMinute"`

	ConeRadiusNM     float64 `json:"coneRadiusNM" mapstructure:"coneRadiusNM"`
	ConeHalfAngleDeg float64 `json:"coneHalfAngleDeg" mapstructure:"coneHalfAngleDeg"`
	LandLookaheadNM  float64 `json:"landLookaheadNM" mapstructure:"landLookaheadNM"`
	RiskDistanceNM   float64 `json:"riskDistanceNM" mapstructure:"riskDistanceNM"`
	CPAThresholdNM   float64 `json:"cpaThresholdNM" mapstructure:"cpaThresholdNM"`

	SpeedReductionFactor float64 `json:"speedReductionFactor" mapstructure:"speedReductionFactor"`

	SpawnPoint             core.Position `json:"spawnPoint" mapstructure:"spawnPoint"`
	MaxDistanceFromSpawnNM float64       `json:"maxDistanceFromSpawnNM" mapstructure:"maxDistanceFromSpawnNM"`

	TickMinutes float64 `json:"tickMinutes" mapstructure:"tickMinutes"`
}

// DefaultConfig returns the stock kernel parameters.
func DefaultConfig() Config {
	return Config{
		MaxTrailLength:       100,
		MaxTurnRatePerMin:    3,
		TurnAccelPerMin:      1,
		MaxAccelPerMinute:    1,
		ConeRadiusNM:         2,
		ConeHalfAngleDeg:     15,
		LandLookaheadNM:      4,
		RiskDistanceNM:       4,
		CPAThresholdNM:       0.5,
		SpeedReductionFactor: 0.67,
		TickMinutes:          1,
	}
}

// Validate rejects configurations the kernel cannot run with.
func (c Config) Validate() error {
	switch {
	case c.MaxTrailLength < 0:
		return fmt.Errorf("%w: maxTrailLength must be >= 0", ErrInvalidConfig)
	case c.MaxTurnRatePerMin <= 0:
		return fmt.Errorf("%w: maxTurnRatePerMin must be > 0", ErrInvalidConfig)
	case c.TurnAccelPerMin <= 0:
		return fmt.Errorf("%w: turnAccelPerMin must be > 0", ErrInvalidConfig)
	case c.MaxAccelPerMinute <= 0:
		return fmt.Errorf("%w: maxAccelPerMinute must be > 0", ErrInvalidConfig)
	case c.ConeRadiusNM <= 0 || c.LandLookaheadNM <= 0:
		return fmt.Errorf("%w: cone radii must be > 0", ErrInvalidConfig)
	case c.ConeHalfAngleDeg < 0 || c.ConeHalfAngleDeg > 180:
		return fmt.Errorf("%w: coneHalfAngleDeg must be in [0,180]", ErrInvalidConfig)
	case c.RiskDistanceNM <= 0 || c.CPAThresholdNM < 0:
		return fmt.Errorf("%w: risk distances must be positive", ErrInvalidConfig)
	case c.SpeedReductionFactor <= 0 || c.SpeedReductionFactor > 1:
		return fmt.Errorf("%w: speedReductionFactor must be in (0,1]", ErrInvalidConfig)
	case c.MaxDistanceFromSpawnNM < 0:
		return fmt.Errorf("%w: maxDistanceFromSpawnNM must be >= 0", ErrInvalidConfig)
	case c.TickMinutes <= 0:
		return fmt.Errorf("%w: tickMinutes must be > 0", ErrInvalidConfig)
	}
	if err := geo.ValidatePosition(c.SpawnPoint); err != nil {
		return fmt.Errorf("%w: spawnPoint: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) motionParams() motion.Params {
	return motion.Params{
		MaxTurnRate:    c.MaxTurnRatePerMin,
		TurnAccel:      c.TurnAccelPerMin,
		MaxAccel:       c.MaxAccelPerMinute,
		MaxTrailLength: c.MaxTrailLength,
	}
}

func (c Config) avoidanceParams() avoidance.Params {
	return avoidance.Params{
		ShipCone: geo.Cone{RadiusNM: c.ConeRadiusNM, HalfAngleDeg: c.ConeHalfAngleDeg},
		LandCone: geo.Cone{RadiusNM: c.LandLookaheadNM, HalfAngleDeg: c.ConeHalfAngleDeg},
		Risk: geo.RiskParams{
			DistanceNM:     c.RiskDistanceNM,
			CPAThresholdNM: c.CPAThresholdNM,
		},
		SpeedReductionFactor:   c.SpeedReductionFactor,
		SpawnPoint:             c.SpawnPoint,
		MaxDistanceFromSpawnNM: c.MaxDistanceFromSpawnNM,
	}
}
