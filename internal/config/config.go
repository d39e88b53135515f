package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/vesselsim/vesselsim/internal/sim"
)

// FileName is the config file looked up in the config directory.
const FileName = "vesselsim.cfg.json"

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
// Environment variables prefixed with VESSELSIM_ override file values
// (e.g. VESSELSIM_SIM_MAXTRAILLENGTH).
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix("VESSELSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./simlogs")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "vesselsim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "30s")

	viper.SetDefault("run.ticks", 60)
	viper.SetDefault("run.scenario", "scenario.json")
	viper.SetDefault("run.fleets", 1)
	viper.SetDefault("run.seed", 1)
	viper.SetDefault("run.vessels", 12)

	d := sim.DefaultConfig()
	viper.SetDefault("sim.maxTrailLength", d.MaxTrailLength)
	viper.SetDefault("sim.maxTurnRatePerMin", d.MaxTurnRatePerMin)
	viper.SetDefault("sim.turnAccelPerMin", d.TurnAccelPerMin)
	viper.SetDefault("sim.maxAccelPerMinute", d.MaxAccelPerMinute)
	viper.SetDefault("sim.coneRadiusNM", d.ConeRadiusNM)
	viper.SetDefault("sim.coneHalfAngleDeg", d.ConeHalfAngleDeg)
	viper.SetDefault("sim.landLookaheadNM", d.LandLookaheadNM)
	viper.SetDefault("sim.riskDistanceNM", d.RiskDistanceNM)
	viper.SetDefault("sim.cpaThresholdNM", d.CPAThresholdNM)
	viper.SetDefault("sim.speedReductionFactor", d.SpeedReductionFactor)
	viper.SetDefault("sim.spawnPoint.lat", d.SpawnPoint.Lat)
	viper.SetDefault("sim.spawnPoint.lon", d.SpawnPoint.Lon)
	viper.SetDefault("sim.maxDistanceFromSpawnNM", d.MaxDistanceFromSpawnNM)
	viper.SetDefault("sim.tickMinutes", d.TickMinutes)
}

// Sim returns the validated kernel configuration.
func Sim() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if err := viper.UnmarshalKey("sim", &cfg); err != nil {
		return sim.Config{}, fmt.Errorf("decoding sim config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
