package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// EngineLogger adapts zerolog.Logger to the sim.Logger interface. Key-value
// pairs become typed JSON fields in call order.
type EngineLogger struct {
	logger zerolog.Logger
}

// NewEngineLogger creates a new EngineLogger wrapping a zerolog.Logger.
func NewEngineLogger(logger zerolog.Logger) *EngineLogger {
	return &EngineLogger{logger: logger}
}

// NewFleetLogger builds a JSON event logger for one fleet, tagged with its name.
func NewFleetLogger(w io.Writer, fleet, level string) *EngineLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Str("fleet", fleet).Logger()
	return NewEngineLogger(l)
}

func (l *EngineLogger) Debug(msg string, keysAndValues ...any) {
	appendPairs(l.logger.Debug(), keysAndValues).Msg(msg)
}

func (l *EngineLogger) Info(msg string, keysAndValues ...any) {
	appendPairs(l.logger.Info(), keysAndValues).Msg(msg)
}

func (l *EngineLogger) Error(msg string, keysAndValues ...any) {
	appendPairs(l.logger.Error(), keysAndValues).Msg(msg)
}

// appendPairs adds key-value pairs to e. Errors are written under their key
// as the error message. A value whose key is not a non-empty string is logged
// under "!BADKEY", and a trailing value without a key under "!EXTRA".
func appendPairs(e *zerolog.Event, kv []any) *zerolog.Event {
	if e == nil {
		return nil // level disabled
	}
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			e = field(e, "!EXTRA", kv[i])
			break
		}
		key, ok := kv[i].(string)
		if !ok || key == "" {
			key = "!BADKEY"
		}
		e = field(e, key, kv[i+1])
	}
	return e
}

func field(e *zerolog.Event, key string, v any) *zerolog.Event {
	switch v := v.(type) {
	case error:
		return e.AnErr(key, v)
	case string:
		return e.Str(key, v)
	case bool:
		return e.Bool(key, v)
	case int:
		return e.Int(key, v)
	case uint:
		return e.Uint(key, v)
	case float64:
		return e.Float64(key, v)
	case time.Duration:
		return e.Dur(key, v)
	case time.Time:
		return e.Time(key, v)
	case fmt.Stringer:
		return e.Stringer(key, v)
	default:
		return e.Interface(key, v)
	}
}
