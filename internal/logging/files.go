package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SessionLogPath names the log file of one run, e.g. vesselsim.20240601_120000.log.
func SessionLogPath(logsDir, name string, start time.Time) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s.%s.log", name, start.UTC().Format("20060102_150405")))
}

// OpenSessionLog creates logsDir if needed and opens the session log for
// appending. A file left over from a run started in the same second is kept
// as <path>.old.
func OpenSessionLog(logsDir, name string, start time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}

	path := SessionLogPath(logsDir, name, start)
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".old"); err != nil {
			return nil, fmt.Errorf("rotating %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}
