// Package logging builds the debug logger. A TUI owns the terminal, so log
// output always goes to a file, never to stdout or stderr.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// New returns a file-backed zap logger when CUSTOMSDESK_DEBUG is set, and a
// no-op logger otherwise. CUSTOMSDESK_DEBUG may name a log file directly; any
// other non-empty value logs to customsdesk.log in the temp dir.
func New() (*zap.Logger, error) {
	v := strings.TrimSpace(os.Getenv("CUSTOMSDESK_DEBUG"))
	if v == "" {
		return zap.NewNop(), nil
	}

	path := v
	if v == "1" || strings.EqualFold(v, "true") {
		path = filepath.Join(os.TempDir(), "customsdesk.log")
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop(), err
	}
	return logger, nil
}
