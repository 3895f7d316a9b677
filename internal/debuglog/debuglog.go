// ABOUTME: File-backed zerolog logger shared by the CLI and the TUI
// ABOUTME: Writes to debug.log so log lines never interfere with the terminal display

package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileName is the log file created inside the config directory
const FileName = "debug.log"

var (
	mu      sync.Mutex
	logFile *os.File
	logger  = zerolog.Nop()
)

// Init opens debug.log in configDir and installs a logger at level.
// If configDir is empty, logging is disabled.
func Init(configDir, level string) (zerolog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	if configDir == "" {
		return logger, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return logger, err
	}

	f, err := os.OpenFile(filepath.Join(configDir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return logger, err
	}

	logFile = f
	logger = New(f, level)
	return logger, nil
}

// New builds a logger writing JSON lines to w
func New(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Get returns the installed logger, or a no-op logger before Init
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Close closes the log file and disables logging
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = zerolog.Nop()
}

// Error logs err with the operation it came from
func Error(context string, err error) {
	if err == nil {
		return
	}
	l := Get()
	l.Error().Err(err).Str("context", context).Send()
}

// Warn logs a formatted warning
func Warn(format string, args ...any) {
	l := Get()
	l.Warn().Msg(fmt.Sprintf(format, args...))
}

// levelAliases are accepted on top of zerolog's own level names
var levelAliases = map[string]string{
	"warning": "warn",
	"off":     "disabled",
}

// ParseLevel converts a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if alias, ok := levelAliases[name]; ok {
		name = alias
	}
	l, err := zerolog.ParseLevel(name)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
