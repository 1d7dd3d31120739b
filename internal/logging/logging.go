// Package logging owns the process-wide zerolog logger.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// EnvLevel overrides the configured level unless a flag is given.
const EnvLevel = "PCLI2_MCP_LOG"

var (
	setupOnce sync.Once
	mu        sync.RWMutex
	logger    = zerolog.New(io.Discard)
)

// Setup initializes the global logger exactly once. Later calls are no-ops,
// so it is safe to call from every entry point.
func Setup(level string, w io.Writer) {
	setupOnce.Do(func() {
		lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(lvl)

		l := newLogger(w)
		mu.Lock()
		logger = l
		mu.Unlock()
	})
}

// newLogger builds a timestamped logger on w. Writers other than files are
// shared by request goroutines, so they are serialized.
func newLogger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	var out io.Writer
	if f, ok := w.(*os.File); ok {
		out = f
		if term.IsTerminal(int(f.Fd())) {
			out = zerolog.ConsoleWriter{Out: f, TimeFormat: time.TimeOnly}
		}
	} else {
		out = zerolog.SyncWriter(w)
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// ResolveLevel picks the effective level: flag, then EnvLevel, then the
// configured value.
func ResolveLevel(flagLevel, configured string) string {
	if v := strings.TrimSpace(flagLevel); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		return v
	}
	return configured
}

// Ctx returns the logger attached to ctx, falling back to the global one.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return L()
}

// L returns the global logger. Before Setup it discards everything.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}
