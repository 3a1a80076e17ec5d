// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's structured logger.
// Loggers created by WithContext are resolved against the root logger on every call,
// so package level loggers pick up the handler installed by Init.
package log

import (
	"context"
	"io"
	"log/slog"
	"sync"

	gethlog "github.com/ethereum/go-ethereum/log"
)

// Levels re-exported for callers.
const (
	LevelTrace = gethlog.LevelTrace
	LevelDebug = gethlog.LevelDebug
	LevelInfo  = gethlog.LevelInfo
	LevelWarn  = gethlog.LevelWarn
	LevelError = gethlog.LevelError
	LevelCrit  = gethlog.LevelCrit
)

// Logger writes key/value pairs to a handler.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	Enabled(ctx context.Context, level slog.Level) bool
}

// WithContext returns a logger carrying ctx that always writes through the current root logger.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

// Root returns the root logger.
func Root() Logger {
	return &lazyLogger{}
}

// Init installs the root handler.
// verbosity follows the legacy scale: 0 crit, 1 error, 2 warn, 3 info, 4 debug, 5 trace.
func Init(w io.Writer, verbosity int, json, color bool) {
	var h slog.Handler
	if json {
		h = gethlog.JSONHandler(w)
	} else {
		h = gethlog.NewTerminalHandler(w, color)
	}
	gh := gethlog.NewGlogHandler(h)
	level := FromVerbosity(verbosity)
	gh.Verbosity(level)
	gethlog.SetDefault(gethlog.NewLogger(gh))

	root.mu.Lock()
	root.glog, root.level = gh, level
	root.mu.Unlock()
}

var root struct {
	mu    sync.Mutex
	glog  *gethlog.GlogHandler
	level slog.Level
}

// Leveler reads and changes a log level at runtime. *slog.LevelVar is one.
type Leveler interface {
	Level() slog.Level
	Set(slog.Level)
}

type rootLevel struct{}

// RootLevel controls the level of the handler installed by Init.
var RootLevel Leveler = rootLevel{}

func (rootLevel) Level() slog.Level {
	root.mu.Lock()
	defer root.mu.Unlock()
	return root.level
}

func (rootLevel) Set(level slog.Level) {
	root.mu.Lock()
	defer root.mu.Unlock()
	root.level = level
	if root.glog != nil {
		root.glog.Verbosity(level)
	}
}

// Discard silences the root logger.
func Discard() {
	gethlog.SetDefault(gethlog.NewLogger(gethlog.DiscardHandler()))
}

// FromVerbosity converts the legacy verbosity value into a slog level.
func FromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return LevelCrit
	case v >= 5:
		return LevelTrace
	}
	return gethlog.FromLegacyLevel(v)
}

// convenient functions on the root logger

func Trace(msg string, ctx ...any) { gethlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { gethlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any) { gethlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any) { gethlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { gethlog.Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any) { gethlog.Root().Crit(msg, ctx...) }

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) resolve() gethlog.Logger {
	if len(l.ctx) == 0 {
		return gethlog.Root()
	}
	return gethlog.Root().With(l.ctx...)
}

func (l *lazyLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(append(merged, l.ctx...), ctx...)
	return &lazyLogger{ctx: merged}
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.resolve().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.resolve().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any) { l.resolve().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any) { l.resolve().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.resolve().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any) { l.resolve().Crit(msg, ctx...) }

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return gethlog.Root().Enabled(ctx, level)
}
