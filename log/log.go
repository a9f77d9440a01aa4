// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides structured logging with package context.
package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger is the logging surface handed out to packages.
type Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner.Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner.Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

// swappableHandler delegates to the currently installed handler, so loggers
// created at package init follow later SetHandler calls.
type swappableHandler struct {
	inner atomic.Pointer[slog.Handler]
}

func (s *swappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*s.inner.Load()).Enabled(ctx, level)
}

func (s *swappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return (*s.inner.Load()).Handle(ctx, r)
}

func (s *swappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &attrsHandler{parent: s, attrs: attrs}
}

func (s *swappableHandler) WithGroup(name string) slog.Handler {
	return &groupHandler{parent: s, name: name}
}

type attrsHandler struct {
	parent slog.Handler
	attrs  []slog.Attr
}

func (h *attrsHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.parent.Enabled(ctx, level)
}

func (h *attrsHandler) Handle(ctx context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)
	return h.parent.Handle(ctx, r)
}

func (h *attrsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &attrsHandler{parent: h, attrs: attrs}
}

func (h *attrsHandler) WithGroup(name string) slog.Handler {
	return &groupHandler{parent: h, name: name}
}

// groupHandler flattens groups. Our loggers only attach flat key/value
// context, so the group name is kept for interface completeness only.
type groupHandler struct {
	parent slog.Handler
	name   string
}

func (h *groupHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.parent.Enabled(ctx, level)
}

func (h *groupHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.parent.Handle(ctx, r)
}

func (h *groupHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &attrsHandler{parent: h, attrs: attrs}
}

func (h *groupHandler) WithGroup(name string) slog.Handler {
	return &groupHandler{parent: h, name: name}
}

var (
	handler swappableHandler
	root    *logger
)

func init() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	var h slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	handler.inner.Store(&h)
	root = &logger{slog.New(&handler)}
}

// SetHandler replaces the root handler, e.g. with a terminal or JSON handler.
// Loggers already created keep working and pick up the new handler.
func SetHandler(h slog.Handler) {
	handler.inner.Store(&h)
}

// WithContext returns a logger carrying the given context pairs.
func WithContext(ctx ...any) Logger {
	return root.With(ctx...)
}

// Root returns the root logger.
func Root() Logger {
	return root
}

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }

// Info logs at info level on the root logger.
func Info(msg string, ctx ...any) { root.Info(msg, ctx...) }

// Warn logs at warn level on the root logger.
func Warn(msg string, ctx ...any) { root.Warn(msg, ctx...) }

// Error logs at error level on the root logger.
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }
