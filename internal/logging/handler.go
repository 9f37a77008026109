// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that keeps credentials out of log
// output. It wraps another handler and masks sensitive attribute values
// before forwarding records.
package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Redacted replaces the value of a sensitive attribute.
const Redacted = "[REDACTED]"

// defaultSensitiveKeys are matched case-insensitively.
var defaultSensitiveKeys = []string{"token", "authorization", "password"}

// RedactHandler is a slog.Handler that masks sensitive attributes and
// forwards everything else unchanged.
type RedactHandler struct {
	inner slog.Handler
	keys  map[string]struct{}
}

// NewRedactHandler wraps inner, masking the default sensitive keys plus any
// extra keys given.
func NewRedactHandler(inner slog.Handler, extraKeys ...string) *RedactHandler {
	keys := make(map[string]struct{}, len(defaultSensitiveKeys)+len(extraKeys))
	for _, k := range defaultSensitiveKeys {
		keys[k] = struct{}{}
	}
	for _, k := range extraKeys {
		keys[strings.ToLower(k)] = struct{}{}
	}
	return &RedactHandler{inner: inner, keys: keys}
}

// Enabled implements slog.Handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.redact(a))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

// WithAttrs implements slog.Handler.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		clean = append(clean, h.redact(a))
	}
	return &RedactHandler{inner: h.inner.WithAttrs(clean), keys: h.keys}
}

// WithGroup implements slog.Handler.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name), keys: h.keys}
}

func (h *RedactHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}

	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return slog.Attr{Key: a.Key, Value: v}
	}

	group := v.Group()
	clean := make([]any, 0, len(group))
	for _, ga := range group {
		clean = append(clean, h.redact(ga))
	}
	return slog.Group(a.Key, clean...)
}
