// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify carries transient user notifications (the snackbar of a
// graphical front end) from workflows to whatever renders them.
package notify

import (
	"log/slog"
	"sync"
)

// Severity of a notification.
type Severity string

// Severities
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a single transient message.
type Notification struct {
	Severity Severity
	Message  string
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to a Notifier.
type Func func(Notification)

// Notify implements Notifier.
func (f Func) Notify(n Notification) { f(n) }

// Info sends an informational notification.
func Info(n Notifier, msg string) { n.Notify(Notification{Severity: SeverityInfo, Message: msg}) }

// Success sends a success notification.
func Success(n Notifier, msg string) { n.Notify(Notification{Severity: SeveritySuccess, Message: msg}) }

// Error sends an error notification.
func Error(n Notifier, msg string) { n.Notify(Notification{Severity: SeverityError, Message: msg}) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Logger writes notifications to a slog.Logger; errors are logged at
// warn level, everything else at info.
type Logger struct {
	Log *slog.Logger
}

// Notify implements Notifier.
func (l Logger) Notify(n Notification) {
	logger := l.Log
	if logger == nil {
		logger = slog.Default()
	}
	if n.Severity == SeverityError {
		logger.Warn(n.Message, "severity", n.Severity)
		return
	}
	logger.Info(n.Message, "severity", n.Severity)
}

// Recorder keeps every notification it receives. It is safe for
// concurrent use.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.all = append(r.all, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Last returns the most recent notification and whether there was one.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.all) == 0 {
		return Notification{}, false
	}
	return r.all[len(r.all)-1], true
}
