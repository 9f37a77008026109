// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cancel provides the liveness token passed into asynchronous
// operations. Cancellation is advisory: the operation still runs to
// completion, but code handling its result checks the token first and
// drops the result once the token is cancelled.
package cancel

import "sync/atomic"

// Token is a one-way liveness flag. The zero value is live.
type Token struct {
	cancelled atomic.Bool
}

// New returns a live token.
func New() *Token {
	return &Token{}
}

// Cancel marks the token cancelled. Safe to call more than once.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called. A nil token is never
// cancelled.
func (t *Token) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// Live is the inverse of Cancelled.
func (t *Token) Live() bool {
	return !t.Cancelled()
}
