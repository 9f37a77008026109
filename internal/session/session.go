// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session holds the signed-in user's credential and profile for the
// lifetime of the process, persisted in durable client storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/store"
)

// Storage keys. Each piece of state is keyed distinctly.
const (
	KeyToken          = "authToken"
	KeyUser           = "authUser"
	KeyLastSearchTerm = "lastSearchTerm"
	KeyLastLocation   = "lastLocation"
)

var (
	// ErrNoSession is returned by Require when nobody is signed in.
	ErrNoSession = errors.New("not signed in")
	// ErrForbidden is returned when the signed-in user lacks the required role.
	ErrForbidden = errors.New("access restricted")
	// ErrExpired is returned by Require when the stored credential has expired.
	ErrExpired = errors.New("session expired")
)

// Context is an immutable snapshot of the current session. The zero value
// is the signed-out context.
type Context struct {
	Token string
	User  *model.User
}

// Authenticated reports whether the context carries a credential and a user.
func (c *Context) Authenticated() bool {
	return c != nil && c.Token != "" && c.User != nil
}

// HasRole reports whether the signed-in user has role r.
func (c *Context) HasRole(r model.Role) bool {
	return c.Authenticated() && c.User.Role == r
}

// Store owns the session context. It is constructed once at process start
// and passed by reference to every component that needs it. Sign-in and
// sign-out replace the context rather than mutating it.
type Store struct {
	kv     store.KV
	logger *slog.Logger
	now    func() time.Time

	mu  sync.RWMutex
	cur *Context
}

// NewStore creates a Store backed by kv, starting signed out.
func NewStore(kv store.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger,
		now:    time.Now,
		cur:    &Context{},
	}
}

// Load restores a persisted session. A stored profile that cannot be
// decoded clears both the credential and the profile.
func (s *Store) Load(ctx context.Context) error {
	token, err := s.kv.Get(ctx, KeyToken)
	if errors.Is(err, store.ErrNotFound) {
		s.replace(&Context{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading session token: %w", err)
	}

	raw, err := s.kv.Get(ctx, KeyUser)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("loading session user: %w", err)
	}

	var user model.User
	if raw == "" || json.Unmarshal([]byte(raw), &user) != nil {
		s.logger.Warn("discarding unreadable stored session")
		return s.Clear(ctx)
	}

	s.replace(&Context{Token: token, User: &user})
	s.logger.Debug("session restored", "user_id", user.ID, "role", user.Role)
	return nil
}

// Set persists a new credential and profile and makes them current.
func (s *Store) Set(ctx context.Context, token string, user model.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}
	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("saving session token: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUser, string(b)); err != nil {
		return fmt.Errorf("saving session user: %w", err)
	}
	s.replace(&Context{Token: token, User: &user})
	return nil
}

// SetUser replaces the stored profile, keeping the current credential.
func (s *Store) SetUser(ctx context.Context, user model.User) error {
	return s.Set(ctx, s.Token(), user)
}

// Current returns the current session snapshot. Never nil.
func (s *Store) Current() *Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Token returns the current bearer credential, or "".
func (s *Store) Token() string {
	return s.Current().Token
}

// Clear removes the persisted credential and profile and replaces the
// current context with the signed-out one.
func (s *Store) Clear(ctx context.Context) error {
	s.replace(&Context{})
	if err := s.kv.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Require is the entry check of a protected view. On a missing session,
// an expired credential or a role mismatch the session is cleared and an
// error returned.
func (s *Store) Require(ctx context.Context, role model.Role) (*Context, error) {
	cur := s.Current()

	var failure error
	switch {
	case !cur.Authenticated():
		failure = ErrNoSession
	case TokenExpired(cur.Token, s.now()):
		failure = ErrExpired
	case cur.User.Role != role:
		failure = fmt.Errorf("%w to %ss", ErrForbidden, role)
	}
	if failure == nil {
		return cur, nil
	}

	s.logger.Info("protected view entry refused", "required_role", role, "reason", failure.Error())
	if err := s.Clear(ctx); err != nil {
		return nil, errors.Join(failure, err)
	}
	return nil, failure
}

// RememberSearch persists the last search bar values. A blank term is
// ignored entirely; the location is only stored when non-blank.
func (s *Store) RememberSearch(ctx context.Context, term, location string) error {
	term = strings.TrimSpace(term)
	location = strings.TrimSpace(location)
	if term == "" {
		return nil
	}
	if err := s.kv.Set(ctx, KeyLastSearchTerm, term); err != nil {
		return fmt.Errorf("saving search term: %w", err)
	}
	if location != "" {
		if err := s.kv.Set(ctx, KeyLastLocation, location); err != nil {
			return fmt.Errorf("saving search location: %w", err)
		}
	}
	return nil
}

// LastSearch returns the remembered search term and location used to
// prefill the search bar. Missing values are returned as "".
func (s *Store) LastSearch(ctx context.Context) (term, location string) {
	term, _ = s.kv.Get(ctx, KeyLastSearchTerm)
	location, _ = s.kv.Get(ctx, KeyLastLocation)
	return term, location
}

func (s *Store) replace(c *Context) {
	s.mu.Lock()
	s.cur = c
	s.mu.Unlock()
}

// TokenExpired reports whether token is a JWT whose exp claim is in the
// past. The signature is not verified: the backend remains the authority,
// this only avoids sending a credential known to be stale. Opaque tokens
// are never considered expired.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
