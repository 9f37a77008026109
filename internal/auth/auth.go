// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth signs users in and out of a portal, persisting the resulting
// credential in the session store and enforcing the portal's role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/olegiv/causeconnect/internal/api"
	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/session"
	"github.com/olegiv/causeconnect/internal/validation"
)

// Fallback texts for failures without a server message.
const (
	MsgLoginFailed  = "Login failed"
	MsgSignupFailed = "Signup failed"
)

// Role refusal texts.
const (
	MsgHostsOnly  = "Only hosts can access the dashboard"
	MsgAdminsOnly = "Unauthorized: Admin access only"
)

// RoleError is returned when an account signs in to a portal its role does
// not grant. It matches session.ErrForbidden.
type RoleError struct {
	Want model.Role
	Got  model.Role
}

func (e *RoleError) Error() string {
	if e.Want == model.RoleAdmin {
		return MsgAdminsOnly
	}
	return MsgHostsOnly
}

// Is reports a match against session.ErrForbidden.
func (e *RoleError) Is(target error) bool {
	return target == session.ErrForbidden
}

// API is the part of the backend the service uses. *api.Client satisfies it.
type API interface {
	Login(ctx context.Context, creds model.Credentials) (api.Auth, error)
	Signup(ctx context.Context, in model.SignupInput) (api.Auth, error)
	Me(ctx context.Context) (model.User, error)
}

// Service is safe for concurrent use.
type Service struct {
	api    API
	sess   *session.Store
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(client API, sess *session.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: client, sess: sess, logger: logger}
}

type signInForm struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

type signUpForm struct {
	Name     string `validate:"notblank" label:"Name"`
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// SignIn authenticates against the backend and persists the session. An
// account whose role differs from want is signed out again and a
// *RoleError returned.
func (s *Service) SignIn(ctx context.Context, email, password string, want model.Role) (model.User, error) {
	email = strings.TrimSpace(email)
	if err := validation.Struct(signInForm{Email: email, Password: password}); err != nil {
		return model.User{}, err
	}

	res, err := s.api.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		s.logger.Info("sign-in failed", "error", err)
		return model.User{}, err
	}
	return s.accept(ctx, res, want)
}

// SignUp creates an account, defaulting the role to host, then applies the
// same role check as SignIn.
func (s *Service) SignUp(ctx context.Context, in model.SignupInput, want model.Role) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = model.RoleHost
	}
	if err := validation.Struct(signUpForm{Name: in.Name, Email: in.Email, Password: in.Password}); err != nil {
		return model.User{}, err
	}

	res, err := s.api.Signup(ctx, in)
	if err != nil {
		s.logger.Info("sign-up failed", "error", err)
		return model.User{}, err
	}
	return s.accept(ctx, res, want)
}

func (s *Service) accept(ctx context.Context, res api.Auth, want model.Role) (model.User, error) {
	if res.Token == "" {
		return model.User{}, errors.New("auth: backend returned no token")
	}
	if err := s.sess.Set(ctx, res.Token, res.User); err != nil {
		return model.User{}, err
	}
	if res.User.Role != want {
		s.logger.Info("portal refused for role", "user_id", res.User.ID, "role", res.User.Role, "want", want)
		refusal := &RoleError{Want: want, Got: res.User.Role}
		if err := s.sess.Clear(ctx); err != nil {
			return model.User{}, errors.Join(refusal, err)
		}
		return model.User{}, refusal
	}
	s.logger.Info("signed in", "user_id", res.User.ID, "role", res.User.Role)
	return res.User, nil
}

// Refresh reloads the profile of the current credential and stores it.
func (s *Service) Refresh(ctx context.Context) (model.User, error) {
	if !s.sess.Current().Authenticated() {
		return model.User{}, session.ErrNoSession
	}
	u, err := s.api.Me(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("refreshing profile: %w", err)
	}
	if err := s.sess.SetUser(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// SignOut clears the persisted session.
func (s *Service) SignOut(ctx context.Context) error {
	if u := s.sess.Current().User; u != nil {
		s.logger.Info("signed out", "user_id", u.ID)
	}
	return s.sess.Clear(ctx)
}
