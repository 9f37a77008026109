// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/causeconnect/internal/model"
)

// Auth is a successful sign-in or sign-up.
type Auth struct {
	Token string
	User  model.User
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (Auth, error) {
	var res model.AuthResult
	err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   creds,
	}, &res)
	if err != nil {
		return Auth{}, err
	}
	return Auth{Token: res.Token, User: res.User.Normalize()}, nil
}

// Signup creates an account and signs in.
func (c *Client) Signup(ctx context.Context, in model.SignupInput) (Auth, error) {
	var res model.AuthResult
	err := c.do(ctx, request{
		op:     "signup",
		method: http.MethodPost,
		path:   "/auth/signup",
		body:   in,
	}, &res)
	if err != nil {
		return Auth{}, err
	}
	return Auth{Token: res.Token, User: res.User.Normalize()}, nil
}

// meResponse accepts both a bare user and a {user} envelope.
type meResponse struct {
	Wrapped *model.RawUser `json:"user"`
	model.RawUser
}

// Me returns the profile of the signed-in user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var res meResponse
	err := c.do(ctx, request{
		op:     "current user",
		method: http.MethodGet,
		path:   "/auth/me",
		auth:   true,
	}, &res)
	if err != nil {
		return model.User{}, err
	}
	if res.Wrapped != nil {
		return res.Wrapped.Normalize(), nil
	}
	return res.RawUser.Normalize(), nil
}
