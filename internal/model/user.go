// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// Role is a platform user role.
type Role string

// User roles
const (
	RoleHost      Role = "host"
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleAdmin, RoleVolunteer:
		return true
	}
	return false
}

// User is the profile of a signed-in user.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// RawUser is a user as the backend returns it.
type RawUser struct {
	AltID string `json:"_id,omitempty"`
	User
}

// Normalize folds the storage identifier into ID.
func (r RawUser) Normalize() User {
	u := r.User
	if r.AltID != "" {
		u.ID = r.AltID
	}
	return u
}

// Host is a row of the admin host listing.
type Host struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	EventCount int       `json:"eventCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RawHost is a host row as the backend returns it.
type RawHost struct {
	AltID string `json:"_id,omitempty"`
	Host
}

// UnmarshalJSON decodes createdAt leniently.
func (r *RawHost) UnmarshalJSON(b []byte) error {
	type plain RawHost
	var aux struct {
		plain
		CreatedAt wireTime `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RawHost(aux.plain)
	r.CreatedAt = time.Time(aux.CreatedAt)
	return nil
}

// Normalize folds the storage identifier into ID.
func (r RawHost) Normalize() Host {
	h := r.Host
	if r.AltID != "" {
		h.ID = r.AltID
	}
	return h
}

// AuthResult is the response of sign-in and sign-up.
type AuthResult struct {
	Token string  `json:"token"`
	User  RawUser `json:"user"`
}

// Credentials is the body of a sign-in request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupInput is the body of a sign-up request.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Stats holds the admin dashboard counters.
type Stats struct {
	Events        int `json:"totalEvents"`
	Published     int `json:"publishedEvents"`
	Hosts         int `json:"totalHosts"`
	Volunteers    int `json:"totalVolunteers"`
	Registrations int `json:"totalRegistrations"`
}
