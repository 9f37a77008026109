// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// Registration is a visitor's sign-up record against one event.
type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Attendees int       `json:"attendees"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// RawRegistration is a registration as the backend returns it.
type RawRegistration struct {
	AltID string `json:"_id,omitempty"`
	Registration
}

// UnmarshalJSON decodes createdAt leniently.
func (r *RawRegistration) UnmarshalJSON(b []byte) error {
	type plain RawRegistration
	var aux struct {
		plain
		CreatedAt wireTime `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RawRegistration(aux.plain)
	r.CreatedAt = time.Time(aux.CreatedAt)
	return nil
}

// Normalize folds the storage identifier into ID.
func (r RawRegistration) Normalize() Registration {
	reg := r.Registration
	if r.AltID != "" {
		reg.ID = r.AltID
	}
	return reg
}

// NormalizeRegistrations normalizes a slice of raw registrations, preserving order.
func NormalizeRegistrations(raw []RawRegistration) []Registration {
	regs := make([]Registration, 0, len(raw))
	for _, r := range raw {
		regs = append(regs, r.Normalize())
	}
	return regs
}

// RegistrationInput is the body of a register-for-event request.
type RegistrationInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Attendees int    `json:"attendees"`
	Notes     string `json:"notes"`
}
