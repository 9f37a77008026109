// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// Event statuses
const (
	EventStatusPublished = "published"
	EventStatusDraft     = "draft"
)

// Event is a scheduled community-service activity open for registration.
type Event struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Date               time.Time `json:"date"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	Tag                string    `json:"tag"`
	Location           string    `json:"location"`
	Description        string    `json:"description"`
	Image              string    `json:"image,omitempty"`
	Status             string    `json:"status,omitempty"`
	HostID             string    `json:"hostId,omitempty"`
	RegistrationsCount int       `json:"registrationsCount"`
}

// HasTimeRange reports whether both start and end times are set.
func (e Event) HasTimeRange() bool {
	return !e.StartTime.IsZero() && !e.EndTime.IsZero()
}

// RawEvent is an event as the backend returns it. Depending on the storage
// engine the identifier arrives as "id", "_id", or both.
type RawEvent struct {
	AltID string `json:"_id,omitempty"`
	Event
}

// UnmarshalJSON decodes the time fields leniently, so one odd value never
// fails a whole page. A calendar-day "date" decodes to UTC midnight and a
// blank or unreadable time to the zero time.
func (r *RawEvent) UnmarshalJSON(b []byte) error {
	type plain RawEvent
	var aux struct {
		plain
		Date      wireTime `json:"date"`
		StartTime wireTime `json:"startTime"`
		EndTime   wireTime `json:"endTime"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RawEvent(aux.plain)
	r.Date = time.Time(aux.Date)
	r.StartTime = time.Time(aux.StartTime)
	r.EndTime = time.Time(aux.EndTime)
	return nil
}

// Normalize folds the storage identifier into ID and passes every other
// field through unchanged.
func (r RawEvent) Normalize() Event {
	e := r.Event
	if r.AltID != "" {
		e.ID = r.AltID
	}
	if e.RegistrationsCount < 0 {
		e.RegistrationsCount = 0
	}
	return e
}

// NormalizeEvents normalizes a slice of raw events, preserving order.
func NormalizeEvents(raw []RawEvent) []Event {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		events = append(events, r.Normalize())
	}
	return events
}

// EventInput is the body of a create-event request.
type EventInput struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Tag         string    `json:"tag"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Status      string    `json:"status"`
}

// EventPatch is the body of an update-event request. Nil fields are left
// untouched by the backend.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Tag         *string    `json:"tag,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"description,omitempty"`
	Image       *string    `json:"image,omitempty"`
	Status      *string    `json:"status,omitempty"`
}
