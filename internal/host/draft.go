// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package host implements the host dashboard: the event composer that
// merges separate date and time inputs into an absolute time range, and
// the host's own event list with create, update and delete.
package host

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/validation"
)

// ErrInvalidDraft wraps every reason a draft cannot be submitted.
var ErrInvalidDraft = errors.New("invalid event draft")

// MsgEndBeforeStart is reported when the range is empty or inverted.
const MsgEndBeforeStart = "End time must be after start time"

// DateLayout is the calendar-day input format.
const DateLayout = time.DateOnly

// clockLayouts are the accepted time-of-day input formats.
var clockLayouts = []string{"15:04", "15:04:05", "3:04PM", "3:04 PM", "3:04pm", "3:04 pm"}

// Draft holds the raw composer inputs.
type Draft struct {
	Title       string `validate:"notblank" label:"Title"`
	Date        string `validate:"notblank" label:"Date"`
	StartTime   string `validate:"notblank" label:"Start Time"`
	EndTime     string `validate:"notblank" label:"End Time"`
	Tag         string `validate:"notblank" label:"Tag"`
	Location    string `validate:"notblank" label:"Location"`
	Description string `validate:"notblank" label:"Description"`
	Image       string
}

// Valid reports whether the draft can be submitted. Malformed inputs are
// simply invalid.
func (d Draft) Valid(loc *time.Location) bool {
	_, err := d.Build(loc)
	return err == nil
}

// Build validates the draft and produces the create request. Start and
// end take their time of day from the time inputs and their calendar day
// from the date input, in loc, with seconds dropped.
func (d Draft) Build(loc *time.Location) (model.EventInput, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := validation.Struct(d); err != nil {
		return model.EventInput{}, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}

	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(d.Date), loc)
	if err != nil {
		return model.EventInput{}, invalid("Date", "Date must be a valid day (YYYY-MM-DD)")
	}
	start, err := onDay(day, d.StartTime)
	if err != nil {
		return model.EventInput{}, invalid("Start Time", "Start Time must be a valid time (HH:MM)")
	}
	end, err := onDay(day, d.EndTime)
	if err != nil {
		return model.EventInput{}, invalid("End Time", "End Time must be a valid time (HH:MM)")
	}
	if !end.After(start) {
		return model.EventInput{}, invalid("End Time", MsgEndBeforeStart)
	}

	return model.EventInput{
		Title:       d.Title,
		Date:        day.UTC(),
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Tag:         d.Tag,
		Location:    d.Location,
		Description: d.Description,
		Image:       strings.TrimSpace(d.Image),
		Status:      model.EventStatusPublished,
	}, nil
}

func invalid(field, msg string) error {
	return fmt.Errorf("%w: %w", ErrInvalidDraft, &validation.Error{Field: field, Message: msg})
}

// onDay projects the time of day in clock onto day's calendar date.
func onDay(day time.Time, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		y, m, dd := day.Date()
		return time.Date(y, m, dd, t.Hour(), t.Minute(), 0, 0, day.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time of day %q", clock)
}
