// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package host

import (
	"fmt"
	"sync"
	"time"
)

// Composer holds the draft being authored and re-evaluates its validity
// on every change.
type Composer struct {
	loc   *time.Location
	focus *FocusOrder

	mu        sync.Mutex
	draft     Draft
	valid     bool
	listeners []func(valid bool)
}

// NewComposer creates an empty composer whose dates are anchored in loc.
func NewComposer(loc *time.Location) *Composer {
	if loc == nil {
		loc = time.Local
	}
	return &Composer{loc: loc, focus: DefaultFocusOrder()}
}

// OnChange registers fn to receive the validity after every change.
func (c *Composer) OnChange(fn func(valid bool)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Set assigns one field.
func (c *Composer) Set(field Field, value string) error {
	var err error
	c.Edit(func(d *Draft) {
		switch field {
		case FieldTitle:
			d.Title = value
		case FieldDate:
			d.Date = value
		case FieldStartTime:
			d.StartTime = value
		case FieldEndTime:
			d.EndTime = value
		case FieldTag:
			d.Tag = value
		case FieldLocation:
			d.Location = value
		case FieldDescription:
			d.Description = value
		case FieldImage:
			d.Image = value
		default:
			err = fmt.Errorf("unknown field %q", field)
		}
	})
	return err
}

// Edit applies edit to the draft.
func (c *Composer) Edit(edit func(*Draft)) {
	c.mu.Lock()
	edit(&c.draft)
	c.valid = c.draft.Valid(c.loc)
	valid, listeners := c.valid, c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(valid)
	}
}

// Reset blanks every field.
func (c *Composer) Reset() {
	c.Edit(func(d *Draft) { *d = Draft{} })
}

// Draft returns the current inputs.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Valid reports whether the submit control is enabled.
func (c *Composer) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid
}

// Location returns the zone dates are anchored in.
func (c *Composer) Location() *time.Location {
	return c.loc
}

// Focus returns the field order used for keyboard advance.
func (c *Composer) Focus() *FocusOrder {
	return c.focus
}
