// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package host

import "sync"

// Field identifies a composer input.
type Field string

// Composer fields
const (
	FieldTitle       Field = "title"
	FieldStartTime   Field = "startTime"
	FieldEndTime     Field = "endTime"
	FieldDate        Field = "date"
	FieldTag         Field = "tag"
	FieldLocation    Field = "location"
	FieldImage       Field = "image"
	FieldDescription Field = "description"
)

// FocusField is one entry of a FocusOrder.
type FocusField struct {
	ID        Field
	Enabled   bool
	Multiline bool
}

// FocusOrder is the ordered list of focusable fields of a form. Advancing
// skips disabled fields; multiline fields keep the advance key for
// themselves.
type FocusOrder struct {
	mu     sync.Mutex
	fields []FocusField
}

// NewFocusOrder creates an order from fields in document order.
func NewFocusOrder(fields ...FocusField) *FocusOrder {
	return &FocusOrder{fields: append([]FocusField(nil), fields...)}
}

// DefaultFocusOrder is the composer layout: title, the time range, date,
// tag, location, image and finally the multiline description.
func DefaultFocusOrder() *FocusOrder {
	return NewFocusOrder(
		FocusField{ID: FieldTitle, Enabled: true},
		FocusField{ID: FieldStartTime, Enabled: true},
		FocusField{ID: FieldEndTime, Enabled: true},
		FocusField{ID: FieldDate, Enabled: true},
		FocusField{ID: FieldTag, Enabled: true},
		FocusField{ID: FieldLocation, Enabled: true},
		FocusField{ID: FieldImage, Enabled: true},
		FocusField{ID: FieldDescription, Enabled: true, Multiline: true},
	)
}

// SetEnabled enables or disables a field. Unknown fields are ignored.
func (o *FocusOrder) SetEnabled(id Field, enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.fields {
		if o.fields[i].ID == id {
			o.fields[i].Enabled = enabled
		}
	}
}

// Advance returns the field that should receive focus when the advance
// key is pressed in from. It reports false when from is unknown or
// multiline, or when no enabled field follows it.
func (o *FocusOrder) Advance(from Field) (Field, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	idx := -1
	for i, f := range o.fields {
		if f.ID == from {
			idx = i
			break
		}
	}
	if idx < 0 || o.fields[idx].Multiline {
		return "", false
	}
	for _, f := range o.fields[idx+1:] {
		if f.Enabled {
			return f.ID, true
		}
	}
	return "", false
}

// Fields returns a copy of the order.
func (o *FocusOrder) Fields() []FocusField {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]FocusField(nil), o.fields...)
}
