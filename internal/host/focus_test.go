// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package host

import "testing"

func TestFocusAdvance(t *testing.T) {
	o := DefaultFocusOrder()

	tests := []struct {
		from   Field
		want   Field
		wantOK bool
	}{
		{FieldTitle, FieldStartTime, true},
		{FieldEndTime, FieldDate, true},
		{FieldImage, FieldDescription, true},
		{FieldDescription, "", false},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := o.Advance(tt.from)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Advance(%q) = %q, %v; want %q, %v", tt.from, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFocusSkipsDisabled(t *testing.T) {
	o := DefaultFocusOrder()
	o.SetEnabled(FieldStartTime, false)
	o.SetEnabled(FieldEndTime, false)

	if got, _ := o.Advance(FieldTitle); got != FieldDate {
		t.Errorf("Advance(title) = %q, want %q", got, FieldDate)
	}

	o.SetEnabled(FieldDescription, false)
	if _, ok := o.Advance(FieldImage); ok {
		t.Error("Advance(image) should fail when nothing enabled follows")
	}
}

func TestFocusMultilineKeepsKey(t *testing.T) {
	o := NewFocusOrder(
		FocusField{ID: "notes", Enabled: true, Multiline: true},
		FocusField{ID: "submit", Enabled: true},
	)
	if _, ok := o.Advance("notes"); ok {
		t.Error("multiline field must not advance")
	}
	if n := len(o.Fields()); n != 2 {
		t.Errorf("len(Fields()) = %d, want 2", n)
	}
}
