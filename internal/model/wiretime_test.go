// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseWireTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-06-01T14:00:00Z", time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)},
		{"2025-06-01T14:00:00.250+05:30", time.Date(2025, 6, 1, 8, 30, 0, 250e6, time.UTC)},
		{"2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{" 2025-06-01T14:00:00 ", time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)},
		{"2025-06-01T14:00", time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)},
		{"2025-06-01 14:00:00", time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"tomorrow", time.Time{}},
	}

	for _, tt := range tests {
		if got := ParseWireTime(tt.in); !got.Equal(tt.want) {
			t.Errorf("ParseWireTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRawEvent_LenientTimes(t *testing.T) {
	body := `{"_id":"e1","title":"Tree planting","date":"2025-06-01","startTime":"","endTime":1748786400000,"registrationsCount":-2}`

	var raw RawEvent
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := raw.Normalize()
	if got.ID != "e1" || got.Title != "Tree planting" {
		t.Errorf("Normalize() = %+v", got)
	}
	if want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
	if !got.StartTime.IsZero() {
		t.Errorf("StartTime = %v, want zero", got.StartTime)
	}
	if want := time.UnixMilli(1748786400000).UTC(); !got.EndTime.Equal(want) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, want)
	}
	if got.RegistrationsCount != 0 {
		t.Errorf("RegistrationsCount = %d, want 0", got.RegistrationsCount)
	}
}

func TestRawEvent_NullAndOddTimes(t *testing.T) {
	body := `{"id":"e2","date":null,"startTime":{"$date":"x"},"endTime":true}`

	var raw RawEvent
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !raw.Date.IsZero() || !raw.StartTime.IsZero() || !raw.EndTime.IsZero() {
		t.Errorf("times = %v %v %v, want zero", raw.Date, raw.StartTime, raw.EndTime)
	}
	if raw.Normalize().ID != "e2" {
		t.Errorf("ID = %q, want e2", raw.ID)
	}
}

func TestRawEvent_MalformedDocumentStillFails(t *testing.T) {
	var raw RawEvent
	if err := json.Unmarshal([]byte(`{"title":42}`), &raw); err == nil {
		t.Error("Unmarshal() error = nil, want type error")
	}
}

func TestRawRegistrationAndHost_LenientCreatedAt(t *testing.T) {
	var reg RawRegistration
	if err := json.Unmarshal([]byte(`{"_id":"r1","name":"Asha","createdAt":"2025-05-01"}`), &reg); err != nil {
		t.Fatalf("Unmarshal registration: %v", err)
	}
	if r := reg.Normalize(); r.ID != "r1" || r.Name != "Asha" || !r.CreatedAt.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("registration = %+v", r)
	}

	var host RawHost
	if err := json.Unmarshal([]byte(`{"_id":"h1","name":"Ravi","createdAt":""}`), &host); err != nil {
		t.Fatalf("Unmarshal host: %v", err)
	}
	if h := host.Normalize(); h.ID != "h1" || !h.CreatedAt.IsZero() {
		t.Errorf("host = %+v", h)
	}
}
