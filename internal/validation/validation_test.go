// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package validation

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"9876543210", true},
		{"+919876543210", true},
		{"09876543210", true},
		{"  6000000000 ", true},
		{"1234567890", false},
		{"98765", false},
		{"+911234567890", false},
		{"+9198765432101", false},
		{"", false},
		{"98765 43210", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := IsValidPhone(tt.phone); got != tt.want {
				t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestPhoneHint(t *testing.T) {
	if PhoneHint("") != "" {
		t.Error("blank phone should have no hint")
	}
	if PhoneHint("9876543210") != "" {
		t.Error("valid phone should have no hint")
	}
	if PhoneHint("123") != MsgInvalidPhoneHint {
		t.Errorf("PhoneHint(123) = %q", PhoneHint("123"))
	}
}

func TestCoerceAttendees(t *testing.T) {
	tests := map[string]int{
		"":    1,
		"abc": 1,
		"0":   1,
		"-2":  1,
		"1":   1,
		" 4 ": 4,
		"12":  12,
	}
	for in, want := range tests {
		if got := CoerceAttendees(in); got != want {
			t.Errorf("CoerceAttendees(%q) = %d, want %d", in, got, want)
		}
	}
}

type sample struct {
	Name  string `validate:"notblank" label:"Name"`
	Email string `validate:"required,email" label:"Email"`
	Phone string `validate:"inmobile" label:"Phone"`
	Image string `validate:"omitempty,url" label:"Image"`
}

func TestStruct(t *testing.T) {
	ok := sample{Name: "Asha", Email: "asha@example.org", Phone: "+919876543210"}
	if err := Struct(ok); err != nil {
		t.Fatalf("Struct(valid) = %v", err)
	}

	err := Struct(sample{Name: "   ", Email: "nope", Phone: "123", Image: "not a url"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !IsValidationError(err) {
		t.Fatalf("IsValidationError(%T) = false", err)
	}

	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected Errors, got %T", err)
	}
	if len(errs) != 4 {
		t.Fatalf("len(errs) = %d, want 4: %v", len(errs), errs)
	}
	if errs.First().Field != "Name" || errs.First().Message != "Name is required" {
		t.Errorf("First() = %+v", errs.First())
	}
	if errs[2].Message != MsgInvalidPhone {
		t.Errorf("phone message = %q", errs[2].Message)
	}
	if Message(err) != "Name is required" {
		t.Errorf("Message() = %q", Message(err))
	}
}

func TestIsValidationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("submit: %w", &Error{Field: "Phone", Message: MsgInvalidPhone})
	if !IsValidationError(err) {
		t.Error("wrapped *Error should be detected")
	}
	if Message(err) != MsgInvalidPhone {
		t.Errorf("Message() = %q", Message(err))
	}
	if IsValidationError(errors.New("boom")) {
		t.Error("plain error should not be a validation error")
	}
}
