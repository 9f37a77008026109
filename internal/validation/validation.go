// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validation implements client-side input checks. Errors produced
// here never reach the network; callers report them inline or through a
// transient notification and keep the user's input for correction.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// phonePattern accepts an optional +91 or 0 prefix followed by a 10-digit
// mobile number starting with 6-9.
var phonePattern = regexp.MustCompile(`^(?:\+91|0)?[6-9]\d{9}$`)

// Messages shown for a rejected phone number.
const (
	MsgInvalidPhone     = "Please enter a valid Indian phone number"
	MsgInvalidPhoneHint = "Enter a valid Indian mobile number"
)

// Error is a single client-detected input problem.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errors collects every failing field of a struct check, in field order.
type Errors []*Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// First returns the first failing field, or nil.
func (e Errors) First() *Error {
	if len(e) == 0 {
		return nil
	}
	return e[0]
}

// IsValidationError reports whether err is a client-side validation failure.
func IsValidationError(err error) bool {
	var single *Error
	var multi Errors
	return errors.As(err, &single) || errors.As(err, &multi)
}

// Message returns the user-facing text of a validation failure. For
// multi-field failures only the first field is reported.
func Message(err error) string {
	var multi Errors
	if errors.As(err, &multi) && len(multi) > 0 {
		return multi[0].Message
	}
	var single *Error
	if errors.As(err, &single) {
		return single.Message
	}
	return err.Error()
}

// IsValidPhone reports whether p (after trimming) is a valid regional mobile number.
func IsValidPhone(p string) bool {
	return phonePattern.MatchString(strings.TrimSpace(p))
}

// PhoneHint returns inline helper text for a phone field: empty while the
// field is blank or valid.
func PhoneHint(p string) string {
	if p == "" || IsValidPhone(p) {
		return ""
	}
	return MsgInvalidPhoneHint
}

// CoerceAttendees converts raw attendee input into a positive count,
// defaulting to 1 when blank, non-numeric or below 1.
func CoerceAttendees(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NotBlank reports whether s has any non-space content.
func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their label tag so messages read naturally.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return NotBlank(fl.Field().String())
	})
	_ = v.RegisterValidation("inmobile", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	return v
}

// Struct validates s against its `validate` tags and converts failures
// into Errors.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating input: %w", err)
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &Error{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "email":
		return "Enter a valid email address"
	case "inmobile":
		return MsgInvalidPhone
	case "url", "http_url":
		return fe.Field() + " must be a valid URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
