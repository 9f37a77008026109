// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/olegiv/causeconnect/internal/validation"
)

// GenericMessage is shown for failures that carry no usable message.
const GenericMessage = "Something went wrong. Please try again."

// RequestError is a non-success response from the backend.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// TransportError is a failure to reach the backend or to decode its
// response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// errorBody covers both error envelopes the backend uses.
type errorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// newRequestError extracts the server message from a failed response:
// error.message, then message, then the status text.
func newRequestError(status int, body []byte) *RequestError {
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		if eb.Error != nil && eb.Error.Message != "" {
			return &RequestError{Status: status, Message: eb.Error.Message}
		}
		if eb.Message != "" {
			return &RequestError{Status: status, Message: eb.Message}
		}
	}
	msg := http.StatusText(status)
	if msg == "" {
		msg = GenericMessage
	}
	return &RequestError{Status: status, Message: msg}
}

// Message returns the text to show the user for err. Server messages are
// passed through verbatim; transport failures use fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if fallback == "" {
		fallback = GenericMessage
	}

	if validation.IsValidationError(err) {
		return validation.Message(err)
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Message != "" {
			return reqErr.Message
		}
		return fallback
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// IsStatus reports whether err is a RequestError with the given status.
func IsStatus(err error, status int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Status == status
}
