// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// wireTimeLayouts are tried in order. Zone-less forms are read as UTC.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.DateOnly,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
}

// ParseWireTime reads a backend timestamp: RFC 3339, a calendar day, or a
// zone-less date-time. Blank or unrecognized text yields the zero time.
func ParseWireTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// wireTime decodes a timestamp field without ever failing the enclosing
// document. Strings go through ParseWireTime, integers are epoch
// milliseconds, and null or any other JSON value is the zero time.
type wireTime time.Time

func (w *wireTime) UnmarshalJSON(b []byte) error {
	*w = wireTime{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = wireTime(ParseWireTime(s))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if ms, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			*w = wireTime(time.UnixMilli(ms).UTC())
		}
	}
	return nil
}
