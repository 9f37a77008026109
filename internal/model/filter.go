// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultSort orders events by date ascending.
const DefaultSort = "date:asc"

// SearchFilter is the transient filter set of a catalog query.
// DateFrom and DateTo are calendar days formatted as YYYY-MM-DD.
type SearchFilter struct {
	Term     string
	Location string
	Tag      string
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
	Sort     string
}

// Trimmed returns a copy with all text fields trimmed.
func (f SearchFilter) Trimmed() SearchFilter {
	f.Term = strings.TrimSpace(f.Term)
	f.Location = strings.TrimSpace(f.Location)
	f.Tag = strings.TrimSpace(f.Tag)
	f.DateFrom = strings.TrimSpace(f.DateFrom)
	f.DateTo = strings.TrimSpace(f.DateTo)
	f.Sort = strings.TrimSpace(f.Sort)
	return f
}

// Values encodes the filter as query parameters. Empty text fields are
// omitted; page and sort fall back to 1 and DefaultSort. Page size is only
// sent when the caller set one.
func (f SearchFilter) Values() url.Values {
	v := url.Values{}
	setIf := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	setIf("term", f.Term)
	setIf("location", f.Location)
	setIf("tag", f.Tag)
	setIf("dateFrom", f.DateFrom)
	setIf("dateTo", f.DateTo)

	page := f.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if f.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	sort := f.Sort
	if sort == "" {
		sort = DefaultSort
	}
	v.Set("sort", sort)
	return v
}

// PageParams is the pagination window of list endpoints that take no filter.
type PageParams struct {
	Page     int
	PageSize int
}

// Values encodes the pagination window, defaulting page to 1.
func (p PageParams) Values() url.Values {
	page := p.Page
	if page < 1 {
		page = 1
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if p.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	return v
}

// Page is one window of a paginated listing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}
