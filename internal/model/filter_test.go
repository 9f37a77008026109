// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestSearchFilter_Values(t *testing.T) {
	f := SearchFilter{Term: "clean", Location: "", PageSize: 12}
	v := f.Values()

	if v.Get("term") != "clean" {
		t.Errorf("term = %q", v.Get("term"))
	}
	if v.Has("location") {
		t.Error("empty location should be omitted")
	}
	if v.Get("page") != "1" {
		t.Errorf("page = %q, want 1", v.Get("page"))
	}
	if v.Get("pageSize") != "12" {
		t.Errorf("pageSize = %q, want 12", v.Get("pageSize"))
	}
	if v.Get("sort") != DefaultSort {
		t.Errorf("sort = %q, want %q", v.Get("sort"), DefaultSort)
	}
}

func TestSearchFilter_ValuesWithoutPageSize(t *testing.T) {
	v := SearchFilter{Page: 3, Sort: "date:desc"}.Values()
	if v.Has("pageSize") {
		t.Error("pageSize should be omitted when unset")
	}
	if v.Get("page") != "3" || v.Get("sort") != "date:desc" {
		t.Errorf("values = %v", v)
	}
}

func TestSearchFilter_Trimmed(t *testing.T) {
	f := SearchFilter{Term: "  beach ", Location: "\tGoa\n", Tag: " env "}.Trimmed()
	if f.Term != "beach" || f.Location != "Goa" || f.Tag != "env" {
		t.Errorf("Trimmed() = %+v", f)
	}
}

func TestPageParams_Values(t *testing.T) {
	v := PageParams{PageSize: 50}.Values()
	if v.Get("page") != "1" || v.Get("pageSize") != "50" {
		t.Errorf("values = %v", v)
	}
}
