// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types exchanged with the events backend:
// Event, Registration, User, SearchFilter and paginated result pages.
package model
