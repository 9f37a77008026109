// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/causeconnect/internal/model"
)

// ListEvents queries the public catalog. Text filters are trimmed and
// omitted when empty.
func (c *Client) ListEvents(ctx context.Context, f model.SearchFilter) (model.Page[model.Event], error) {
	var page model.Page[model.RawEvent]
	err := c.do(ctx, request{
		op:     "list events",
		method: http.MethodGet,
		path:   "/events",
		query:  f.Trimmed().Values(),
	}, &page)
	if err != nil {
		return model.Page[model.Event]{}, err
	}
	return normalizePage(page, model.RawEvent.Normalize), nil
}

// GetEvent fetches one event, served from the event cache when configured.
func (c *Client) GetEvent(ctx context.Context, id string) (model.Event, error) {
	fetch := func() (*model.Event, error) {
		var raw model.RawEvent
		err := c.do(ctx, request{
			op:     "get event",
			method: http.MethodGet,
			path:   "/events/" + pathID(id),
		}, &raw)
		if err != nil {
			return nil, err
		}
		e := raw.Normalize()
		return &e, nil
	}

	var (
		e   *model.Event
		err error
	)
	if c.events != nil {
		e, err = c.events.GetOrSet(ctx, eventCacheKey(id), fetch)
	} else {
		e, err = fetch()
	}
	if err != nil {
		return model.Event{}, err
	}
	return *e, nil
}

// Register signs a visitor up for an event.
func (c *Client) Register(ctx context.Context, eventID string, in model.RegistrationInput) (model.Registration, error) {
	var raw model.RawRegistration
	err := c.do(ctx, request{
		op:     "register",
		method: http.MethodPost,
		path:   "/events/" + pathID(eventID) + "/registrations",
		body:   in,
	}, &raw)
	if err != nil {
		return model.Registration{}, err
	}
	// The cached detail carries a stale registration count now.
	c.invalidateEvent(ctx, eventID)

	reg := raw.Normalize()
	if reg.EventID == "" {
		reg.EventID = eventID
	}
	return reg, nil
}
