// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/causeconnect/internal/model"
)

// HostListEvents lists the signed-in host's own events.
func (c *Client) HostListEvents(ctx context.Context, p model.PageParams) (model.Page[model.Event], error) {
	var page model.Page[model.RawEvent]
	err := c.do(ctx, request{
		op:     "list host events",
		method: http.MethodGet,
		path:   "/host/events",
		query:  p.Values(),
		auth:   true,
	}, &page)
	if err != nil {
		return model.Page[model.Event]{}, err
	}
	return normalizePage(page, model.RawEvent.Normalize), nil
}

// HostCreateEvent creates an event owned by the signed-in host.
func (c *Client) HostCreateEvent(ctx context.Context, in model.EventInput) (model.Event, error) {
	var raw model.RawEvent
	err := c.do(ctx, request{
		op:     "create event",
		method: http.MethodPost,
		path:   "/host/events",
		body:   in,
		auth:   true,
	}, &raw)
	if err != nil {
		return model.Event{}, err
	}
	return raw.Normalize(), nil
}

// HostUpdateEvent applies a partial update to one of the host's events.
func (c *Client) HostUpdateEvent(ctx context.Context, id string, patch model.EventPatch) (model.Event, error) {
	var raw model.RawEvent
	err := c.do(ctx, request{
		op:     "update event",
		method: http.MethodPatch,
		path:   "/host/events/" + pathID(id),
		body:   patch,
		auth:   true,
	}, &raw)
	if err != nil {
		return model.Event{}, err
	}
	c.invalidateEvent(ctx, id)
	return raw.Normalize(), nil
}

// HostDeleteEvent deletes one of the host's events.
func (c *Client) HostDeleteEvent(ctx context.Context, id string) error {
	err := c.do(ctx, request{
		op:     "delete event",
		method: http.MethodDelete,
		path:   "/host/events/" + pathID(id),
		auth:   true,
	}, nil)
	if err != nil {
		return err
	}
	c.invalidateEvent(ctx, id)
	return nil
}

// HostListRegistrations lists the registrations of one of the host's events.
func (c *Client) HostListRegistrations(ctx context.Context, eventID string, p model.PageParams) (model.Page[model.Registration], error) {
	var page model.Page[model.RawRegistration]
	err := c.do(ctx, request{
		op:     "list registrations",
		method: http.MethodGet,
		path:   "/host/events/" + pathID(eventID) + "/registrations",
		query:  p.Values(),
		auth:   true,
	}, &page)
	if err != nil {
		return model.Page[model.Registration]{}, err
	}
	return normalizePage(page, model.RawRegistration.Normalize), nil
}
