// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/causeconnect/internal/model"
)

// AdminStats returns the platform counters.
func (c *Client) AdminStats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := c.do(ctx, request{
		op:     "admin stats",
		method: http.MethodGet,
		path:   "/admin/stats",
		auth:   true,
	}, &s)
	return s, err
}

// AdminListEvents lists every event on the platform.
func (c *Client) AdminListEvents(ctx context.Context, p model.PageParams) (model.Page[model.Event], error) {
	var page model.Page[model.RawEvent]
	err := c.do(ctx, request{
		op:     "admin list events",
		method: http.MethodGet,
		path:   "/admin/events",
		query:  p.Values(),
		auth:   true,
	}, &page)
	if err != nil {
		return model.Page[model.Event]{}, err
	}
	return normalizePage(page, model.RawEvent.Normalize), nil
}

// AdminListHosts lists host accounts with their event counts.
func (c *Client) AdminListHosts(ctx context.Context, p model.PageParams) (model.Page[model.Host], error) {
	var page model.Page[model.RawHost]
	err := c.do(ctx, request{
		op:     "admin list hosts",
		method: http.MethodGet,
		path:   "/admin/hosts",
		query:  p.Values(),
		auth:   true,
	}, &page)
	if err != nil {
		return model.Page[model.Host]{}, err
	}
	return normalizePage(page, model.RawHost.Normalize), nil
}

// AdminListRegistrations lists the registrations of any event.
func (c *Client) AdminListRegistrations(ctx context.Context, eventID string, p model.PageParams) (model.Page[model.Registration], error) {
	var page model.Page[model.RawRegistration]
	err := c.do(ctx, request{
		op:     "admin list registrations",
		method: http.MethodGet,
		path:   "/admin/events/" + pathID(eventID) + "/registrations",
		query:  p.Values(),
		auth:   true,
	}, &page)
	if err != nil {
		return model.Page[model.Registration]{}, err
	}
	return normalizePage(page, model.RawRegistration.Normalize), nil
}

// AdminDeleteEvent deletes any event. Its registrations are removed
// server-side.
func (c *Client) AdminDeleteEvent(ctx context.Context, id string) error {
	err := c.do(ctx, request{
		op:     "admin delete event",
		method: http.MethodDelete,
		path:   "/admin/events/" + pathID(id),
		auth:   true,
	}, nil)
	if err != nil {
		return err
	}
	c.invalidateEvent(ctx, id)
	return nil
}
