// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package admin implements the administrator dashboard: platform counters,
// every event and host, per-event registrations, and event deletion.
package admin

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/causeconnect/internal/api"
	"github.com/olegiv/causeconnect/internal/cancel"
	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/notify"
	"github.com/olegiv/causeconnect/internal/session"
)

// DefaultPageSize is the window of every admin listing.
const DefaultPageSize = 50

// Notification texts.
const (
	MsgLoadFailed   = "Failed to load data"
	MsgDeleted      = "Event deleted"
	MsgDeleteFailed = "Failed to delete event"
)

// API is the part of the backend the dashboard uses. *api.Client
// satisfies it.
type API interface {
	AdminStats(ctx context.Context) (model.Stats, error)
	AdminListEvents(ctx context.Context, p model.PageParams) (model.Page[model.Event], error)
	AdminListHosts(ctx context.Context, p model.PageParams) (model.Page[model.Host], error)
	AdminListRegistrations(ctx context.Context, eventID string, p model.PageParams) (model.Page[model.Registration], error)
	AdminDeleteEvent(ctx context.Context, id string) error
}

// Options configures a Dashboard.
type Options struct {
	PageSize int
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// State is a snapshot of the dashboard. Stats is nil until the first
// successful load.
type State struct {
	Stats   *model.Stats
	Events  []model.Event
	Hosts   []model.Host
	Loading bool
	Err     string
}

// Dashboard is safe for concurrent use.
type Dashboard struct {
	api      API
	sess     *session.Store
	pageSize int
	notifier notify.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	stats   *model.Stats
	events  []model.Event
	hosts   []model.Host
	loading bool
	err     string
	load    *cancel.Token
}

// NewDashboard creates a dashboard for the admin signed in to sess.
func NewDashboard(client API, sess *session.Store, opts Options) *Dashboard {
	d := &Dashboard{
		api:      client,
		sess:     sess,
		pageSize: opts.PageSize,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		events:   []model.Event{},
		hosts:    []model.Host{},
	}
	if d.pageSize <= 0 {
		d.pageSize = DefaultPageSize
	}
	if d.notifier == nil {
		d.notifier = notify.Discard
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Enter is the protected-view check for administrators.
func (d *Dashboard) Enter(ctx context.Context) error {
	_, err := d.sess.Require(ctx, model.RoleAdmin)
	return err
}

func (d *Dashboard) signedIn() error {
	if !d.sess.Current().HasRole(model.RoleAdmin) {
		return session.ErrNoSession
	}
	return nil
}

// Load fetches counters, events and hosts concurrently. All three must
// succeed; otherwise the previous data stays and the error is recorded.
// A load superseded by a newer one, or abandoned by Close, is dropped.
func (d *Dashboard) Load(ctx context.Context) error {
	if err := d.signedIn(); err != nil {
		return err
	}

	tok := cancel.New()
	d.mu.Lock()
	if d.load != nil {
		d.load.Cancel()
	}
	d.load = tok
	d.loading = true
	d.err = ""
	d.mu.Unlock()

	var (
		stats  model.Stats
		events model.Page[model.Event]
		hosts  model.Page[model.Host]
	)
	window := model.PageParams{Page: 1, PageSize: d.pageSize}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = d.api.AdminStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		events, err = d.api.AdminListEvents(gctx, window)
		return err
	})
	g.Go(func() (err error) {
		hosts, err = d.api.AdminListHosts(gctx, window)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if tok.Cancelled() {
		return err
	}
	d.loading = false
	if err != nil {
		d.err = api.Message(err, MsgLoadFailed)
		d.logger.Warn("loading admin dashboard failed", "error", err)
		return err
	}
	d.stats = &stats
	d.events = events.Items
	d.hosts = hosts.Items
	return nil
}

// Close abandons any load in flight.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.load != nil {
		d.load.Cancel()
		d.load = nil
	}
	d.loading = false
	d.mu.Unlock()
}

// State returns a snapshot of the dashboard.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := State{
		Events:  slices.Clone(d.events),
		Hosts:   slices.Clone(d.hosts),
		Loading: d.loading,
		Err:     d.err,
	}
	if d.stats != nil {
		st := *d.stats
		s.Stats = &st
	}
	return s
}

// Registrations lists the sign-ups of any event.
func (d *Dashboard) Registrations(ctx context.Context, eventID string) ([]model.Registration, error) {
	if err := d.signedIn(); err != nil {
		return nil, err
	}
	page, err := d.api.AdminListRegistrations(ctx, eventID, model.PageParams{Page: 1, PageSize: d.pageSize})
	if err != nil {
		d.logger.Warn("loading registrations failed", "event_id", eventID, "error", err)
		return nil, err
	}
	return page.Items, nil
}

// Delete removes an event once the backend confirms it, then refreshes the
// counters. A failed delete changes nothing.
func (d *Dashboard) Delete(ctx context.Context, id string) error {
	if err := d.signedIn(); err != nil {
		return err
	}

	if err := d.api.AdminDeleteEvent(ctx, id); err != nil {
		msg := api.Message(err, MsgDeleteFailed)
		d.mu.Lock()
		d.err = msg
		d.mu.Unlock()
		notify.Error(d.notifier, msg)
		return err
	}

	d.mu.Lock()
	d.events = slices.DeleteFunc(d.events, func(e model.Event) bool { return e.ID == id })
	d.mu.Unlock()
	d.logger.Info("event deleted by admin", "event_id", id)
	notify.Success(d.notifier, MsgDeleted)

	stats, err := d.api.AdminStats(ctx)
	if err != nil {
		d.logger.Warn("refreshing stats after delete failed", "error", err)
		return nil
	}
	d.mu.Lock()
	d.stats = &stats
	d.mu.Unlock()
	return nil
}

// SignOut ends the session and empties the dashboard.
func (d *Dashboard) SignOut(ctx context.Context) error {
	d.Close()
	d.mu.Lock()
	d.stats = nil
	d.events = []model.Event{}
	d.hosts = []model.Host{}
	d.err = ""
	d.mu.Unlock()
	return d.sess.Clear(ctx)
}
