// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package host

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/olegiv/causeconnect/internal/api"
	"github.com/olegiv/causeconnect/internal/cancel"
	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/notify"
	"github.com/olegiv/causeconnect/internal/session"
	"github.com/olegiv/causeconnect/internal/validation"
)

// Page sizes of the dashboard listings.
const (
	DefaultPageSize        = 12
	DefaultMembersPageSize = 50
)

// Notification texts.
const (
	MsgCreated       = "Event created"
	MsgUpdated       = "Event updated"
	MsgDeleted       = "Event deleted"
	MsgSignedOut     = "Signed out"
	MsgCreateFailed  = "Failed to create event"
	MsgUpdateFailed  = "Failed to update event"
	MsgDeleteFailed  = "Failed to delete event"
	MsgLoadFailed    = "Failed to load events"
	MsgMembersFailed = "Failed to load registrations"
)

// API is the part of the backend the dashboard uses. *api.Client
// satisfies it.
type API interface {
	HostListEvents(ctx context.Context, p model.PageParams) (model.Page[model.Event], error)
	HostCreateEvent(ctx context.Context, in model.EventInput) (model.Event, error)
	HostUpdateEvent(ctx context.Context, id string, patch model.EventPatch) (model.Event, error)
	HostDeleteEvent(ctx context.Context, id string) error
	HostListRegistrations(ctx context.Context, eventID string, p model.PageParams) (model.Page[model.Registration], error)
}

// Options configures a Dashboard.
type Options struct {
	// Location anchors composer dates; nil means time.Local.
	Location        *time.Location
	PageSize        int
	MembersPageSize int
	Notifier        notify.Notifier
	Logger          *slog.Logger
}

// State is a snapshot of the host's event list. MembersErr belongs to the
// last registrations listing and is independent of Err.
type State struct {
	Events     []model.Event
	Loading    bool
	Err        string
	MembersErr string
}

// Dashboard is the host's view of their own events. It is safe for
// concurrent use.
type Dashboard struct {
	api      API
	sess     *session.Store
	composer *Composer
	notifier notify.Notifier
	logger   *slog.Logger
	pageSize int
	members  int

	mu      sync.Mutex
	events  []model.Event
	loading bool
	err     string
	load    *cancel.Token

	membersErr string
}

// NewDashboard creates a dashboard for the host signed in to sess.
func NewDashboard(client API, sess *session.Store, opts Options) *Dashboard {
	d := &Dashboard{
		api:      client,
		sess:     sess,
		composer: NewComposer(opts.Location),
		notifier: opts.Notifier,
		logger:   opts.Logger,
		pageSize: opts.PageSize,
		members:  opts.MembersPageSize,
		events:   []model.Event{},
	}
	if d.notifier == nil {
		d.notifier = notify.Discard
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.pageSize <= 0 {
		d.pageSize = DefaultPageSize
	}
	if d.members <= 0 {
		d.members = DefaultMembersPageSize
	}
	return d
}

// Enter is the protected-view check. A visitor who is not a signed-in
// host has their session cleared and gets an error.
func (d *Dashboard) Enter(ctx context.Context) error {
	_, err := d.sess.Require(ctx, model.RoleHost)
	return err
}

func (d *Dashboard) signedIn() error {
	if !d.sess.Current().HasRole(model.RoleHost) {
		return session.ErrNoSession
	}
	return nil
}

// Composer returns the authoring form.
func (d *Dashboard) Composer() *Composer {
	return d.composer
}

// Load fetches the host's events. A load superseded by a newer one, or
// still running when the dashboard is closed, is dropped. On failure the
// previous list stays.
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

	page, err := d.api.HostListEvents(ctx, model.PageParams{Page: 1, PageSize: d.pageSize})

	d.mu.Lock()
	defer d.mu.Unlock()
	if tok.Cancelled() {
		return err
	}
	d.loading = false
	if err != nil {
		d.err = api.Message(err, MsgLoadFailed)
		d.logger.Warn("loading host events failed", "error", err)
		return err
	}
	d.events = page.Items
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

// State returns a snapshot of the event list.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Events:     slices.Clone(d.events),
		Loading:    d.loading,
		Err:        d.err,
		MembersErr: d.membersErr,
	}
}

// TotalRegistrations sums the registration counts of the listed events.
func (d *Dashboard) TotalRegistrations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, e := range d.events {
		total += e.RegistrationsCount
	}
	return total
}

// Create submits the composer's draft. On success the confirmed event is
// prepended to the list and the composer is blanked; on any failure the
// list and the draft are left as they were.
func (d *Dashboard) Create(ctx context.Context) (model.Event, error) {
	if err := d.signedIn(); err != nil {
		return model.Event{}, err
	}

	// The submit control may have been enabled against an older draft.
	in, err := d.composer.Draft().Build(d.composer.Location())
	if err != nil {
		notify.Error(d.notifier, validation.Message(err))
		return model.Event{}, err
	}

	created, err := d.api.HostCreateEvent(ctx, in)
	if err != nil {
		d.logger.Info("creating event failed", "error", err)
		notify.Error(d.notifier, api.Message(err, MsgCreateFailed))
		return model.Event{}, err
	}

	d.mu.Lock()
	d.events = append([]model.Event{created}, d.events...)
	d.mu.Unlock()

	d.composer.Reset()
	d.logger.Info("event created", "event_id", created.ID)
	notify.Success(d.notifier, MsgCreated)
	return created, nil
}

// Update applies patch to one event and replaces the list entry with the
// confirmed result.
func (d *Dashboard) Update(ctx context.Context, id string, patch model.EventPatch) (model.Event, error) {
	if err := d.signedIn(); err != nil {
		return model.Event{}, err
	}

	updated, err := d.api.HostUpdateEvent(ctx, id, patch)
	if err != nil {
		notify.Error(d.notifier, api.Message(err, MsgUpdateFailed))
		return model.Event{}, err
	}

	d.mu.Lock()
	if i := slices.IndexFunc(d.events, func(e model.Event) bool { return e.ID == id }); i >= 0 {
		d.events[i] = updated
	}
	d.mu.Unlock()

	notify.Success(d.notifier, MsgUpdated)
	return updated, nil
}

// Delete removes an event once the backend confirms the deletion.
func (d *Dashboard) Delete(ctx context.Context, id string) error {
	if err := d.signedIn(); err != nil {
		return err
	}

	if err := d.api.HostDeleteEvent(ctx, id); err != nil {
		d.logger.Info("deleting event failed", "event_id", id, "error", err)
		notify.Error(d.notifier, api.Message(err, MsgDeleteFailed))
		return err
	}

	d.mu.Lock()
	d.events = slices.DeleteFunc(d.events, func(e model.Event) bool { return e.ID == id })
	d.mu.Unlock()

	d.logger.Info("event deleted", "event_id", id)
	notify.Success(d.notifier, MsgDeleted)
	return nil
}

// Members lists the registrations of one of the host's events. A failure
// is kept as the members error without touching the event list.
func (d *Dashboard) Members(ctx context.Context, eventID string) ([]model.Registration, error) {
	if err := d.signedIn(); err != nil {
		return nil, err
	}
	page, err := d.api.HostListRegistrations(ctx, eventID, model.PageParams{Page: 1, PageSize: d.members})

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.membersErr = api.Message(err, MsgMembersFailed)
		d.logger.Warn("loading registrations failed", "event_id", eventID, "error", err)
		return nil, err
	}
	d.membersErr = ""
	return page.Items, nil
}

// SignOut ends the session and empties the dashboard.
func (d *Dashboard) SignOut(ctx context.Context) error {
	d.Close()
	d.mu.Lock()
	d.events = []model.Event{}
	d.err = ""
	d.membersErr = ""
	d.mu.Unlock()

	if err := d.sess.Clear(ctx); err != nil {
		return err
	}
	notify.Info(d.notifier, MsgSignedOut)
	return nil
}
