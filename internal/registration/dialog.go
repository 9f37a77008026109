// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package registration drives the per-event registration dialog: event
// details, the sign-up form, and its submission.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/causeconnect/internal/api"
	"github.com/olegiv/causeconnect/internal/cancel"
	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/notify"
	"github.com/olegiv/causeconnect/internal/validation"
)

// DefaultResetDelay defers the form reset until the closing transition
// has finished.
const DefaultResetDelay = 200 * time.Millisecond

// Notification texts.
const (
	MsgRegistered = "Registered successfully — check your email for confirmation"
	MsgFailed     = "Failed to register"
)

// ErrInvalidTransition is returned for an operation the current state
// does not allow.
var ErrInvalidTransition = errors.New("invalid dialog transition")

// Status is the dialog state.
type Status int

// Dialog states
const (
	Closed Status = iota
	Detail
	Registering
	Submitting
)

func (s Status) String() string {
	switch s {
	case Closed:
		return "closed"
	case Detail:
		return "detail"
	case Registering:
		return "registering"
	case Submitting:
		return "submitting"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Form is the raw content of the registration form.
type Form struct {
	Name      string `validate:"notblank" label:"Name"`
	Email     string `validate:"required,email" label:"Email"`
	Phone     string `validate:"inmobile" label:"Phone"`
	Attendees string
	Notes     string
}

// DefaultForm returns an empty form with one attendee.
func DefaultForm() Form {
	return Form{Attendees: "1"}
}

// Input converts the form into a request body: phone trimmed and
// attendees coerced to a positive count.
func (f Form) Input() model.RegistrationInput {
	return model.RegistrationInput{
		Name:      f.Name,
		Email:     f.Email,
		Phone:     strings.TrimSpace(f.Phone),
		Attendees: validation.CoerceAttendees(f.Attendees),
		Notes:     f.Notes,
	}
}

// Validate checks the form before any network call.
func (f Form) Validate() error {
	return validation.Struct(f)
}

// View is what the dialog currently shows. Form is nil unless the form
// is visible.
type View struct {
	Status    Status
	Event     *model.Event
	Form      *Form
	PhoneHint string
}

// Registrar submits registrations. *api.Client satisfies it.
type Registrar interface {
	Register(ctx context.Context, eventID string, in model.RegistrationInput) (model.Registration, error)
}

// Options configures a Dialog.
type Options struct {
	ResetDelay time.Duration
	Notifier   notify.Notifier
	Logger     *slog.Logger
}

// Dialog is the registration state machine of one event listing. It is
// safe for concurrent use.
type Dialog struct {
	reg        Registrar
	notifier   notify.Notifier
	logger     *slog.Logger
	resetDelay time.Duration

	mu         sync.Mutex
	status     Status
	event      *model.Event
	form       Form
	submission *cancel.Token
	resetTimer *time.Timer
	listeners  []func(View)
}

// NewDialog creates a closed dialog.
func NewDialog(reg Registrar, opts Options) *Dialog {
	d := &Dialog{
		reg:        reg,
		notifier:   opts.Notifier,
		logger:     opts.Logger,
		resetDelay: opts.ResetDelay,
		form:       DefaultForm(),
	}
	if d.notifier == nil {
		d.notifier = notify.Discard
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.resetDelay <= 0 {
		d.resetDelay = DefaultResetDelay
	}
	return d
}

// OnChange registers fn to receive every new view.
func (d *Dialog) OnChange(fn func(View)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

// Open shows the details of e with a fresh form.
func (d *Dialog) Open(e model.Event) error {
	d.mu.Lock()
	if d.status != Closed {
		d.mu.Unlock()
		return fmt.Errorf("%w: open from %s", ErrInvalidTransition, d.status)
	}
	d.stopResetLocked()
	d.form = DefaultForm()
	d.event = &e
	d.status = Detail
	d.emitLocked()
	return nil
}

// Register moves from the details to the form.
func (d *Dialog) Register() error {
	return d.transition(Detail, Registering)
}

// Back returns from the form to the details, keeping the form contents.
func (d *Dialog) Back() error {
	return d.transition(Registering, Detail)
}

func (d *Dialog) transition(from, to Status) error {
	d.mu.Lock()
	if d.status != from {
		cur := d.status
		d.mu.Unlock()
		return fmt.Errorf("%w: %s to %s from %s", ErrInvalidTransition, from, to, cur)
	}
	d.status = to
	d.emitLocked()
	return nil
}

// Edit changes the form. Only allowed while the form is editable.
func (d *Dialog) Edit(edit func(*Form)) error {
	d.mu.Lock()
	if d.status != Registering {
		cur := d.status
		d.mu.Unlock()
		return fmt.Errorf("%w: edit form in %s", ErrInvalidTransition, cur)
	}
	edit(&d.form)
	d.emitLocked()
	return nil
}

// Submit validates the form and, when valid, sends the registration.
// Validation failures and server errors keep the dialog on the form with
// its contents intact; success closes the dialog.
func (d *Dialog) Submit(ctx context.Context) (model.Registration, error) {
	d.mu.Lock()
	if d.status != Registering {
		cur := d.status
		d.mu.Unlock()
		return model.Registration{}, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, cur)
	}
	form := d.form
	event := *d.event

	if err := form.Validate(); err != nil {
		d.mu.Unlock()
		notify.Error(d.notifier, validation.Message(err))
		return model.Registration{}, err
	}

	tok := cancel.New()
	d.submission = tok
	d.status = Submitting
	d.emitLocked()

	reg, err := d.reg.Register(ctx, event.ID, form.Input())

	d.mu.Lock()
	if tok.Cancelled() {
		d.mu.Unlock()
		d.logger.Debug("registration finished after dialog closed", "event_id", event.ID)
		return reg, err
	}
	d.submission = nil

	if err != nil {
		d.status = Registering
		d.emitLocked()
		d.logger.Info("registration failed", "event_id", event.ID, "error", err)
		notify.Error(d.notifier, api.Message(err, MsgFailed))
		return model.Registration{}, err
	}

	d.closeLocked()
	d.emitLocked()
	d.logger.Info("registered for event", "event_id", event.ID, "registration_id", reg.ID)
	notify.Success(d.notifier, MsgRegistered)
	return reg, nil
}

// Close hides the dialog from any state. The form and event are cleared
// after the reset delay; a submission still in flight is abandoned.
func (d *Dialog) Close() {
	d.mu.Lock()
	if d.status == Closed {
		d.mu.Unlock()
		return
	}
	d.closeLocked()
	d.emitLocked()
}

func (d *Dialog) closeLocked() {
	if d.submission != nil {
		d.submission.Cancel()
		d.submission = nil
	}
	d.status = Closed
	d.stopResetLocked()
	d.resetTimer = time.AfterFunc(d.resetDelay, d.reset)
}

func (d *Dialog) reset() {
	d.mu.Lock()
	// Reopened before the timer fired.
	if d.status != Closed {
		d.mu.Unlock()
		return
	}
	d.resetTimer = nil
	d.event = nil
	d.form = DefaultForm()
	d.emitLocked()
}

func (d *Dialog) stopResetLocked() {
	if d.resetTimer != nil {
		d.resetTimer.Stop()
		d.resetTimer = nil
	}
}

// View returns what the dialog currently shows.
func (d *Dialog) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

// FormContents returns the form regardless of visibility.
func (d *Dialog) FormContents() Form {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

func (d *Dialog) viewLocked() View {
	v := View{Status: d.status}
	if d.event != nil {
		e := *d.event
		v.Event = &e
	}
	if d.status == Registering || d.status == Submitting {
		f := d.form
		v.Form = &f
		v.PhoneHint = validation.PhoneHint(f.Phone)
	}
	return v
}

// emitLocked releases d.mu and notifies listeners of the new view.
func (d *Dialog) emitLocked() {
	v := d.viewLocked()
	listeners := d.listeners
	d.mu.Unlock()
	for _, fn := range listeners {
		fn(v)
	}
}
