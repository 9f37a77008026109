// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package registration

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/causeconnect/internal/api"
	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/notify"
	"github.com/olegiv/causeconnect/internal/testutil"
	"github.com/olegiv/causeconnect/internal/validation"
)

const testResetDelay = 20 * time.Millisecond

type fixture struct {
	fake   *testutil.FakeAPI
	dialog *Dialog
	notes  *notify.Recorder
	event  model.Event
	path   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := testutil.NewFakeAPI(t)
	id := fake.AddEvent(model.Event{Title: "Beach cleanup", Location: "Mumbai"})

	c, err := api.New(api.Options{BaseURL: fake.URL, Logger: testutil.TestLoggerSilent()})
	require.NoError(t, err)

	notes := &notify.Recorder{}
	d := NewDialog(c, Options{ResetDelay: testResetDelay, Notifier: notes, Logger: testutil.TestLoggerSilent()})
	return &fixture{
		fake:   fake,
		dialog: d,
		notes:  notes,
		event:  fake.Events()[0],
		path:   "/events/" + id + "/registrations",
	}
}

func fillValid(f *Form) {
	f.Name = "Meera Iyer"
	f.Email = "meera@example.org"
	f.Phone = " 9876543210 "
	f.Attendees = "abc"
	f.Notes = "Vegetarian lunch"
}

func TestTransitions(t *testing.T) {
	fx := newFixture(t)
	d := fx.dialog

	assert.ErrorIs(t, d.Register(), ErrInvalidTransition, "register is only valid from detail")
	assert.ErrorIs(t, d.Back(), ErrInvalidTransition)

	require.NoError(t, d.Open(fx.event))
	v := d.View()
	assert.Equal(t, Detail, v.Status)
	require.NotNil(t, v.Event)
	assert.Equal(t, fx.event.ID, v.Event.ID)
	assert.Nil(t, v.Form, "detail never shows the form")
	assert.ErrorIs(t, d.Open(fx.event), ErrInvalidTransition)

	require.NoError(t, d.Register())
	assert.Equal(t, Registering, d.View().Status)
	require.NoError(t, d.Edit(func(f *Form) { f.Name = "Meera" }))

	require.NoError(t, d.Back())
	v = d.View()
	assert.Equal(t, Detail, v.Status)
	assert.Nil(t, v.Form)
	assert.ErrorIs(t, d.Edit(func(f *Form) { f.Name = "x" }), ErrInvalidTransition)

	require.NoError(t, d.Register())
	assert.Equal(t, "Meera", d.View().Form.Name, "back must preserve the form")
}

func TestSubmitInvalidPhoneStaysOnForm(t *testing.T) {
	fx := newFixture(t)
	d := fx.dialog
	require.NoError(t, d.Open(fx.event))
	require.NoError(t, d.Register())

	for _, phone := range []string{"1234567890", "98765", "+911234567890"} {
		require.NoError(t, d.Edit(func(f *Form) {
			fillValid(f)
			f.Phone = phone
		}))
		assert.Equal(t, validation.MsgInvalidPhoneHint, d.View().PhoneHint)

		_, err := d.Submit(t.Context())
		assert.True(t, validation.IsValidationError(err), "phone %q", phone)
		assert.Equal(t, Registering, d.View().Status)

		last, ok := fx.notes.Last()
		require.True(t, ok)
		assert.Equal(t, notify.SeverityError, last.Severity)
		assert.Equal(t, validation.MsgInvalidPhone, last.Message)
	}

	assert.Zero(t, fx.fake.Count(http.MethodPost, fx.path), "validation failures must not reach the network")
	assert.Equal(t, "Vegetarian lunch", d.View().Form.Notes, "input preserved for correction")
}

func TestSubmitRequiresNameAndEmail(t *testing.T) {
	fx := newFixture(t)
	d := fx.dialog
	require.NoError(t, d.Open(fx.event))
	require.NoError(t, d.Register())
	require.NoError(t, d.Edit(func(f *Form) {
		fillValid(f)
		f.Name = "   "
	}))

	_, err := d.Submit(t.Context())
	require.Error(t, err)
	last, _ := fx.notes.Last()
	assert.Equal(t, "Name is required", last.Message)

	require.NoError(t, d.Edit(func(f *Form) {
		fillValid(f)
		f.Email = "not-an-email"
	}))
	_, err = d.Submit(t.Context())
	require.Error(t, err)
	last, _ = fx.notes.Last()
	assert.Equal(t, "Enter a valid email address", last.Message)
	assert.Zero(t, fx.fake.Count(http.MethodPost, fx.path))
}

func TestSubmitSuccess(t *testing.T) {
	fx := newFixture(t)
	d := fx.dialog

	var mu sync.Mutex
	var seen []Status
	d.OnChange(func(v View) {
		mu.Lock()
		seen = append(seen, v.Status)
		mu.Unlock()
	})

	require.NoError(t, d.Open(fx.event))
	require.NoError(t, d.Register())
	require.NoError(t, d.Edit(fillValid))

	reg, err := d.Submit(t.Context())
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)

	v := d.View()
	assert.Equal(t, Closed, v.Status)
	assert.Nil(t, v.Form)

	last, _ := fx.notes.Last()
	assert.Equal(t, notify.Notification{Severity: notify.SeveritySuccess, Message: MsgRegistered}, last)

	reqs := fx.fake.RequestsTo(http.MethodPost, fx.path)
	require.Len(t, reqs, 1)
	var body model.RegistrationInput
	require.NoError(t, reqs[0].Decode(&body))
	assert.Equal(t, "9876543210", body.Phone, "phone is trimmed")
	assert.Equal(t, 1, body.Attendees, "non-numeric attendees coerce to 1")
	assert.Equal(t, "Vegetarian lunch", body.Notes)

	assert.Equal(t, "Meera Iyer", d.FormContents().Name, "reset is deferred")
	require.Eventually(t, func() bool {
		return d.FormContents() == DefaultForm() && d.View().Event == nil
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, seen, Submitting)
}

func TestSubmitServerFailure(t *testing.T) {
	fx := newFixture(t)
	fx.fake.Fail(http.MethodPost, "/events/{id}/registrations", http.StatusBadRequest, "Event is full")
	d := fx.dialog

	require.NoError(t, d.Open(fx.event))
	require.NoError(t, d.Register())
	require.NoError(t, d.Edit(fillValid))

	_, err := d.Submit(t.Context())
	require.Error(t, err)

	v := d.View()
	assert.Equal(t, Registering, v.Status)
	require.NotNil(t, v.Form)
	assert.Equal(t, "Meera Iyer", v.Form.Name, "form contents preserved for retry")

	last, _ := fx.notes.Last()
	assert.Equal(t, notify.Notification{Severity: notify.SeverityError, Message: "Event is full"}, last)
}

func TestCloseResetsBeforeReopen(t *testing.T) {
	fx := newFixture(t)
	d := fx.dialog
	other := model.Event{ID: "evt-other", Title: "Food drive"}

	require.NoError(t, d.Open(fx.event))
	require.NoError(t, d.Register())
	require.NoError(t, d.Edit(fillValid))

	d.Close()
	assert.Equal(t, Closed, d.View().Status)
	assert.Nil(t, d.View().Form)

	require.NoError(t, d.Open(other))
	assert.Equal(t, DefaultForm(), d.FormContents(), "reopening resets immediately")

	time.Sleep(3 * testResetDelay)
	v := d.View()
	assert.Equal(t, Detail, v.Status, "stale reset timer must not close the reopened dialog")
	require.NotNil(t, v.Event)
	assert.Equal(t, "evt-other", v.Event.ID)
}

func TestCloseDuringSubmitAbandonsResult(t *testing.T) {
	fx := newFixture(t)
	release := make(chan struct{})
	fx.fake.Intercept(http.MethodPost, "/events/{id}/registrations", func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		<-release
		next(w, r)
	})
	d := fx.dialog

	require.NoError(t, d.Open(fx.event))
	require.NoError(t, d.Register())
	require.NoError(t, d.Edit(fillValid))

	errc := make(chan error, 1)
	go func() {
		_, err := d.Submit(t.Context())
		errc <- err
	}()
	require.Eventually(t, func() bool { return d.View().Status == Submitting }, time.Second, time.Millisecond)

	d.Close()
	close(release)
	require.NoError(t, <-errc)

	assert.Equal(t, Closed, d.View().Status)
	_, ok := fx.notes.Last()
	assert.False(t, ok, "abandoned submission does not notify")
	_, err := d.Submit(t.Context())
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestFormInput(t *testing.T) {
	tests := []struct {
		attendees string
		want      int
	}{
		{"", 1},
		{"0", 1},
		{"-3", 1},
		{"2.5", 1},
		{"4", 4},
	}
	for _, tt := range tests {
		t.Run(tt.attendees, func(t *testing.T) {
			in := Form{Attendees: tt.attendees}.Input()
			assert.Equal(t, tt.want, in.Attendees)
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
