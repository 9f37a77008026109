// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/causeconnect/internal/cache"
	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/testutil"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, baseURL string, tokens TokenSource) *Client {
	t.Helper()
	c, err := New(Options{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Tokens:  tokens,
		Logger:  testutil.TestLoggerSilent(),
	})
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:4000", "/relative"} {
		_, err := New(Options{BaseURL: raw})
		assert.Error(t, err, "base URL %q", raw)
	}
}

func TestListEventsQueryAndNormalization(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	id := fake.AddEvent(model.Event{
		Title:    "Beach cleanup",
		Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Tag:      "environment",
		Location: "Mumbai",
	})
	fake.AddEvent(model.Event{Title: "Food drive", Location: "Pune"})

	c := newTestClient(t, fake.URL, nil)
	page, err := c.ListEvents(t.Context(), model.SearchFilter{
		Term:     "  beach ",
		Location: "Mumbai",
		PageSize: 12,
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, id, page.Items[0].ID)
	assert.Equal(t, "Beach cleanup", page.Items[0].Title)
	assert.Equal(t, 1, page.Total)

	reqs := fake.RequestsTo(http.MethodGet, "/events")
	require.Len(t, reqs, 1)
	q := reqs[0].Query
	assert.Equal(t, "beach", q.Get("term"))
	assert.Equal(t, "Mumbai", q.Get("location"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "12", q.Get("pageSize"))
	assert.Equal(t, model.DefaultSort, q.Get("sort"))
	assert.False(t, q.Has("tag"), "empty tag should be omitted")

	_, err = uuid.Parse(reqs[0].Header.Get(RequestIDHeader))
	assert.NoError(t, err, "request id header should be a UUID")
	assert.Empty(t, reqs[0].Header.Get("Authorization"), "public endpoint must not send credentials")
}

func TestListEventsMissingItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total":0}`))
	}))
	defer srv.Close()

	page, err := newTestClient(t, srv.URL, nil).ListEvents(t.Context(), model.SearchFilter{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestListEventsLenientTimes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[` +
			`{"_id":"a","title":"Beach cleanup","date":"2025-06-01","startTime":""},` +
			`{"_id":"b","title":"Food drive","date":"2025-06-02T09:30:00Z","startTime":null,"endTime":"soon"}` +
			`],"total":2}`))
	}))
	defer srv.Close()

	page, err := newTestClient(t, srv.URL, nil).ListEvents(t.Context(), model.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	first := page.Items[0]
	assert.Equal(t, "a", first.ID)
	assert.True(t, first.Date.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), "date = %v", first.Date)
	assert.True(t, first.StartTime.IsZero())

	second := page.Items[1]
	assert.Equal(t, "b", second.ID)
	assert.True(t, second.Date.Equal(time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)))
	assert.True(t, second.StartTime.IsZero())
	assert.True(t, second.EndTime.IsZero())
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"nested error message", http.StatusBadRequest, `{"error":{"message":"Event is full"}}`, "Event is full"},
		{"top-level message", http.StatusConflict, `{"message":"Email already registered"}`, "Email already registered"},
		{"nested wins over top-level", http.StatusBadRequest, `{"error":{"message":"nested"},"message":"top"}`, "nested"},
		{"empty body falls back to status text", http.StatusNotFound, ``, "Not Found"},
		{"non-JSON body falls back to status text", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
		{"empty nested message uses top-level", http.StatusBadRequest, `{"error":{"message":""},"message":"top"}`, "top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, nil).GetEvent(t.Context(), "e1")
			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.want, reqErr.Message)
			assert.Equal(t, tt.want, Message(err, "Failed to load event"))
		})
	}
}

func TestTransportErrors(t *testing.T) {
	t.Run("malformed JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"items":[`))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL, nil).ListEvents(t.Context(), model.SearchFilter{})
		var tErr *TransportError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, "Failed to load events", Message(err, "Failed to load events"))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newTestClient(t, url, nil).AdminStats(t.Context())
		var tErr *TransportError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, GenericMessage, Message(err, ""))
	})
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil, "x"))
	assert.Equal(t, "boom", Message(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", Message(&RequestError{Status: 500}, "fallback"))
	assert.True(t, IsStatus(&RequestError{Status: 404, Message: "nope"}, http.StatusNotFound))
	assert.False(t, IsStatus(errors.New("nope"), http.StatusNotFound))
}

func TestAuthHeader(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	token := fake.AddUser(model.User{Name: "Asha", Email: "asha@example.org", Role: model.RoleHost}, "secret")

	c := newTestClient(t, fake.URL, staticToken(token))
	_, err := c.HostListEvents(t.Context(), model.PageParams{PageSize: 12})
	require.NoError(t, err)

	reqs := fake.RequestsTo(http.MethodGet, "/host/events")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+token, reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "12", reqs[0].Query.Get("pageSize"))

	anon := newTestClient(t, fake.URL, staticToken(""))
	_, err = anon.HostListEvents(t.Context(), model.PageParams{})
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Unauthorized", Message(err, "Failed to load events"))
}

func TestLoginSignupMe(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser(model.User{Name: "Asha", Email: "asha@example.org", Role: model.RoleHost}, "secret")
	c := newTestClient(t, fake.URL, nil)
	ctx := t.Context()

	auth, err := c.Login(ctx, model.Credentials{Email: "asha@example.org", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.NotEmpty(t, auth.User.ID, "storage id should be folded into ID")
	assert.Equal(t, model.RoleHost, auth.User.Role)

	_, err = c.Login(ctx, model.Credentials{Email: "asha@example.org", Password: "wrong"})
	assert.Equal(t, "Invalid email or password", Message(err, "Login failed"))

	created, err := c.Signup(ctx, model.SignupInput{Name: "Ravi", Email: "ravi@example.org", Password: "pw", Role: model.RoleHost})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", created.User.Name)

	_, err = c.Signup(ctx, model.SignupInput{Name: "Ravi", Email: "ravi@example.org", Password: "pw"})
	assert.Equal(t, "Email already registered", Message(err, "Signup failed"))

	me, err := newTestClient(t, fake.URL, staticToken(created.Token)).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.User, me)
}

func TestRegisterAndEventCache(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	id := fake.AddEvent(model.Event{Title: "Tree planting"})

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = mem.Close() }()

	c, err := New(Options{BaseURL: fake.URL, EventCache: mem, CacheTTL: time.Minute, Logger: testutil.TestLoggerSilent()})
	require.NoError(t, err)
	ctx := context.Background()

	e, err := c.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	_, err = c.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Count(http.MethodGet, "/events/"+id), "second lookup should be cached")

	reg, err := c.Register(ctx, id, model.RegistrationInput{
		Name: "Meera", Email: "meera@example.org", Phone: "9876543210", Attendees: 2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, id, reg.EventID)
	assert.Equal(t, 2, reg.Attendees)

	e, err = c.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, e.RegistrationsCount, "registration should invalidate the cached detail")
	assert.Equal(t, 2, fake.Count(http.MethodGet, "/events/"+id))
}

func TestGetEventNotFoundIsNotCached(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	defer func() { _ = mem.Close() }()

	c, err := New(Options{BaseURL: fake.URL, EventCache: mem, Logger: testutil.TestLoggerSilent()})
	require.NoError(t, err)

	for range 2 {
		_, err = c.GetEvent(t.Context(), "missing")
		assert.Equal(t, "Event not found", Message(err, ""))
	}
	assert.Equal(t, 2, fake.Count(http.MethodGet, "/events/missing"))
}

func TestHostLifecycle(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	token := fake.AddUser(model.User{Name: "Asha", Email: "asha@example.org", Role: model.RoleHost}, "pw")
	c := newTestClient(t, fake.URL, staticToken(token))
	ctx := t.Context()

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	created, err := c.HostCreateEvent(ctx, model.EventInput{
		Title:       "Beach cleanup",
		Date:        day,
		StartTime:   day.Add(14 * time.Hour),
		EndTime:     day.Add(16 * time.Hour),
		Tag:         "environment",
		Location:    "Juhu",
		Description: "Bring gloves",
		Status:      model.EventStatusPublished,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	var body map[string]any
	require.NoError(t, fake.RequestsTo(http.MethodPost, "/host/events")[0].Decode(&body))
	assert.NotContains(t, body, "image", "empty image must be omitted")
	assert.Equal(t, "published", body["status"])

	title := "Beach cleanup (extended)"
	updated, err := c.HostUpdateEvent(ctx, created.ID, model.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "Juhu", updated.Location)

	list, err := c.HostListEvents(ctx, model.PageParams{PageSize: 12})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	regs, err := c.HostListRegistrations(ctx, created.ID, model.PageParams{PageSize: 50})
	require.NoError(t, err)
	assert.Empty(t, regs.Items)

	require.NoError(t, c.HostDeleteEvent(ctx, created.ID))
	err = c.HostDeleteEvent(ctx, created.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestAdminEndpoints(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	admin := fake.AddUser(model.User{Name: "Root", Email: "root@example.org", Role: model.RoleAdmin}, "pw")
	fake.AddUser(model.User{Name: "Asha", Email: "asha@example.org", Role: model.RoleHost}, "pw")
	id := fake.AddEvent(model.Event{Title: "Food drive"})

	c := newTestClient(t, fake.URL, staticToken(admin))
	ctx := t.Context()

	stats, err := c.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Events)
	assert.Equal(t, 1, stats.Hosts)

	events, err := c.AdminListEvents(ctx, model.PageParams{PageSize: 50})
	require.NoError(t, err)
	require.Len(t, events.Items, 1)
	assert.Equal(t, id, events.Items[0].ID)

	hosts, err := c.AdminListHosts(ctx, model.PageParams{PageSize: 50})
	require.NoError(t, err)
	require.Len(t, hosts.Items, 1)
	assert.NotEmpty(t, hosts.Items[0].ID)

	regs, err := c.AdminListRegistrations(ctx, id, model.PageParams{PageSize: 50})
	require.NoError(t, err)
	assert.Empty(t, regs.Items)

	require.NoError(t, c.AdminDeleteEvent(ctx, id))
	assert.Empty(t, fake.Events())

	hostClient := newTestClient(t, fake.URL, staticToken("token-nobody"))
	_, err = hostClient.AdminStats(ctx)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestRateLimit(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	c, err := New(Options{BaseURL: fake.URL, RateLimit: 1, Logger: testutil.TestLoggerSilent()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err = c.ListEvents(ctx, model.SearchFilter{})
	require.NoError(t, err, "first request uses the burst")
	_, err = c.ListEvents(ctx, model.SearchFilter{})
	var tErr *TransportError
	assert.ErrorAs(t, err, &tErr, "second request should exceed the deadline while waiting")
}
