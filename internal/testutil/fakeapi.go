// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/causeconnect/internal/model"
)

// RecordedRequest is a request received by FakeAPI.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Decode unmarshals the recorded JSON body into v.
func (r RecordedRequest) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// InterceptFunc replaces a route's handler. next is the default handler,
// so an intercept can delay, fail, or wrap the normal behaviour.
type InterceptFunc func(w http.ResponseWriter, r *http.Request, next http.HandlerFunc)

// ErrorResponse is the error envelope written by FakeAPI.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type fakeAccount struct {
	user     model.User
	password string
}

// FakeAPI is an in-memory implementation of the events backend served over
// real HTTP. Events and registrations are returned with storage-style "_id"
// identifiers only, so clients must normalize them.
type FakeAPI struct {
	Server *httptest.Server
	URL    string

	mu         sync.Mutex
	seq        int
	events     []model.RawEvent
	regs       map[string][]model.RawRegistration
	accounts   map[string]*fakeAccount // by email
	tokens     map[string]model.User
	hostSince  map[string]time.Time
	requests   []RecordedRequest
	intercepts map[string]InterceptFunc
}

// NewFakeAPI starts a fake backend that is shut down when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		regs:       make(map[string][]model.RawRegistration),
		accounts:   make(map[string]*fakeAccount),
		tokens:     make(map[string]model.User),
		hostSince:  make(map[string]time.Time),
		intercepts: make(map[string]InterceptFunc),
	}

	r := chi.NewRouter()
	r.Use(f.record)

	f.route(r, http.MethodPost, "/auth/login", f.login)
	f.route(r, http.MethodPost, "/auth/signup", f.signup)
	f.route(r, http.MethodGet, "/auth/me", f.me)

	f.route(r, http.MethodGet, "/events", f.listEvents)
	f.route(r, http.MethodGet, "/events/{id}", f.getEvent)
	f.route(r, http.MethodPost, "/events/{id}/registrations", f.register)

	r.Group(func(r chi.Router) {
		r.Use(f.requireRole(model.RoleHost))
		f.route(r, http.MethodGet, "/host/events", f.hostListEvents)
		f.route(r, http.MethodPost, "/host/events", f.hostCreateEvent)
		f.route(r, http.MethodPatch, "/host/events/{id}", f.hostUpdateEvent)
		f.route(r, http.MethodDelete, "/host/events/{id}", f.hostDeleteEvent)
		f.route(r, http.MethodGet, "/host/events/{id}/registrations", f.hostListRegistrations)
	})

	r.Group(func(r chi.Router) {
		r.Use(f.requireRole(model.RoleAdmin))
		f.route(r, http.MethodGet, "/admin/stats", f.adminStats)
		f.route(r, http.MethodGet, "/admin/events", f.adminListEvents)
		f.route(r, http.MethodGet, "/admin/hosts", f.adminListHosts)
		f.route(r, http.MethodGet, "/admin/events/{id}/registrations", f.adminListRegistrations)
		f.route(r, http.MethodDelete, "/admin/events/{id}", f.adminDeleteEvent)
	})

	f.Server = httptest.NewServer(r)
	f.URL = f.Server.URL
	t.Cleanup(f.Server.Close)
	return f
}

// Intercept replaces the handler of the route registered as method and
// pattern (e.g. "GET", "/events/{id}").
func (f *FakeAPI) Intercept(method, pattern string, fn InterceptFunc) {
	f.mu.Lock()
	f.intercepts[method+" "+pattern] = fn
	f.mu.Unlock()
}

// Fail makes a route respond with status and message in the standard
// error envelope.
func (f *FakeAPI) Fail(method, pattern string, status int, message string) {
	f.Intercept(method, pattern, func(w http.ResponseWriter, _ *http.Request, _ http.HandlerFunc) {
		WriteError(w, status, message)
	})
}

// Reset removes the intercept of a route.
func (f *FakeAPI) Reset(method, pattern string) {
	f.mu.Lock()
	delete(f.intercepts, method+" "+pattern)
	f.mu.Unlock()
}

// AddEvent stores an event and returns its identifier. A blank identifier
// is assigned.
func (f *FakeAPI) AddEvent(e model.Event) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := e.ID
	if id == "" {
		id = f.nextID("evt")
	}
	e.ID = ""
	if e.Status == "" {
		e.Status = model.EventStatusPublished
	}
	f.events = append(f.events, model.RawEvent{AltID: id, Event: e})
	return id
}

// AddUser creates an account and returns a bearer token that is already
// signed in as that user.
func (f *FakeAPI) AddUser(u model.User, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u.ID == "" {
		u.ID = f.nextID("usr")
	}
	f.accounts[strings.ToLower(u.Email)] = &fakeAccount{user: u, password: password}
	if u.Role == model.RoleHost {
		f.hostSince[u.ID] = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	token := "token-" + u.ID
	f.tokens[token] = u
	return token
}

// Events returns the stored events in order, normalized.
func (f *FakeAPI) Events() []model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.NormalizeEvents(f.events)
}

// Registrations returns the stored registrations of an event.
func (f *FakeAPI) Registrations(eventID string) []model.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.NormalizeRegistrations(f.regs[eventID])
}

// Requests returns every recorded request in arrival order.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

// RequestsTo returns the recorded requests with the given method and path.
func (f *FakeAPI) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests were made with method and path.
func (f *FakeAPI) Count(method, path string) int {
	return len(f.RequestsTo(method, path))
}

func (f *FakeAPI) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *FakeAPI) route(r chi.Router, method, pattern string, h http.HandlerFunc) {
	key := method + " " + pattern
	r.MethodFunc(method, pattern, func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		fn := f.intercepts[key]
		f.mu.Unlock()
		if fn != nil {
			fn(w, req, h)
			return
		}
		h(w, req)
	})
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type userKey struct{}

func (f *FakeAPI) bearer(r *http.Request) (model.User, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return model.User{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.tokens[token]
	return u, ok
}

func (f *FakeAPI) requireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := f.bearer(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if u.Role != role {
				WriteError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r, u)))
		})
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{
		Code:    strings.ToLower(strings.ReplaceAll(http.StatusText(statusCode), " ", "_")),
		Message: message,
	}})
}

func pageWindow(q url.Values, defaultSize int) (page, size int) {
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(q.Get("pageSize"))
	if size < 1 {
		size = defaultSize
	}
	return page, size
}

func paginate[T any](items []T, page, size int) model.Page[T] {
	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	return model.Page[T]{
		Items:    slices.Clone(items[start:end]),
		Total:    len(items),
		Page:     page,
		PageSize: size,
	}
}
