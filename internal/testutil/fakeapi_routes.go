// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/causeconnect/internal/model"
)

func withUser(r *http.Request, u model.User) context.Context {
	return context.WithValue(r.Context(), userKey{}, u)
}

func userFrom(r *http.Request) model.User {
	u, _ := r.Context().Value(userKey{}).(model.User)
	return u
}

type wireUser struct {
	AltID string     `json:"_id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func toWire(u model.User) wireUser {
	return wireUser{AltID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	f.mu.Lock()
	acct, ok := f.accounts[strings.ToLower(creds.Email)]
	f.mu.Unlock()
	if !ok || acct.password != creds.Password {
		WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"token": "token-" + acct.user.ID,
		"user":  toWire(acct.user),
	})
}

func (f *FakeAPI) signup(w http.ResponseWriter, r *http.Request) {
	var in model.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Email == "" || in.Password == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "Email and password are required"})
		return
	}

	f.mu.Lock()
	_, exists := f.accounts[strings.ToLower(in.Email)]
	f.mu.Unlock()
	if exists {
		WriteJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
		return
	}
	role := in.Role
	if role == "" {
		role = model.RoleVolunteer
	}
	u := model.User{Name: in.Name, Email: in.Email, Role: role}
	token := f.AddUser(u, in.Password)

	f.mu.Lock()
	u = f.tokens[token]
	f.mu.Unlock()
	WriteJSON(w, http.StatusCreated, map[string]any{"token": token, "user": toWire(u)})
}

func (f *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	u, ok := f.bearer(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"user": toWire(u)})
}

func matchEvent(e model.RawEvent, q map[string]string) bool {
	if t := strings.ToLower(q["term"]); t != "" &&
		!strings.Contains(strings.ToLower(e.Title), t) &&
		!strings.Contains(strings.ToLower(e.Description), t) {
		return false
	}
	if l := strings.ToLower(q["location"]); l != "" && !strings.Contains(strings.ToLower(e.Location), l) {
		return false
	}
	if tag := q["tag"]; tag != "" && !strings.EqualFold(e.Tag, tag) {
		return false
	}
	if from, err := time.Parse(time.DateOnly, q["dateFrom"]); err == nil && e.Date.Before(from) {
		return false
	}
	if to, err := time.Parse(time.DateOnly, q["dateTo"]); err == nil && e.Date.After(to.Add(24*time.Hour-time.Nanosecond)) {
		return false
	}
	return e.Status != model.EventStatusDraft
}

func (f *FakeAPI) listEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := map[string]string{}
	for _, k := range []string{"term", "location", "tag", "dateFrom", "dateTo"} {
		q[k] = strings.TrimSpace(query.Get(k))
	}

	f.mu.Lock()
	var matched []model.RawEvent
	for _, e := range f.events {
		if matchEvent(e, q) {
			matched = append(matched, e)
		}
	}
	f.mu.Unlock()

	desc := query.Get("sort") == "date:desc"
	slices.SortStableFunc(matched, func(a, b model.RawEvent) int {
		if desc {
			return b.Date.Compare(a.Date)
		}
		return a.Date.Compare(b.Date)
	})

	page, size := pageWindow(query, 12)
	WriteJSON(w, http.StatusOK, paginate(matched, page, size))
}

// findEvent returns the index of an event. Callers hold f.mu.
func (f *FakeAPI) findEvent(id string) int {
	return slices.IndexFunc(f.events, func(e model.RawEvent) bool { return e.AltID == id })
}

func (f *FakeAPI) getEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	i := f.findEvent(id)
	var e model.RawEvent
	if i >= 0 {
		e = f.events[i]
	}
	f.mu.Unlock()

	if i < 0 {
		WriteError(w, http.StatusNotFound, "Event not found")
		return
	}
	WriteJSON(w, http.StatusOK, e)
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in model.RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name == "" || in.Email == "" || in.Phone == "" {
		WriteError(w, http.StatusBadRequest, "Name, email and phone are required")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findEvent(id)
	if i < 0 {
		WriteError(w, http.StatusNotFound, "Event not found")
		return
	}
	reg := model.RawRegistration{AltID: f.nextID("reg"), Registration: model.Registration{
		EventID:   id,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Attendees: in.Attendees,
		Notes:     in.Notes,
		CreatedAt: time.Now().UTC(),
	}}
	f.regs[id] = append(f.regs[id], reg)
	f.events[i].RegistrationsCount++
	WriteJSON(w, http.StatusCreated, reg)
}

func (f *FakeAPI) hostListEvents(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	f.mu.Lock()
	var own []model.RawEvent
	for _, e := range f.events {
		if e.HostID == u.ID {
			own = append(own, e)
		}
	}
	f.mu.Unlock()

	page, size := pageWindow(r.URL.Query(), 12)
	WriteJSON(w, http.StatusOK, paginate(own, page, size))
}

func (f *FakeAPI) hostCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in model.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Title == "" || in.StartTime.IsZero() || in.EndTime.IsZero() {
		WriteError(w, http.StatusBadRequest, "Title, startTime and endTime are required")
		return
	}
	if !in.EndTime.After(in.StartTime) {
		WriteError(w, http.StatusBadRequest, "endTime must be after startTime")
		return
	}

	f.mu.Lock()
	e := model.RawEvent{AltID: f.nextID("evt"), Event: model.Event{
		Title:       in.Title,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Tag:         in.Tag,
		Location:    in.Location,
		Description: in.Description,
		Image:       in.Image,
		Status:      in.Status,
		HostID:      userFrom(r).ID,
	}}
	f.events = append([]model.RawEvent{e}, f.events...)
	f.mu.Unlock()

	WriteJSON(w, http.StatusCreated, e)
}

// ownEvent resolves the {id} of a host route, writing 404 when the event
// does not exist or belongs to another host. Callers hold f.mu.
func (f *FakeAPI) ownEvent(w http.ResponseWriter, r *http.Request) int {
	i := f.findEvent(chi.URLParam(r, "id"))
	if i < 0 || f.events[i].HostID != userFrom(r).ID {
		WriteError(w, http.StatusNotFound, "Event not found")
		return -1
	}
	return i
}

func (f *FakeAPI) hostUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var p model.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.ownEvent(w, r)
	if i < 0 {
		return
	}
	e := &f.events[i].Event
	setIf(&e.Title, p.Title)
	setIf(&e.Date, p.Date)
	setIf(&e.StartTime, p.StartTime)
	setIf(&e.EndTime, p.EndTime)
	setIf(&e.Tag, p.Tag)
	setIf(&e.Location, p.Location)
	setIf(&e.Description, p.Description)
	setIf(&e.Image, p.Image)
	setIf(&e.Status, p.Status)
	WriteJSON(w, http.StatusOK, f.events[i])
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (f *FakeAPI) hostDeleteEvent(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.ownEvent(w, r)
	if i < 0 {
		return
	}
	f.deleteAt(i)
	w.WriteHeader(http.StatusNoContent)
}

// deleteAt removes an event and its registrations. Callers hold f.mu.
func (f *FakeAPI) deleteAt(i int) {
	delete(f.regs, f.events[i].AltID)
	f.events = slices.Delete(f.events, i, i+1)
}

func (f *FakeAPI) hostListRegistrations(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	i := f.ownEvent(w, r)
	var regs []model.RawRegistration
	if i >= 0 {
		regs = slices.Clone(f.regs[f.events[i].AltID])
	}
	f.mu.Unlock()
	if i < 0 {
		return
	}

	page, size := pageWindow(r.URL.Query(), 12)
	WriteJSON(w, http.StatusOK, paginate(regs, page, size))
}

func (f *FakeAPI) adminStats(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var s model.Stats
	s.Events = len(f.events)
	for _, e := range f.events {
		if e.Status == model.EventStatusPublished {
			s.Published++
		}
	}
	for _, a := range f.accounts {
		switch a.user.Role {
		case model.RoleHost:
			s.Hosts++
		case model.RoleVolunteer:
			s.Volunteers++
		}
	}
	for _, regs := range f.regs {
		s.Registrations += len(regs)
	}
	WriteJSON(w, http.StatusOK, s)
}

func (f *FakeAPI) adminListEvents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	all := slices.Clone(f.events)
	f.mu.Unlock()

	page, size := pageWindow(r.URL.Query(), 50)
	WriteJSON(w, http.StatusOK, paginate(all, page, size))
}

func (f *FakeAPI) adminListHosts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	var hosts []model.RawHost
	for _, a := range f.accounts {
		if a.user.Role != model.RoleHost {
			continue
		}
		count := 0
		for _, e := range f.events {
			if e.HostID == a.user.ID {
				count++
			}
		}
		hosts = append(hosts, model.RawHost{AltID: a.user.ID, Host: model.Host{
			Name:       a.user.Name,
			Email:      a.user.Email,
			EventCount: count,
			CreatedAt:  f.hostSince[a.user.ID],
		}})
	}
	f.mu.Unlock()

	slices.SortFunc(hosts, func(a, b model.RawHost) int { return strings.Compare(a.Email, b.Email) })
	page, size := pageWindow(r.URL.Query(), 50)
	WriteJSON(w, http.StatusOK, paginate(hosts, page, size))
}

func (f *FakeAPI) adminListRegistrations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	i := f.findEvent(id)
	regs := slices.Clone(f.regs[id])
	f.mu.Unlock()

	if i < 0 {
		WriteError(w, http.StatusNotFound, "Event not found")
		return
	}
	page, size := pageWindow(r.URL.Query(), 50)
	WriteJSON(w, http.StatusOK, paginate(regs, page, size))
}

func (f *FakeAPI) adminDeleteEvent(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findEvent(chi.URLParam(r, "id"))
	if i < 0 {
		WriteError(w, http.StatusNotFound, "Event not found")
		return
	}
	f.deleteAt(i)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
