// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package suggest implements search-as-you-type suggestions. Each Field
// debounces its input, issues at most one catalog query per quiet period,
// and discards responses that arrive after a newer value was typed.
package suggest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/causeconnect/internal/model"
)

// DefaultDelay is the quiet period after the last keystroke.
const DefaultDelay = 200 * time.Millisecond

// Page sizes of the search bar suggestion queries.
const (
	TermPageSize     = 10
	LocationPageSize = 20
)

// Source runs catalog queries. *api.Client satisfies it.
type Source interface {
	ListEvents(ctx context.Context, f model.SearchFilter) (model.Page[model.Event], error)
}

// Config describes one suggestion field.
type Config struct {
	// Name labels the field in logs.
	Name string
	// Delay is the quiet period; zero means DefaultDelay.
	Delay time.Duration
	// Scope builds the catalog query for a trimmed, non-empty value.
	Scope func(value string) model.SearchFilter
	// Extract picks the suggestion text out of a matching event.
	Extract func(model.Event) string
	Logger  *slog.Logger
}

// Options are the tunables shared by the predefined fields.
type Options struct {
	Delay  time.Duration
	Logger *slog.Logger
}

// NewTermField suggests event titles for the search term input.
func NewTermField(src Source, opts Options) *Field {
	return New(src, Config{
		Name:  "term",
		Delay: opts.Delay,
		Scope: func(v string) model.SearchFilter {
			return model.SearchFilter{Term: v, Page: 1, PageSize: TermPageSize}
		},
		Extract: func(e model.Event) string { return e.Title },
		Logger:  opts.Logger,
	})
}

// NewLocationField suggests event locations for the location input.
func NewLocationField(src Source, opts Options) *Field {
	return New(src, Config{
		Name:  "location",
		Delay: opts.Delay,
		Scope: func(v string) model.SearchFilter {
			return model.SearchFilter{Location: v, Page: 1, PageSize: LocationPageSize}
		},
		Extract: func(e model.Event) string { return e.Location },
		Logger:  opts.Logger,
	})
}

// Field is the suggestion state of one input. It is safe for concurrent use.
type Field struct {
	src    Source
	cfg    Config
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	value       string
	gen         uint64
	timer       *time.Timer
	suggestions []string
	listeners   []func([]string)
	closed      bool
}

// New creates a Field from cfg.
func New(src Source, cfg Config) *Field {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Field{
		src:    src,
		cfg:    cfg,
		logger: logger.With("field", cfg.Name),
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnChange registers fn to be called with the new list whenever the
// suggestions change. fn runs on the goroutine that produced the change.
func (f *Field) OnChange(fn func([]string)) {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
}

// Set records a new raw input value. A blank value clears the suggestions
// immediately and leaves nothing pending; anything else re-arms the delay
// timer.
func (f *Field) Set(value string) {
	trimmed := strings.TrimSpace(value)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.value = value
	f.gen++
	gen := f.gen
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	if trimmed == "" {
		changed := len(f.suggestions) > 0
		f.suggestions = nil
		listeners := f.listeners
		f.mu.Unlock()
		if changed {
			notify(listeners, nil)
		}
		return
	}

	f.timer = time.AfterFunc(f.cfg.Delay, func() { f.fire(gen, trimmed) })
	f.mu.Unlock()
}

// fire runs when the quiet period of generation gen elapses.
func (f *Field) fire(gen uint64, value string) {
	f.mu.Lock()
	// A timer that could not be stopped in time still lands here.
	if f.closed || gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	f.wg.Add(1)
	f.mu.Unlock()
	defer f.wg.Done()

	list := []string{}
	page, err := f.src.ListEvents(f.ctx, f.cfg.Scope(value))
	if err != nil {
		// Suggestions are a convenience; failures never reach the user.
		f.logger.Debug("suggestion query failed", "error", err)
	} else {
		list = collect(page.Items, f.cfg.Extract)
	}

	f.mu.Lock()
	if f.closed || gen != f.gen {
		f.mu.Unlock()
		f.logger.Debug("discarding stale suggestions", "generation", gen)
		return
	}
	f.suggestions = list
	listeners := f.listeners
	f.mu.Unlock()

	notify(listeners, list)
}

// Value returns the last raw value passed to Set.
func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Suggestions returns a copy of the current suggestion list.
func (f *Field) Suggestions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.suggestions))
	copy(out, f.suggestions)
	return out
}

// Pending reports whether a delay timer is armed.
func (f *Field) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timer != nil
}

// Wait blocks until in-flight queries have finished.
func (f *Field) Wait() {
	f.wg.Wait()
}

// Close stops the pending timer and drops any in-flight result.
func (f *Field) Close() {
	f.mu.Lock()
	f.closed = true
	f.gen++
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.mu.Unlock()
	f.cancel()
}

// collect extracts suggestion strings, dropping blanks and duplicates
// while keeping first-seen order.
func collect(events []model.Event, extract func(model.Event) string) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, len(events))
	for _, e := range events {
		s := extract(e)
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func notify(listeners []func([]string), list []string) {
	for _, fn := range listeners {
		fn(list)
	}
}
