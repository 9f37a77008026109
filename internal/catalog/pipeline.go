// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog turns a mutable search filter into a paginated event list.
// Every filter change issues exactly one query; a query superseded by a
// newer one, or outliving its Pipeline, has its result dropped.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/olegiv/causeconnect/internal/api"
	"github.com/olegiv/causeconnect/internal/cancel"
	"github.com/olegiv/causeconnect/internal/model"
)

// DefaultPageSize is the page size of the search results view.
const DefaultPageSize = 12

// MsgLoadFailed is shown when a failure carries no message of its own.
const MsgLoadFailed = "Failed to load events"

// Source runs catalog queries. *api.Client satisfies it.
type Source interface {
	ListEvents(ctx context.Context, f model.SearchFilter) (model.Page[model.Event], error)
}

// State is a snapshot of the pipeline's observable state.
type State struct {
	Filter   model.SearchFilter
	Items    []model.Event
	Total    int
	Page     int
	PageSize int
	Loading  bool
	Err      string
}

// Empty reports whether a finished query matched nothing.
func (s State) Empty() bool {
	return !s.Loading && s.Err == "" && len(s.Items) == 0
}

// Options configures a Pipeline.
type Options struct {
	// PageSize applies when the filter sets none; zero means DefaultPageSize.
	PageSize int
	Logger   *slog.Logger
}

// Pipeline owns one filter set and its result list. It is safe for
// concurrent use.
type Pipeline struct {
	src      Source
	pageSize int
	logger   *slog.Logger
	ctx      context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	filter    model.SearchFilter
	state     State
	current   *cancel.Token
	listeners []func(State)
	closed    bool
}

// New creates a Pipeline. No query runs until the filter is set or
// Refresh is called.
func New(src Source, opts Options) *Pipeline {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Pipeline{
		src:      src,
		pageSize: size,
		logger:   logger,
		ctx:      ctx,
		stop:     stop,
		state:    State{Items: []model.Event{}},
	}
}

// OnChange registers fn to receive every new state snapshot.
func (p *Pipeline) OnChange(fn func(State)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// SetFilter replaces the whole filter set and queries.
func (p *Pipeline) SetFilter(f model.SearchFilter) {
	p.Update(func(cur *model.SearchFilter) { *cur = f })
}

// Update edits the filter set in place and queries.
func (p *Pipeline) Update(edit func(*model.SearchFilter)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	edit(&p.filter)
	p.startLocked()
}

// SetPage moves to page n of the current filter.
func (p *Pipeline) SetPage(n int) {
	p.Update(func(f *model.SearchFilter) { f.Page = n })
}

// Refresh re-runs the current filter.
func (p *Pipeline) Refresh() {
	p.Update(func(*model.SearchFilter) {})
}

// startLocked supersedes any in-flight query and issues a new one. It is
// called with p.mu held and releases it.
func (p *Pipeline) startLocked() {
	if p.current != nil {
		p.current.Cancel()
	}
	tok := cancel.New()
	p.current = tok

	f := p.filter.Trimmed()
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = p.pageSize
	}
	if f.Sort == "" {
		f.Sort = model.DefaultSort
	}

	p.state.Filter = f
	p.state.Loading = true
	p.state.Err = ""
	snap, listeners := p.snapshotLocked()
	p.wg.Add(1)
	p.mu.Unlock()

	notify(listeners, snap)
	go p.run(tok, f)
}

func (p *Pipeline) run(tok *cancel.Token, f model.SearchFilter) {
	defer p.wg.Done()

	page, err := p.src.ListEvents(p.ctx, f)

	p.mu.Lock()
	if tok.Cancelled() {
		p.mu.Unlock()
		p.logger.Debug("discarding superseded catalog result", "term", f.Term, "page", f.Page)
		return
	}
	if err != nil {
		// Previous items stay visible.
		p.state.Err = api.Message(err, MsgLoadFailed)
		p.logger.Warn("catalog query failed", "error", err)
	} else {
		p.state.Items = page.Items
		if p.state.Items == nil {
			p.state.Items = []model.Event{}
		}
		p.state.Total = page.Total
		p.state.Page = page.Page
		p.state.PageSize = page.PageSize
		if p.state.Page == 0 {
			p.state.Page = f.Page
		}
		if p.state.PageSize == 0 {
			p.state.PageSize = f.PageSize
		}
	}
	p.state.Loading = false
	snap, listeners := p.snapshotLocked()
	p.mu.Unlock()

	notify(listeners, snap)
}

// State returns the current snapshot.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, _ := p.snapshotLocked()
	return snap
}

// Filter returns the current, untrimmed filter set.
func (p *Pipeline) Filter() model.SearchFilter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// Wait blocks until every issued query has returned.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Close tears the pipeline down. Results still in flight are dropped.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	if p.current != nil {
		p.current.Cancel()
	}
	p.mu.Unlock()
	p.stop()
}

func (p *Pipeline) snapshotLocked() (State, []func(State)) {
	snap := p.state
	snap.Items = slices.Clone(p.state.Items)
	return snap, p.listeners
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
