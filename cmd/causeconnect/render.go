// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"html"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/causeconnect/internal/model"
)

// strict removes all markup from server-provided text before it reaches
// the terminal.
var strict = bluemonday.StrictPolicy()

func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

const (
	dayLayout   = "Mon 02 Jan 2006"
	clockLayout = "15:04"
)

func (a *app) table(header string, rows func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, header)
	rows(w)
	_ = w.Flush()
}

func (a *app) renderEvents(events []model.Event) {
	loc := a.cfg.Location()
	a.table("ID\tTITLE\tDATE\tTIME\tTAG\tLOCATION\tREGISTERED", func(w *tabwriter.Writer) {
		for _, e := range events {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s-%s\t%s\t%s\t%d\n",
				e.ID, sanitize(e.Title), e.Date.In(loc).Format(dayLayout),
				e.StartTime.In(loc).Format(clockLayout), e.EndTime.In(loc).Format(clockLayout),
				sanitize(e.Tag), sanitize(e.Location), e.RegistrationsCount)
		}
	})
}

func (a *app) renderEvent(e model.Event) {
	loc := a.cfg.Location()
	a.printf("%s\n", sanitize(e.Title))
	a.printf("  When:   %s, %s-%s\n", e.Date.In(loc).Format(dayLayout),
		e.StartTime.In(loc).Format(clockLayout), e.EndTime.In(loc).Format(clockLayout))
	a.printf("  Where:  %s\n", sanitize(e.Location))
	a.printf("  Tag:    %s\n", sanitize(e.Tag))
	a.printf("  Going:  %d\n", e.RegistrationsCount)
	if e.Image != "" {
		a.printf("  Image:  %s\n", e.Image)
	}
	a.printf("\n%s\n", sanitize(e.Description))
}

func (a *app) renderRegistrations(regs []model.Registration) {
	if len(regs) == 0 {
		a.printf("No registrations yet\n")
		return
	}
	total := 0
	a.table("NAME\tEMAIL\tPHONE\tATTENDEES\tREGISTERED", func(w *tabwriter.Writer) {
		for _, r := range regs {
			total += r.Attendees
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				sanitize(r.Name), r.Email, r.Phone, r.Attendees, r.CreatedAt.Local().Format(time.DateTime))
		}
	})
	a.printf("\n%d registrations, %d attendees\n", len(regs), total)
}

func (a *app) renderHosts(hosts []model.Host) {
	a.table("ID\tNAME\tEMAIL\tEVENTS\tSINCE", func(w *tabwriter.Writer) {
		for _, h := range hosts {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				h.ID, sanitize(h.Name), h.Email, h.EventCount, h.CreatedAt.Local().Format(time.DateOnly))
		}
	})
}

func (a *app) renderStats(s model.Stats) {
	a.table("METRIC\tVALUE", func(w *tabwriter.Writer) {
		_, _ = fmt.Fprintf(w, "Events\t%d\n", s.Events)
		_, _ = fmt.Fprintf(w, "Published\t%d\n", s.Published)
		_, _ = fmt.Fprintf(w, "Hosts\t%d\n", s.Hosts)
		_, _ = fmt.Fprintf(w, "Volunteers\t%d\n", s.Volunteers)
		_, _ = fmt.Fprintf(w, "Registrations\t%d\n", s.Registrations)
	})
}
