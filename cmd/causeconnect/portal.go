// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"

	"github.com/olegiv/causeconnect/internal/admin"
	"github.com/olegiv/causeconnect/internal/host"
	"github.com/olegiv/causeconnect/internal/model"
)

func (a *app) cmdHost(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("usage: host list|create|delete ID|members ID\n")
		return errUsage
	}

	d := host.NewDashboard(a.client, a.sess, host.Options{
		Location: a.cfg.Location(),
		Notifier: a.notes,
		Logger:   a.logger,
	})
	defer d.Close()
	if err := d.Enter(ctx); err != nil {
		return sessionFailure(err, model.RoleHost)
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		if err := parse(newFlagSet("host list", a.out), rest, 0); err != nil {
			return err
		}
		if err := d.Load(ctx); err != nil {
			return failure(err, host.MsgLoadFailed)
		}
		events := d.State().Events
		if len(events) == 0 {
			a.printf("You have not created any events yet\n")
			return nil
		}
		a.renderEvents(events)
		a.printf("\n%d events, %d registrations\n", len(events), d.TotalRegistrations())
		return nil

	case "create":
		return a.hostCreate(ctx, d, rest)

	case "delete":
		fs := newFlagSet("host delete", a.out)
		if err := parse(fs, rest, 1); err != nil {
			return err
		}
		if err := d.Delete(ctx, fs.Arg(0)); err != nil {
			return errReported
		}
		return nil

	case "members":
		fs := newFlagSet("host members", a.out)
		if err := parse(fs, rest, 1); err != nil {
			return err
		}
		regs, err := d.Members(ctx, fs.Arg(0))
		if err != nil {
			return failure(err, host.MsgMembersFailed)
		}
		a.renderRegistrations(regs)
		return nil
	}

	a.printf("unknown host command %q\n", sub)
	return errUsage
}

// hostCreate fills the composer field by field in focus order, then submits.
func (a *app) hostCreate(ctx context.Context, d *host.Dashboard, args []string) error {
	fs := newFlagSet("host create", a.out)
	usage := map[host.Field]string{
		host.FieldTitle:       "Event title",
		host.FieldStartTime:   "Start time (HH:MM)",
		host.FieldEndTime:     "End time (HH:MM)",
		host.FieldDate:        "Calendar day (YYYY-MM-DD)",
		host.FieldTag:         "Category tag",
		host.FieldLocation:    "Venue",
		host.FieldImage:       "Image URL (optional)",
		host.FieldDescription: "Description",
	}
	c := d.Composer()
	values := make(map[host.Field]*string)
	for _, f := range c.Focus().Fields() {
		values[f.ID] = fs.String(string(f.ID), "", usage[f.ID])
	}
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	for _, f := range c.Focus().Fields() {
		if err := c.Set(f.ID, *values[f.ID]); err != nil {
			return err
		}
	}

	e, err := d.Create(ctx)
	if err != nil {
		return errReported
	}
	a.printf("Created %s\n", e.ID)
	return nil
}

func (a *app) cmdAdmin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("usage: admin stats|events|hosts|registrations ID|delete ID\n")
		return errUsage
	}

	d := admin.NewDashboard(a.client, a.sess, admin.Options{Notifier: a.notes, Logger: a.logger})
	defer d.Close()
	if err := d.Enter(ctx); err != nil {
		return sessionFailure(err, model.RoleAdmin)
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "stats", "events", "hosts":
		if err := parse(newFlagSet("admin "+sub, a.out), rest, 0); err != nil {
			return err
		}
		if err := d.Load(ctx); err != nil {
			return failure(err, admin.MsgLoadFailed)
		}
		st := d.State()
		switch sub {
		case "stats":
			a.renderStats(*st.Stats)
		case "events":
			a.renderEvents(st.Events)
		default:
			a.renderHosts(st.Hosts)
		}
		return nil

	case "registrations":
		fs := newFlagSet("admin registrations", a.out)
		if err := parse(fs, rest, 1); err != nil {
			return err
		}
		regs, err := d.Registrations(ctx, fs.Arg(0))
		if err != nil {
			return failure(err, host.MsgMembersFailed)
		}
		a.renderRegistrations(regs)
		return nil

	case "delete":
		fs := newFlagSet("admin delete", a.out)
		if err := parse(fs, rest, 1); err != nil {
			return err
		}
		if err := d.Delete(ctx, fs.Arg(0)); err != nil {
			return errReported
		}
		if st := d.State(); st.Stats != nil {
			a.printf("%d events remain\n", st.Stats.Events)
		}
		return nil
	}

	a.printf("unknown admin command %q\n", sub)
	return errUsage
}
