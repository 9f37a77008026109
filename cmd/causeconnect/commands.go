// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/causeconnect/internal/api"
	"github.com/olegiv/causeconnect/internal/auth"
	"github.com/olegiv/causeconnect/internal/catalog"
	"github.com/olegiv/causeconnect/internal/config"
	"github.com/olegiv/causeconnect/internal/host"
	"github.com/olegiv/causeconnect/internal/model"
	"github.com/olegiv/causeconnect/internal/notify"
	"github.com/olegiv/causeconnect/internal/registration"
	"github.com/olegiv/causeconnect/internal/session"
	"github.com/olegiv/causeconnect/internal/suggest"
)

// MsgEventFailed is shown when an event cannot be fetched.
const MsgEventFailed = "Failed to load event"

var (
	// errUsage reports bad arguments; the usage text has been printed.
	errUsage = errors.New("usage error")
	// errReported is a failure already shown to the user as a notification.
	errReported = errors.New("failure reported")
)

// app carries the wired dependencies shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	sess   *session.Store
	client *api.Client
	auth   *auth.Service
	notes  notify.Notifier
	out    io.Writer
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = []command{
	{"login", "login -email E -password P [-admin]", "Sign in to the host or admin portal", (*app).cmdLogin},
	{"signup", "signup -name N -email E -password P", "Create a host account", (*app).cmdSignup},
	{"logout", "logout", "Sign out", (*app).cmdLogout},
	{"whoami", "whoami", "Show the signed-in account", (*app).cmdWhoami},
	{"suggest", "suggest [-location] TEXT", "Search-as-you-type suggestions", (*app).cmdSuggest},
	{"events", "events [-term T] [-location L] [-tag T] ...", "Search published events", (*app).cmdEvents},
	{"event", "event ID", "Show one event", (*app).cmdEvent},
	{"register", "register ID -name N -email E -phone P ...", "Register for an event", (*app).cmdRegister},
	{"host", "host list|create|delete|members", "Manage your own events", (*app).cmdHost},
	{"admin", "admin stats|events|hosts|registrations|delete", "Platform administration", (*app).cmdAdmin},
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, ctx, args[1:])
		}
	}
	_, _ = fmt.Fprintf(a.out, "unknown command %q; run with -help for a list\n", args[0])
	return errUsage
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parse parses args and requires exactly want positional arguments.
func parse(fs *flag.FlagSet, args []string, want int) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != want {
		_, _ = fmt.Fprintf(fs.Output(), "%s: expected %d argument(s), got %d\n", fs.Name(), want, fs.NArg())
		fs.Usage()
		return errUsage
	}
	return nil
}

// failure converts err into the text a user should see.
func failure(err error, fallback string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s", api.Message(err, fallback))
}

// sessionFailure explains a refused protected-view entry.
func sessionFailure(err error, role model.Role) error {
	switch {
	case errors.Is(err, session.ErrExpired):
		return errors.New("session expired; please sign in again")
	case errors.Is(err, session.ErrForbidden):
		if role == model.RoleAdmin {
			return errors.New(auth.MsgAdminsOnly)
		}
		return errors.New(auth.MsgHostsOnly)
	default:
		return errors.New("not signed in; run: causeconnect login")
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := newFlagSet("login", a.out)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	asAdmin := fs.Bool("admin", false, "Sign in to the admin portal")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	want := model.RoleHost
	if *asAdmin {
		want = model.RoleAdmin
	}
	u, err := a.auth.SignIn(ctx, *email, *password, want)
	if err != nil {
		return failure(err, auth.MsgLoginFailed)
	}
	a.printf("Signed in as %s <%s> (%s)\n", u.Name, u.Email, u.Role)
	return nil
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	fs := newFlagSet("signup", a.out)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	u, err := a.auth.SignUp(ctx, model.SignupInput{Name: *name, Email: *email, Password: *password}, model.RoleHost)
	if err != nil {
		return failure(err, auth.MsgSignupFailed)
	}
	a.printf("Account created for %s <%s>\n", u.Name, u.Email)
	return nil
}

func (a *app) cmdLogout(ctx context.Context, args []string) error {
	if err := parse(newFlagSet("logout", a.out), args, 0); err != nil {
		return err
	}
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	notify.Info(a.notes, host.MsgSignedOut)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, args []string) error {
	if err := parse(newFlagSet("whoami", a.out), args, 0); err != nil {
		return err
	}
	if !a.sess.Current().Authenticated() {
		a.printf("Not signed in\n")
		return nil
	}
	u, err := a.auth.Refresh(ctx)
	if err != nil {
		return failure(err, "Failed to load profile")
	}
	a.printf("%s <%s> (%s)\n", u.Name, u.Email, u.Role)
	return nil
}

func (a *app) cmdSuggest(ctx context.Context, args []string) error {
	fs := newFlagSet("suggest", a.out)
	byLocation := fs.Bool("location", false, "Suggest locations instead of titles")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fs.Usage()
		return errUsage
	}

	opts := suggest.Options{Delay: a.cfg.SuggestDelay, Logger: a.logger}
	field := suggest.NewTermField(a.client, opts)
	if *byLocation {
		field = suggest.NewLocationField(a.client, opts)
	}
	defer field.Close()

	done := make(chan []string, 1)
	field.OnChange(func(list []string) {
		select {
		case done <- list:
		default:
		}
	})
	field.Set(text)

	select {
	case list := <-done:
		if len(list) == 0 {
			a.printf("No suggestions\n")
		}
		for _, s := range list {
			a.printf("%s\n", sanitize(s))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(a.cfg.SuggestDelay + a.cfg.RequestTimeout):
		return errors.New("timed out waiting for suggestions")
	}
}

func (a *app) cmdEvents(ctx context.Context, args []string) error {
	fs := newFlagSet("events", a.out)
	var f model.SearchFilter
	fs.StringVar(&f.Term, "term", "", "Free-text search")
	fs.StringVar(&f.Location, "location", "", "Location substring")
	fs.StringVar(&f.Tag, "tag", "", "Exact tag")
	fs.StringVar(&f.DateFrom, "from", "", "Earliest date (YYYY-MM-DD)")
	fs.StringVar(&f.DateTo, "to", "", "Latest date (YYYY-MM-DD)")
	fs.IntVar(&f.Page, "page", 1, "Result page")
	fs.StringVar(&f.Sort, "sort", "", "Sort order: date:asc or date:desc")
	pageSize := fs.Int("page-size", catalog.DefaultPageSize, "Results per page")
	last := fs.Bool("last", false, "Reuse the last search term and location")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	if *last && f.Term == "" && f.Location == "" {
		f.Term, f.Location = a.sess.LastSearch(ctx)
	}
	if err := a.sess.RememberSearch(ctx, f.Term, f.Location); err != nil {
		a.logger.Warn("saving last search failed", "error", err)
	}

	p := catalog.New(a.client, catalog.Options{PageSize: *pageSize, Logger: a.logger})
	defer p.Close()
	p.SetFilter(f)
	p.Wait()

	st := p.State()
	if st.Err != "" {
		return errors.New(st.Err)
	}
	if st.Empty() {
		a.printf("No events found\n")
		return nil
	}
	a.renderEvents(st.Items)
	a.printf("\nPage %d of %d (%d events)\n", st.Page, pageCount(st.Total, st.PageSize), st.Total)
	return nil
}

func (a *app) cmdEvent(ctx context.Context, args []string) error {
	fs := newFlagSet("event", a.out)
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	e, err := a.client.GetEvent(ctx, fs.Arg(0))
	if err != nil {
		return failure(err, MsgEventFailed)
	}
	a.renderEvent(e)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := newFlagSet("register", a.out)
	form := registration.DefaultForm()
	fs.StringVar(&form.Name, "name", "", "Your name")
	fs.StringVar(&form.Email, "email", "", "Your email")
	fs.StringVar(&form.Phone, "phone", "", "Indian mobile number")
	fs.StringVar(&form.Attendees, "attendees", form.Attendees, "Number of attendees")
	fs.StringVar(&form.Notes, "notes", "", "Notes for the host")
	// Flags may follow the event ID.
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		args = append(append([]string{}, args[1:]...), args[0])
	}
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	e, err := a.client.GetEvent(ctx, fs.Arg(0))
	if err != nil {
		return failure(err, MsgEventFailed)
	}

	d := registration.NewDialog(a.client, registration.Options{Notifier: a.notes, Logger: a.logger})
	defer d.Close()
	if err := d.Open(e); err != nil {
		return err
	}
	if err := d.Register(); err != nil {
		return err
	}
	if err := d.Edit(func(f *registration.Form) { *f = form }); err != nil {
		return err
	}
	if hint := d.View().PhoneHint; hint != "" {
		a.printf("%s\n", hint)
	}
	if _, err := d.Submit(ctx); err != nil {
		return errReported
	}
	return nil
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *app) printNotification(n notify.Notification) {
	a.printf("[%s] %s\n", n.Severity, n.Message)
}

func pageCount(total, size int) int {
	if size <= 0 || total == 0 {
		return 1
	}
	return (total + size - 1) / size
}
