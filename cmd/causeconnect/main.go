// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/causeconnect/internal/api"
	"github.com/olegiv/causeconnect/internal/auth"
	"github.com/olegiv/causeconnect/internal/cache"
	"github.com/olegiv/causeconnect/internal/config"
	"github.com/olegiv/causeconnect/internal/logging"
	"github.com/olegiv/causeconnect/internal/notify"
	"github.com/olegiv/causeconnect/internal/session"
	"github.com/olegiv/causeconnect/internal/store"
	"github.com/olegiv/causeconnect/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Args()); err != nil {
		switch {
		case errors.Is(err, errUsage):
			os.Exit(2)
		case errors.Is(err, errReported):
			os.Exit(1)
		}
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "causeconnect - community service events client\n\n")
	_, _ = fmt.Fprintf(w, "Usage: %s [options] <command> [arguments]\n\n", filepath.Base(os.Args[0]))
	_, _ = fmt.Fprintf(w, "Options:\n")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(w, "\nCommands:\n")
	for _, c := range commands {
		_, _ = fmt.Fprintf(w, "  %-42s %s\n", c.usage, c.summary)
	}
	_, _ = fmt.Fprintf(w, "\nEnvironment Variables:\n")
	_, _ = fmt.Fprintf(w, "  CAUSECONNECT_API_URL      Backend base URL (default: http://localhost:4000)\n")
	_, _ = fmt.Fprintf(w, "  CAUSECONNECT_DB_PATH      Local state database (default: ./data/causeconnect.db)\n")
	_, _ = fmt.Fprintf(w, "  CAUSECONNECT_LOG_LEVEL    debug|info|warn|error (default: info)\n")
	_, _ = fmt.Fprintf(w, "  CAUSECONNECT_REDIS_URL    Redis URL for the event cache (optional)\n")
	_, _ = fmt.Fprintf(w, "  CAUSECONNECT_TIMEZONE     Zone for host event dates (default: Local)\n")
}

func run(ctx context.Context, args []string) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr so command output stays clean.
	logger := slog.New(logging.NewRedactHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	sess := session.NewStore(store.New(db), logger)
	if err := sess.Load(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	eventCache, info, err := cache.New(cache.Config{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cfg.CacheTTL,
		MaxEntries:       cfg.CacheMax,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		st := eventCache.Stats()
		logger.Debug("event cache stats", "hits", st.Hits, "misses", st.Misses, "evictions", st.Evictions)
		_ = eventCache.Close()
	}()
	logger.Debug("event cache ready", "backend", info.Backend, "fallback", info.IsFallback)

	client, err := api.New(api.Options{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.RequestTimeout,
		RateLimit:  cfg.RateLimit,
		Tokens:     sess,
		EventCache: eventCache,
		CacheTTL:   cfg.CacheTTL,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating api client: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		sess:   sess,
		client: client,
		auth:   auth.NewService(client, sess, logger),
		out:    os.Stdout,
	}
	a.notes = notify.Func(a.printNotification)
	return a.dispatch(ctx, args)
}
