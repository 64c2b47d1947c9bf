// Package main is the entry point for the livetable demo watcher.
//
// It mirrors a JSONL file into an in-memory table, binds one observer per
// configured view and logs which views actually need a redraw after each
// change. Configuration is read from CLI flags and a YAML watch list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/maruel/livetable"
	"github.com/maruel/livetable/internal/feed"
	"github.com/maruel/livetable/internal/watchcfg"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "livetable: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	cfgPath := flag.String("config", "watch.yml", "YAML watch list")
	dataPath := flag.String("data", "records.jsonl", "JSONL file to mirror")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	reloadHz := flag.Float64("reload-hz", 10, "Maximum reloads per second; 0 for unlimited")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	ll := &slog.LevelVar{}
	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
		ll.Set(slog.LevelInfo)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("invalid log level %q", *logLevel)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := watchcfg.Load(*cfgPath)
	if err != nil {
		return err
	}

	reg := livetable.NewRegistry()
	h, table, err := livetable.Create(reg, cfg.Policy())
	if err != nil {
		return err
	}
	defer reg.Delete(h)

	queries := cfg.Queries()
	for i := range cfg.Views {
		name := cfg.Views[i].Name
		q := queries[name]
		var o *livetable.Observer[feed.Record]
		o = livetable.Bind(table, func() {
			rows := o.Execute(q)
			slog.InfoContext(ctx, "View updated", "view", name, "rows", len(rows))
		})
		o.Execute(q)
		o.Subscribe()
		defer o.Unsubscribe()
	}

	f := feed.New(table, *dataPath, *reloadHz)
	if err := f.Load(); err != nil {
		slog.WarnContext(ctx, "Initial load failed", "path", *dataPath, "err", err)
	}
	slog.InfoContext(ctx, "Watching", "data", *dataPath, "table", h, "views", len(cfg.Views), "rows", table.Len())
	return f.Run(ctx)
}
