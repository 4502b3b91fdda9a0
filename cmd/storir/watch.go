package main

import (
	"context"
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

	"github.com/fsnotify/fsnotify"

	"github.com/cwbudde/algo-storir/internal/config"
	"github.com/cwbudde/algo-storir/internal/logging"
)

// settleDelay coalesces the burst of events an editor produces on save.
const settleDelay = 200 * time.Millisecond

func runWatch(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := newConfigFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return ignoreHelp(err)
	}
	if flags.path == "" {
		fmt.Fprintf(stderr, "Usage: storir watch -config file.yaml [flags]\n")
		return errUsage
	}

	cfg, err := flags.load()
	if err != nil {
		return err
	}
	live, err := newLiveLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer live.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = watch(ctx, flags.path, flags.load, live.Logger, func(ctx context.Context, cfg *config.Config) {
		if err := live.update(cfg.Logging); err != nil {
			live.Logger().Error("logging configuration not applied", slog.Any("err", err))
		}
		log := live.Logger()
		s, err := generate(ctx, cfg, log)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			log.Error("generation failed", slog.Any("err", err))
		case err == nil:
			fmt.Fprintf(stdout, "%d of %d impulse responses written to %s\n",
				len(s.Succeeded), s.Total, cfg.Output.Folder)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// liveLogger follows the logging section of reloaded configurations.
type liveLogger struct {
	cfg config.LoggingConfig
	cur *logging.Logger
}

func newLiveLogger(cfg config.LoggingConfig) (*liveLogger, error) {
	l, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	return &liveLogger{cfg: cfg, cur: l}, nil
}

// Logger returns the current logger.
func (l *liveLogger) Logger() *slog.Logger { return l.cur.Logger }

// update switches to cfg when it differs from the current section. On error
// the current logger stays in place.
func (l *liveLogger) update(cfg config.LoggingConfig) error {
	if cfg == l.cfg {
		return nil
	}
	next, err := logging.New(cfg)
	if err != nil {
		return err
	}
	prev := l.cur
	l.cur, l.cfg = next, cfg
	return prev.Close()
}

func (l *liveLogger) Close() error { return l.cur.Close() }

// watch calls regenerate with the current configuration, then again each
// time the file at path changes. Invalid edits are logged and skipped. The
// parent folder is watched so that editors replacing the file on save are
// followed. Events are logged with whatever logger returns at the time.
func watch(ctx context.Context, path string, load func() (*config.Config, error),
	logger func() *slog.Logger, regenerate func(context.Context, *config.Config),
) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	reload := func() {
		cfg, err := load()
		if err != nil {
			logger().Error("configuration rejected", slog.String("path", path), slog.Any("err", err))
			return
		}
		logger().Info("configuration loaded", slog.String("path", path))
		regenerate(ctx, cfg)
	}
	reload()

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			settle.Reset(settleDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger().Warn("watch error", slog.Any("err", err))
		case <-settle.C:
			reload()
		}
	}
}
