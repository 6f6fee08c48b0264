package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stigoleg/ghost-operator/internal/config"
	"github.com/stigoleg/ghost-operator/internal/hid"
	"github.com/stigoleg/ghost-operator/internal/keepalive"
	"github.com/stigoleg/ghost-operator/internal/logging"
	"github.com/stigoleg/ghost-operator/internal/metrics"
	"github.com/stigoleg/ghost-operator/internal/protocol"
	"github.com/stigoleg/ghost-operator/internal/settings"
	"github.com/stigoleg/ghost-operator/internal/ui"
)

const (
	cleanupTimeout = 5 * time.Second
	stopTimeout    = 3 * time.Second
)

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Init(cfg.Log).With(zap.String("run_id", uuid.NewString()))
	defer func() { _ = logging.Sync() }()

	store := settings.NewStore(cfg.SettingsFile, logger)
	s, err := store.Load()
	if err != nil {
		return err
	}

	if cfg.Exec != "" {
		return execLine(os.Stdout, cfg.Exec, s, store, logger)
	}
	cfg.ApplyOverrides(&s)

	if cfg.Sink.DeviceName == "" {
		cfg.Sink.DeviceName = s.DeviceName
	}
	sink, err := hid.Open(cfg.Sink, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s sink: %w", cfg.Sink.Kind, err)
	}

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		_ = sink.Close()
		return err
	}

	k := keepalive.New(keepalive.Options{
		Settings:     s,
		Store:        store,
		Sink:         hid.NewMetered(sink, collector),
		Profile:      &cfg.Profile,
		Seed:         cfg.Seed,
		PollInterval: cfg.PollInterval,
		SyncClock:    cfg.SyncClock,
		Metrics:      collector,
		Logger:       logger,
	})
	store.Watch(k.Reload)

	cleanup := keepalive.NewCleanupManager(cleanupTimeout, logger)
	cleanup.RegisterFunc("keeper", func() error { return k.StopWithTimeout(stopTimeout) })
	cleanup.Register("sink", sink)
	defer func() {
		for _, err := range cleanup.Execute() {
			logger.Warn("cleanup failed", zap.Error(err))
		}
	}()

	logger.Info("ghostop starting",
		zap.String("version", version),
		zap.String("sink", string(cfg.Sink.Kind)),
		zap.Stringer("profile", cfg.Profile),
		zap.String("settings", store.Path()),
	)

	g, gctx := errgroup.WithContext(ctx)
	// The dashboard or the headless loop ends the run; the metrics server
	// follows it down.
	runCtx, cancel := context.WithCancel(gctx)

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(runCtx, cfg.MetricsAddr, collector.Handler(), logger)
		})
	}

	g.Go(func() error {
		defer cancel()
		if cfg.Headless {
			return runHeadless(runCtx, k, cfg.Duration, logger)
		}
		return ui.Run(runCtx, k, cfg.Duration > 0, cfg.Duration)
	})

	return g.Wait()
}

// runHeadless runs the keeper until ctx is cancelled or the keeper stops
// on its own (timer expiry or scheduled deep sleep).
func runHeadless(ctx context.Context, k *keepalive.Keeper, d time.Duration, logger *zap.Logger) error {
	var err error
	if d > 0 {
		err = k.StartTimed(d)
	} else {
		err = k.StartIndefinite()
	}
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case <-k.Done():
		if k.StoppedBySchedule() {
			logger.Info("schedule window closed")
		} else {
			logger.Info("run finished")
		}
	}
	return k.StopWithTimeout(stopTimeout)
}

// execLine answers one protocol command against the stored settings and
// prints the reply. Successful changes are written back so a running
// instance picks them up through its settings watcher.
func execLine(w io.Writer, line string, s settings.Settings, store *settings.Store, logger *zap.Logger) error {
	k := keepalive.New(keepalive.Options{
		Settings: s,
		Store:    store,
		Sink:     hid.NewLogSink(logger),
		Logger:   logger,
	})

	reply := k.Exec(line)
	fmt.Fprintln(w, reply)

	if strings.HasPrefix(reply, "-err") {
		return fmt.Errorf("command %q failed: %s", line, strings.TrimPrefix(reply, "-err:"))
	}
	if strings.HasPrefix(line, "=") && reply == protocol.ReplyOK {
		if err := k.Save(); err != nil && !errors.Is(err, settings.ErrNoPath) {
			return err
		}
	}
	return nil
}
