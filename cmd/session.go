package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvp2015/xpypact/internal/collector"
	"github.com/dvp2015/xpypact/internal/config"
	"github.com/dvp2015/xpypact/internal/ingest"
	"github.com/dvp2015/xpypact/internal/logging"
	"github.com/dvp2015/xpypact/internal/metrics"
	"github.com/dvp2015/xpypact/internal/store"
	"github.com/dvp2015/xpypact/internal/telemetry"
	"github.com/dvp2015/xpypact/internal/ui"
)

var errNoDatabase = errors.New("no database configured, set --db")

// session holds the runtime shared by commands: config, logger, telemetry,
// metrics and the printer.
type session struct {
	cfg     config.Config
	log     *logging.Logger
	emitter *telemetry.Emitter
	metrics *metrics.Metrics
	printer *ui.Printer
	command string
	started time.Time
}

// newSession loads and validates the config and builds the ambient stack.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogMode, cfg.Verbose)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:     cfg,
		log:     log,
		printer: ui.NewWriter(cmd.ErrOrStderr()),
		command: cmd.CommandPath(),
		started: time.Now(),
	}
	if cfg.TelemetryPath != "" {
		if s.emitter, err = telemetry.NewEmitter(cfg.TelemetryPath); err != nil {
			return nil, err
		}
	}
	if cfg.MetricsFile != "" {
		s.metrics = metrics.New()
	}
	_ = s.emitter.Record(telemetry.KindSessionStart, "", map[string]any{"command": s.command})
	s.log.Debug("session started", "command", s.command, "session", s.emitter.Session())
	return s, nil
}

// close flushes metrics and telemetry. It is deferred by every command.
func (s *session) close() {
	_ = s.emitter.Record(telemetry.KindSessionDone, "", map[string]any{
		"command":    s.command,
		"elapsed_ms": time.Since(s.started).Milliseconds(),
	})
	if err := s.metrics.WriteToTextfile(s.cfg.MetricsFile); err != nil {
		s.log.Warn("metrics not written", "err", err)
	}
	if err := s.emitter.Close(); err != nil {
		s.log.Warn("telemetry not closed", "err", err)
	}
	s.log.Sync()
}

// pipeline returns an ingest pipeline feeding c.
func (s *session) pipeline(c *collector.Collector) *ingest.Pipeline {
	return &ingest.Pipeline{
		Collector: c,
		Workers:   s.cfg.Workers,
		Logger:    s.log,
		Emitter:   s.emitter,
		Metrics:   s.metrics,
	}
}

// openStore opens the configured database.
func (s *session) openStore(ctx context.Context) (*store.Store, error) {
	if s.cfg.DBPath == "" {
		return nil, errNoDatabase
	}
	var opts []store.Option
	opts = append(opts, store.WithLogger(s.log))
	if s.cfg.ReadOnly {
		opts = append(opts, store.WithReadOnly())
	}
	return store.Open(ctx, s.cfg.DBPath, opts...)
}

// save writes r to the configured Parquet directory and database. Either
// target is skipped when its path is empty.
func (s *session) save(ctx context.Context, r *collector.Result) error {
	if s.cfg.OutDir != "" {
		var err error
		if s.cfg.Partition {
			err = r.SavePartitioned(s.cfg.OutDir, s.cfg.Override)
		} else {
			err = r.SaveToParquets(s.cfg.OutDir, s.cfg.Override)
		}
		if err != nil {
			return err
		}
		s.metrics.Saved("parquet")
		_ = s.emitter.Record(telemetry.KindParquetSaved, s.cfg.OutDir, map[string]any{"partitioned": s.cfg.Partition})
		s.printer.Saved("parquet", s.cfg.OutDir)
	}
	if s.cfg.DBPath != "" {
		st, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Save(ctx, r); err != nil {
			return err
		}
		s.metrics.Saved("sqlite")
		_ = s.emitter.Record(telemetry.KindStoreSaved, s.cfg.DBPath, map[string]any{"inventories": len(r.RunData)})
		s.printer.Saved("sqlite", filepath.Clean(s.cfg.DBPath))
	}
	return nil
}

// setupSignalContext returns a context cancelled on SIGINT or SIGTERM.
func setupSignalContext(parent context.Context, printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			printer.Info("shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
