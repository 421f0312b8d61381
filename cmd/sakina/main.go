package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sakina/internal/catalog"
	"github.com/sandeepkv93/sakina/internal/clock"
	"github.com/sandeepkv93/sakina/internal/config"
	"github.com/sandeepkv93/sakina/internal/model"
	"github.com/sandeepkv93/sakina/internal/observability"
	"github.com/sandeepkv93/sakina/internal/progress"
	"github.com/sandeepkv93/sakina/internal/scheduler"
	"github.com/sandeepkv93/sakina/internal/storage"
	"github.com/sandeepkv93/sakina/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sakina failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// The TUI owns stdout, so logs go to a file or nowhere.
	logWriter, closeLog, err := openLog(cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer closeLog()
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDir(cfg.Storage.Path); err != nil {
		return fmt.Errorf("prepare storage path: %w", err)
	}
	kv, closeKV, err := storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := closeKV(); err != nil {
			logger.Error("close storage", "error", err)
		}
	}()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	clk := clock.Local{}
	metrics := observability.NewMetrics()
	store := progress.NewStore(kv, clk,
		progress.WithLogger(logger.With("component", "store")),
		progress.WithKey(cfg.Storage.Key),
		progress.WithMetrics(metrics),
	)
	today := store.Load()
	logger.Info("starting", "date", today.Date, "backend", cfg.Storage.Backend)

	watcher := progress.NewWatcher(store, cfg.RolloverInterval)
	watcher.Start()
	defer watcher.Stop()

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()
	schedules, err := cfg.ReminderSchedules()
	if err != nil {
		return err
	}
	queued, err := engine.ScheduleDaily(schedules, clk.Now())
	if err != nil {
		logger.Warn("some reminders were not scheduled", "error", err)
	}
	for _, ev := range queued {
		logger.Debug("reminder scheduled", "section", ev.Section, "at", ev.TriggerAt)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.MetricsAddr != "" {
		aggregator := progress.NewAggregator(store, cat)
		router := observability.NewRouter(metrics, func() any { return snapshot(ctx, kv, store, aggregator) })
		go func() {
			if err := observability.Serve(ctx, cfg.MetricsAddr, router, logger); err != nil {
				logger.Error("diagnostics server stopped", "error", err)
			}
		}()
	}

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}
	m := update.NewModel(update.Deps{
		Store:                store,
		Catalog:              cat,
		Scheduler:            engine,
		Watcher:              watcher,
		Notifier:             notifier,
		Metrics:              metrics,
		Clock:                clk,
		Logger:               logger.With("component", "ui"),
		DesktopNotifications: cfg.DesktopNotifications,
	})

	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return err
	}
	logger.Info("stopped", "dropped_reminders", engine.Dropped(), "dropped_rollovers", watcher.Dropped())
	return nil
}

type sectionSnapshot struct {
	Percentage int  `json:"percentage"`
	Completed  bool `json:"completed"`
}

type progressSnapshot struct {
	Date     clock.Date                        `json:"date"`
	Overall  int                               `json:"overall"`
	Sections map[model.Section]sectionSnapshot `json:"sections"`
	Healthy  bool                              `json:"persistenceHealthy"`
	LastSave *time.Time                        `json:"lastSave,omitempty"`
}

func snapshot(ctx context.Context, kv storage.KV, store *progress.Store, aggregator *progress.Aggregator) progressSnapshot {
	out := progressSnapshot{
		Date:     store.Load().Date,
		Overall:  aggregator.OverallPercentage(),
		Sections: make(map[model.Section]sectionSnapshot),
		Healthy:  store.PersistenceHealthy(),
	}
	if at, ok := storage.LastWrite(ctx, kv, store.Key()); ok {
		out.LastSave = &at
	}
	for _, s := range model.AllSections() {
		out.Sections[s] = sectionSnapshot{
			Percentage: aggregator.SectionPercentage(s),
			Completed:  aggregator.IsSectionComplete(s),
		}
	}
	return out
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return io.Discard, func() {}, nil
	}
	if err := ensureDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
