package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"todo/internal/config"
	"todo/internal/journal"
	"todo/internal/logging"
	"todo/internal/todolist"
	"todo/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logw io.Writer
	if cfg.LogPath != "" {
		f, err := logging.OpenFile(cfg.LogPath)
		if err != nil {
			fmt.Printf("failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close() //nolint:errcheck
		logw = f
	}
	logger := logging.New(logging.Options{Writer: logw, Level: cfg.LogLevel})
	logger.Info("loaded config", "path", configPath, "journal", cfg.JournalPath)

	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Error("failed journal open", "err", err)
		fmt.Printf("failed to open journal: %v\n", err)
		os.Exit(1)
	}
	defer j.Close()

	store := todolist.New()
	store.Observe(recordChanges(j, logger))

	if err := ui.Run(store, j, cfg, logger, firstLaunch); err != nil {
		logger.Error("program exited", "err", err)
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

func recordChanges(j *journal.Journal, logger *log.Logger) func(todolist.Change) {
	return func(c todolist.Change) {
		logger.Debug("dispatched", "action", c.Action.Kind(), "targets", c.Action.Targets(), "tasks", len(c.After.Tasks))
		if err := j.Record(journal.FromChange(c, time.Now())); err != nil {
			logger.Error("journal write failed", "err", err)
		}
	}
}
