package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mglenn/ttm/internal/api"
	"github.com/mglenn/ttm/internal/config"
	"github.com/mglenn/ttm/internal/settings"
	"github.com/mglenn/ttm/internal/taskgraph"
	"github.com/mglenn/ttm/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("ttm %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	store, err := settings.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing settings database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client, err := api.New(cfg.ServerURL, cfg.Timeout, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up API client for %s: %v\n", cfg.ServerURL, err)
		os.Exit(1)
	}
	session := api.NewSession(client)
	graph := taskgraph.New(logger)

	app := ui.NewApp(client, session, graph, store)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// newLogger sends logs to a file. The TUI owns stdout, so there is no
// terminal handler; without a usable file, logs are discarded.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	path := cfg.LogFile
	if path == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
			}
			dataDir = filepath.Join(home, ".local", "share")
		}
		if err := os.MkdirAll(filepath.Join(dataDir, "ttm"), 0755); err != nil {
			return nil, func() {}, err
		}
		path = filepath.Join(dataDir, "ttm", "ttm.log")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, func() {}, err
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}
