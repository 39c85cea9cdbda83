package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tinytelemetry/wingo-live/internal/history"
	"github.com/tinytelemetry/wingo-live/internal/metrics"
	"github.com/tinytelemetry/wingo-live/internal/model"
	"github.com/tinytelemetry/wingo-live/internal/predictapi"
	"github.com/tinytelemetry/wingo-live/internal/tui"
	"golang.org/x/sync/errgroup"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var endpoint string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/wingo/config.yml)")
	flag.StringVar(&endpoint, "endpoint", "", "override prediction service base URL")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Wingo - Live Prediction Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	// A .env file in the working directory seeds the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: reading .env: %v\n", err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg appConfig) error {
	// The terminal belongs to the UI; diagnostics go to the log file.
	closeLog, err := configureLogFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	log.Printf("wingo: starting %s (endpoint=%s poll=%s policy=%s)", version, cfg.Endpoint, cfg.PollInterval, cfg.Policy)

	var snapshots model.SnapshotStore
	var historyOpts []tui.HistoryOption
	if cfg.HistoryEnabled {
		store, err := history.NewStore(cfg.HistoryDB)
		if err != nil {
			log.Printf("history: disabled, cannot open %s: %v", cfg.HistoryDB, err)
			historyOpts = append(historyOpts,
				tui.WithUnavailableReason(fmt.Sprintf("History unavailable: cannot open %s: %v", cfg.HistoryDB, err)))
		} else {
			defer store.Close()
			if rc := history.NewRetentionCleaner(store, cfg.HistoryRetention); rc != nil {
				defer rc.Stop()
			}
			snapshots = store
		}
	}

	fetchMetrics := metrics.NewFetchMetrics(prometheus.DefaultRegisterer)

	var client model.PredictAPI = predictapi.New(cfg.Endpoint)
	live := tui.NewLiveModel(client, tui.LiveConfig{
		PollInterval:   cfg.PollInterval,
		RequestTimeout: cfg.RequestTimeout,
		UseModel:       cfg.UseModel,
		Take:           cfg.Take,
		Policy:         cfg.Policy,
		SourceLabel:    sourceLabel(cfg.Endpoint),
	},
		tui.WithRecorder(snapshots),
		tui.WithMetrics(fetchMetrics),
	)
	app := tui.NewApp(live, tui.NewHistoryPage(snapshots, historyOpts...))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		metricsServer := metrics.NewServer(cfg.MetricsAddr, prometheus.DefaultGatherer)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		log.Printf("metrics: serving on http://%s/metrics", metricsServer.Addr())
		g.Go(metricsServer.Serve)
		g.Go(func() error {
			<-gctx.Done()
			return metricsServer.Stop()
		})
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(gctx))
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
				return fmt.Errorf("TUI requires a real terminal")
			}
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// configureLogFile points the standard logger at path.
func configureLogFile(path string) (func(), error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return func() { _ = f.Close() }, nil
}

// sourceLabel shortens the endpoint for the status line.
func sourceLabel(endpoint string) string {
	label := strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
	return strings.TrimRight(label, "/")
}
