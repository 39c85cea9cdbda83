package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/wingo-live/internal/stubserver"
	"golang.org/x/sync/errgroup"
)

// runServer serves fixtures until SIGINT/SIGTERM.
func runServer(cfg stubConfig) error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	fixtures := stubserver.DefaultFixtures()
	if cfg.Fixtures != "" {
		fx, err := stubserver.LoadFixtures(cfg.Fixtures)
		if err != nil {
			return err
		}
		fixtures = fx
	}

	srv := stubserver.NewServer(cfg.Addr, fixtures)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start stub server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	printStartupBanner(cfg, srv.Addr(), fixtures)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Serve)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop()
	})

	if err := g.Wait(); err != nil {
		log.Printf("stub: errgroup exited with error: %v", err)
		return err
	}
	return nil
}

func printStartupBanner(cfg stubConfig, addr string, fx *stubserver.Fixtures) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	var lines []string
	lines = append(lines, "")
	lines = append(lines, "    "+cyan.Bold(true).Render("wingo-stub")+" "+dim.Render("v"+version))
	lines = append(lines, "")
	lines = append(lines, bold.Render("    Service"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render("http://"+addr)))

	source := "built-in"
	if cfg.Fixtures != "" {
		source = cfg.Fixtures
	}
	lines = append(lines, fmt.Sprintf("    %s  Fixtures       %s", check, dim.Render(source)))
	lines = append(lines, fmt.Sprintf("    %s  Frames         %s", check,
		dim.Render(fmt.Sprintf("%d heuristic, %d model", len(fx.Heuristic), len(fx.Model)))))

	if fx.ModelLoaded {
		lines = append(lines, fmt.Sprintf("    %s  Trained model  %s", check, dim.Render("loaded")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Trained model  %s", dot, dim.Render("not loaded")))
	}
	if fx.FailEvery > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Failures       %s", check, dim.Render(fmt.Sprintf("every %d requests", fx.FailEvery))))
	}
	if fx.Delay > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Delay          %s", check, dim.Render(fx.Delay.String())))
	}

	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(cfg.ConfigPath)))
	}

	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}
