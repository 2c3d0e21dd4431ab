package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reqlens/reqlens/internal/app"
	"github.com/reqlens/reqlens/internal/config"
	"github.com/reqlens/reqlens/internal/har"
)

func openCmd() {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	themeFlag := fs.String("theme", "", "Color theme (overrides config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reqlens open <file.har>\n\n")
		fmt.Fprintf(os.Stderr, "Browse a saved capture in the viewer, no running instance needed.\n")
		fmt.Fprintf(os.Stderr, "Accepts HAR files from 'reqlens export' or from browser devtools.\n")
		fmt.Fprintf(os.Stderr, "Replay and clear are disabled on a file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  reqlens open capture.har\n")
		fmt.Fprintf(os.Stderr, "  reqlens open --theme dracula capture.har\n")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one HAR file is required\n\n")
		fs.Usage()
		os.Exit(2)
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	snap, err := har.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
		os.Exit(1)
	}

	cfg := config.Load()
	themeName := cfg.Theme
	if *themeFlag != "" {
		themeName = *themeFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	feed := app.NewStaticFeed(snap, "FILE")
	defer feed.Close()

	model := app.New(
		app.WithFeed(feed),
		app.WithTheme(themeName),
	)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
