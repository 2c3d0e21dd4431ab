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
	"github.com/reqlens/reqlens/pkg/ipc"
	"github.com/reqlens/reqlens/pkg/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "follow":
			followCmd()
			return
		case "replay":
			replayCmd()
			return
		case "clear":
			clearCmd()
			return
		case "export":
			exportCmd()
			return
		case "open":
			openCmd()
			return
		case "demo":
			demoCmd()
			return
		case "version":
			fmt.Printf("reqlens %s (%s) built %s\n", version.Version, version.Commit, version.Date)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}
	attachCmd()
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `reqlens - Watch the HTTP traffic of an instrumented process

Usage:
  reqlens [flags]                    Attach the viewer to a running instance
  reqlens <command> [args] [flags]   Run a subcommand

Commands:
  follow    Stream completed exchanges to stdout (like tail -f)
  replay    Re-issue one captured request by id
  clear     Empty the request log of the running instance
  export    Save the request log as a HAR file
  open      Browse a saved HAR file in the viewer
  demo      Record sample traffic in-process and open the viewer
  version   Print version information
  help      Show this help message

Viewer Flags:
  --socket <path>  Discovery file of the instance to attach to
  --theme <name>   Color theme (overrides config)
  --version        Print version and exit

An instance is any process that called reqlens.Start. Without one, try
'reqlens demo' to explore the viewer on generated traffic.

Run 'reqlens <command> --help' for more information about a command.
`)
}

// attachCmd is the default command: connect to a running instance and run
// the full-screen viewer on its log stream.
func attachCmd() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	socketFlag := flag.String("socket", "", "Discovery file of the instance to attach to")
	themeFlag := flag.String("theme", "", "Color theme (overrides config)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("reqlens %s (%s) built %s\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	cfg := config.Load()
	themeName := cfg.Theme
	if *themeFlag != "" {
		themeName = *themeFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client, err := ipc.Connect(ctx, ipc.WithClientDiscoveryPath(*socketFlag))
	if err != nil {
		exitConnectError(err)
	}

	feed := app.NewClientFeed(client)
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

// exitConnectError prints a connection failure and exits. A missing instance
// gets a hint instead of a bare error.
func exitConnectError(err error) {
	if errors.Is(err, ipc.ErrNoInstance) {
		fmt.Fprintf(os.Stderr, "Error: no running reqlens instance found.\n\n")
		fmt.Fprintf(os.Stderr, "Start your application with reqlens.Start(ctx), or run 'reqlens demo'\n")
		fmt.Fprintf(os.Stderr, "to explore the viewer on generated traffic.\n")
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
