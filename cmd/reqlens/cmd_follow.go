package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"

	"github.com/reqlens/reqlens/pkg/ipc"
	"github.com/reqlens/reqlens/pkg/record"
)

func followCmd() {
	fs := flag.NewFlagSet("follow", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "Emit one JSON record per line instead of text")
	socketFlag := fs.String("socket", "", "Discovery file of the instance to attach to")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reqlens follow [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Stream completed exchanges to stdout, oldest first, then live as\n")
		fmt.Fprintf(os.Stderr, "they finish. Press Ctrl+C to stop.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  reqlens follow\n")
		fmt.Fprintf(os.Stderr, "  reqlens follow --json | jq .url\n")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client, err := ipc.Connect(ctx, ipc.WithClientDiscoveryPath(*socketFlag))
	if err != nil {
		exitConnectError(err)
	}
	defer client.Close()

	// Interrupt unblocks the update stream by dropping the connection.
	go func() {
		<-ctx.Done()
		client.Close()
	}()

	printed := make(map[string]bool)
	enc := json.NewEncoder(os.Stdout)
	headerShown := false

	for u := range client.Updates() {
		// Snapshots are newest first; walk backwards so the stream reads
		// chronologically.
		for i := len(u.Logs) - 1; i >= 0; i-- {
			rec := u.Logs[i]
			if printed[rec.ID] || !rec.Status.Terminal() {
				continue
			}
			printed[rec.ID] = true

			if *jsonFlag {
				if err := enc.Encode(rec); err != nil {
					fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
					os.Exit(2)
				}
				continue
			}
			if !headerShown {
				printFollowHeader(os.Stdout)
				headerShown = true
			}
			printFollowRow(os.Stdout, rec)
		}

		// An id that left the log never comes back, so it can be forgotten.
		if len(printed) > 2*len(u.Logs)+64 {
			keep := make(map[string]bool, len(u.Logs))
			for _, rec := range u.Logs {
				if printed[rec.ID] {
					keep[rec.ID] = true
				}
			}
			printed = keep
		}
	}

	if ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "\nLog stream closed by instance.\n")
		os.Exit(1)
	}
}

func printFollowHeader(w io.Writer) {
	fmt.Fprintf(w, "%-12s  %-7s  %-7s  %8s  %9s  %s\n",
		"TIME", "METHOD", "STATUS", "DURATION", "SIZE", "URL")
}

func printFollowRow(w io.Writer, rec *record.Record) {
	size := "-"
	if rec.Size != nil && rec.Size.Transferred > 0 {
		size = humanize.IBytes(uint64(rec.Size.Transferred))
	}

	url := rec.URL
	if rec.Status.IsError() && rec.Error != "" {
		url = fmt.Sprintf("%s  (%s)", rec.URL, rec.Error)
	}

	fmt.Fprintf(w, "%-12s  %-7s  %-7s  %8s  %9s  %s\n",
		rec.StartTime.Format("15:04:05.000"),
		rec.Method,
		rec.Status.String(),
		formatDuration(rec.DurationMs),
		size,
		url,
	)
}

// formatDuration renders a millisecond count compactly.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}
