package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/reqlens/reqlens/internal/har"
	"github.com/reqlens/reqlens/pkg/ipc"
)

func exportCmd() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var outPath string
	fs.StringVar(&outPath, "o", "", "Write to a file instead of stdout")
	fs.StringVar(&outPath, "output", "", "Write to a file instead of stdout")
	socketFlag := fs.String("socket", "", "Discovery file of the instance to attach to")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reqlens export [-o <file.har>]\n\n")
		fmt.Fprintf(os.Stderr, "Save the running instance's request log as a HAR 1.2 file, the capture\n")
		fmt.Fprintf(os.Stderr, "format browser devtools produce. In-flight requests are left out.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  reqlens export -o capture.har\n")
		fmt.Fprintf(os.Stderr, "  reqlens export | jq '.log.entries | length'\n")
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

	snap, err := firstSnapshot(client, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if outPath == "" {
		if _, err := har.Export(os.Stdout, snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	n, err := har.Export(f, snap)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d entries to %s\n", n, outPath)
}
