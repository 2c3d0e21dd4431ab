package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/reqlens/reqlens/pkg/ipc"
)

func clearCmd() {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	socketFlag := fs.String("socket", "", "Discovery file of the instance to attach to")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reqlens clear\n\n")
		fmt.Fprintf(os.Stderr, "Empty the request log of the running instance. Every attached viewer\n")
		fmt.Fprintf(os.Stderr, "sees the log drop to zero.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
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

	if err := client.SendClear(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Request log cleared")
}
