package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/reqlens/reqlens/pkg/ipc"
	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/reqlog"
)

func replayCmd() {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	idFlag := fs.String("id", "", "Id of the record to replay (unique prefix accepted)")
	socketFlag := fs.String("socket", "", "Discovery file of the instance to attach to")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reqlens replay --id <record-id>\n\n")
		fmt.Fprintf(os.Stderr, "Ask the running instance to re-issue a captured request. The replayed\n")
		fmt.Fprintf(os.Stderr, "exchange is recorded like any other; follow or attach to see it land.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  reqlens replay --id 9f3c\n")
		fmt.Fprintf(os.Stderr, "  reqlens replay 9f3c2a17-8d5e-4f1b-a2c3-04d5e6f7a8b9\n")
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	id := *idFlag
	if id == "" && fs.NArg() > 0 {
		id = fs.Arg(0)
	}
	if id == "" {
		fmt.Fprintf(os.Stderr, "Error: a record id is required\n\n")
		fs.Usage()
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

	rec, err := findRecord(snap, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if rec.Status.IsPending() {
		fmt.Fprintf(os.Stderr, "Error: record %s is still in flight\n", rec.ID)
		os.Exit(1)
	}

	if err := client.SendReplay(rec); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Replay sent: %s %s\n", rec.Method, rec.URL)
}

// firstSnapshot waits for the initial push a server sends on connect.
func firstSnapshot(client *ipc.Client, timeout time.Duration) (reqlog.Snapshot, error) {
	select {
	case u, ok := <-client.Updates():
		if !ok {
			return nil, fmt.Errorf("connection closed before the log arrived")
		}
		return u.Logs, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timed out waiting for the request log")
	}
}

// findRecord resolves an id against a snapshot, accepting any unambiguous
// prefix so ids can be pasted short.
func findRecord(snap reqlog.Snapshot, id string) (*record.Record, error) {
	for _, rec := range snap {
		if rec.ID == id {
			return rec, nil
		}
	}

	var match *record.Record
	for _, rec := range snap {
		if strings.HasPrefix(rec.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("id %q matches more than one record", id)
			}
			match = rec
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no record matches id %q", id)
	}
	return match, nil
}
