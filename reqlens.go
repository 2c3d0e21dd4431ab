// Package reqlens records the HTTP and HTTPS requests a process sends, with
// per-exchange timing and size detail, and streams the resulting request log
// to live viewers.
//
// The minimal integration is two lines:
//
//	reqlens.Install()
//	defer reqlens.Uninstall()
//
// after which every request through http.DefaultTransport is recorded into
// reqlens.Log(). Start(ctx) additionally serves the log over local IPC so
// the reqlens CLI can attach from another terminal, and the REQLENS_MODE
// environment variable ("silent", "log", "inline") picks between serving
// quietly, printing a line per exchange, and running the terminal viewer
// inside the host process.
//
// Recording is strictly observational: requests go out byte-for-byte as the
// application built them, responses and transport errors come back exactly
// as the server and transport produced them.
package reqlens

import (
	"context"
	"net/http"

	"github.com/reqlens/reqlens/pkg/event"
	"github.com/reqlens/reqlens/pkg/record"
	"github.com/reqlens/reqlens/pkg/reqlog"
)

var std = NewSystem()

// Default returns the shared System the package-level functions operate on.
func Default() *System { return std }

// Install begins interception of the process default transport.
func Install() { std.Install() }

// Uninstall restores the transports Install replaced.
func Uninstall() { std.Uninstall() }

// Active reports whether interception is currently installed.
func Active() bool { return std.Active() }

// Transport wraps next so a custom http.Client participates in recording.
// Passing nil wraps http.DefaultTransport.
func Transport(next http.RoundTripper) http.RoundTripper {
	return std.Transport(next)
}

// Events returns the lifecycle event bus of the default System.
func Events() *event.Bus { return std.Events() }

// Log returns the request log store of the default System.
func Log() *reqlog.Store { return std.Log() }

// StartIPC serves the request log to local viewer processes.
func StartIPC(ctx context.Context) error { return std.StartIPC(ctx) }

// StopIPC shuts down the IPC server if one is running.
func StopIPC() { std.StopIPC() }

// Replay re-issues a captured request through the default System.
func Replay(ctx context.Context, rec *record.Record) { std.Replay(ctx, rec) }

// Start installs the interceptor, serves IPC and applies REQLENS_MODE.
func Start(ctx context.Context) error { return std.Start(ctx) }

// Stop tears down everything Start set up.
func Stop() { std.Stop() }
