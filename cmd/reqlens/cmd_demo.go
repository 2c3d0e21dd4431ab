package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/reqlens/reqlens"
	"github.com/reqlens/reqlens/internal/app"
	"github.com/reqlens/reqlens/internal/config"
)

func demoCmd() {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	themeFlag := fs.String("theme", "", "Color theme (overrides config)")
	socketFlag := fs.String("socket", "", "Discovery file to publish for other viewers")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reqlens demo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Run the viewer on generated traffic: an embedded server answers JSON,\n")
		fmt.Fprintf(os.Stderr, "gzip, 404 and slow responses, plus one unreachable host, while this\n")
		fmt.Fprintf(os.Stderr, "process records its own requests. IPC is served too, so a second\n")
		fmt.Fprintf(os.Stderr, "terminal can run 'reqlens follow' against the demo.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg := config.Load()
	themeName := cfg.Theme
	if *themeFlag != "" {
		themeName = *themeFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	srv := newDemoServer()
	defer srv.Close()

	deadAddr, err := unreachableAddr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sys := reqlens.NewSystem(
		reqlens.WithMode(reqlens.ModeSilent),
		reqlens.WithDiscoveryPath(*socketFlag),
	)
	if err := sys.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sys.Stop()

	go generateTraffic(ctx, srv.URL, deadAddr)

	feed := app.NewStoreFeed(sys.Log(), sys.Replay)
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

const demoUsers = `{"users":[{"id":1,"name":"ada","role":"admin","active":true},{"id":2,"name":"grace","role":"engineer","active":true},{"id":3,"name":"linus","role":"viewer","active":false}],"total":3}`

const demoSearch = `{"query":"latency","hits":[{"path":"/api/users","p50":12,"p99":118},{"path":"/api/items","p50":9,"p99":87},{"path":"/api/search","p50":31,"p99":204}],"took_ms":18}`

func newDemoServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", uuid.NewString())
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"id":%d,"created":true}`, time.Now().UnixMilli()%1000)
			return
		}
		io.WriteString(w, demoUsers)
	})

	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, demoSearch)
		gz.Close()
	})

	mux.HandleFunc("/api/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(400 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"finally"}`)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":"not found","path":%q}`, r.URL.Path)
	})

	return httptest.NewServer(mux)
}

// unreachableAddr returns a loopback address nothing listens on, to produce
// a connection-refused exchange.
func unreachableAddr() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr, nil
}

// generateTraffic issues one burst so the viewer opens onto data, then keeps
// a slow rotation going until the context ends.
func generateTraffic(ctx context.Context, baseURL, deadAddr string) {
	client := &http.Client{Timeout: 5 * time.Second}

	calls := []func(){
		func() { doGet(ctx, client, baseURL+"/api/users", "") },
		func() {
			doPost(ctx, client, baseURL+"/api/users", `{"name":"ada","role":"admin"}`)
		},
		func() { doGet(ctx, client, baseURL+"/api/search?q=latency", "gzip") },
		func() { doGet(ctx, client, baseURL+"/api/items/42", "") },
		func() { doGet(ctx, client, baseURL+"/api/slow", "") },
		func() { doGet(ctx, client, "http://"+deadAddr+"/health", "") },
	}

	for _, call := range calls {
		if ctx.Err() != nil {
			return
		}
		call()
	}

	i := 0
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			calls[i%len(calls)]()
			i++
		}
	}
}

// doGet issues a GET and drains the body so the exchange completes. Setting
// acceptEncoding explicitly keeps the transport from decompressing the
// response itself, so the compressed wire size stays observable.
func doGet(ctx context.Context, client *http.Client, url, acceptEncoding string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	drain(client.Do(req))
}

func doPost(ctx context.Context, client *http.Client, url, body string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	drain(client.Do(req))
}

func drain(resp *http.Response, err error) {
	if err != nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
