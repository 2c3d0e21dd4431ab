// Package version holds build metadata injected at link time.
package version

// Populated via -ldflags, e.g.
// go build -ldflags "-X github.com/reqlens/reqlens/pkg/version.Version=v0.3.0".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
