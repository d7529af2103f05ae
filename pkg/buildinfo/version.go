// Package buildinfo holds version information injected at build time:
//
//	go build -ldflags "-X github.com/matzehuels/leveler/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/leveler/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/leveler/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/leveler
package buildinfo

import "fmt"

var (
	Version = "dev"     // semantic version, e.g. "v0.3.0"
	Commit  = "none"    // git commit SHA
	Date    = "unknown" // build timestamp
)

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template for cobra's --version flag.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// Info returns the build information as a map for JSON responses.
func Info() map[string]string {
	return map[string]string{"version": Version, "commit": Commit, "built": Date}
}
