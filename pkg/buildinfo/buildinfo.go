// Package buildinfo carries build-time version information, set via
// ldflags:
//
//	go build -ldflags "-X github.com/schedcore/rpsched/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/schedcore/rpsched/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/schedcore/rpsched/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the version template string cobra prints for
// --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
