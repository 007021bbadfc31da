package version

import (
	"fmt"
	"runtime"
)

// Set at link time with -ldflags "-X github.com/sameehj/envdefs/pkg/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns a one-line version summary for `envdefs version`.
func String() string {
	return fmt.Sprintf("envdefs %s (commit %s, built %s, %s/%s)", Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
