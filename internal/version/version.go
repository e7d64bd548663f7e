// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/subpixel/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	sha := GitSHA
	if len(sha) > 7 {
		sha = sha[:7]
	}
	return fmt.Sprintf("subpixel %s (%s, built %s)", Version, sha, BuildTime)
}
