package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// These are set at build time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("specdash %s (%s) built %s", Version, shortCommit(), BuildTime)
}

// Short returns just the version string
func Short() string {
	return Version
}

func shortCommit() string {
	return GitCommit[:min(7, len(GitCommit))]
}

// Details returns the full build description, one field per line
func Details(now time.Time) []string {
	built := BuildTime
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		built = fmt.Sprintf("%s (%s)", BuildTime, humanize.RelTime(t, now, "ago", "from now"))
	}

	return []string{
		"version:  " + Version,
		"commit:   " + GitCommit,
		"built:    " + built,
		"go:       " + strings.TrimPrefix(runtime.Version(), "go"),
		"platform: " + runtime.GOOS + "/" + runtime.GOARCH,
	}
}
