// Package version exposes build information for the vertextester binary.
//
// Values are injected at build time:
//
//	-ldflags "-X vertextester/internal/version.version=v1.0.0 -X vertextester/internal/version.commit=abc123 -X vertextester/internal/version.buildTime=2025-01-28T00:00:00Z"
package version

import (
	"fmt"
	"io"
	"strings"
)

//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	version   string
	commit    string
	buildTime string
)

// ApplicationName is printed as the first line of the full version output.
const ApplicationName = "Vertex Tester CLI"

// Defaults used when a build variable was not injected.
const (
	DefaultVersion   = "dev"
	DefaultCommit    = "unknown"
	DefaultBuildTime = "unknown"
)

// Info holds resolved build information.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

// Get returns the build information with defaults applied.
func Get() Info {
	return Info{
		Version:   withDefault(version, DefaultVersion),
		Commit:    withDefault(commit, DefaultCommit),
		BuildTime: withDefault(buildTime, DefaultBuildTime),
	}
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// String renders the multi-line form.
func (i Info) String() string {
	var b strings.Builder
	b.WriteString(ApplicationName + "\n")
	b.WriteString("Version: " + i.Version + "\n")
	b.WriteString("Commit: " + i.Commit + "\n")
	b.WriteString("Built: " + i.BuildTime + "\n")
	return b.String()
}

// Write prints either the bare version (short) or the full block.
func (i Info) Write(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, i.Version)
		return err
	}
	_, err := fmt.Fprint(w, i.String())
	return err
}

// SetBuildVars overrides the injected values. Intended for tests.
func SetBuildVars(ver, com, bt string) {
	version = ver
	commit = com
	buildTime = bt
}

// ResetBuildVars clears the injected values.
func ResetBuildVars() {
	SetBuildVars("", "", "")
}
