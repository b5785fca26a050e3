// Package version carries build metadata stamped in with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Set at build time, e.g.
// -X github.com/grovetools/rnsgit/version.Version=v0.3.0
var (
	Version   = "dev"
	Commit    = "none"
	Branch    = "unknown"
	BuildDate = "unknown"
)

// Info holds all the versioning information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the version information of the running binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Branch:    Branch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Lines renders the version block printed by `rnsgit version`, headed by name.
func (i Info) Lines(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", name, i.Version)
	for _, kv := range [][2]string{
		{"Commit", i.Commit},
		{"Branch", i.Branch},
		{"Built", i.BuildDate},
		{"Go", i.GoVersion},
		{"Platform", i.Platform},
	} {
		fmt.Fprintf(&b, "  %-10s %s\n", kv[0]+":", kv[1])
	}
	return b.String()
}
