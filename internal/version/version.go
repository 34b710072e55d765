package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/gtudan/co2monitor/internal/version.Version=v1.2.3 \
//	                   -X github.com/gtudan/co2monitor/internal/version.Commit=abc123"
//
// Unset values are filled from the embedded build info, or "dev"/"unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		Version, Commit = resolve(Version, Commit, info)
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// resolve fills missing version and commit from build info. A tagged module
// version (go install ...@v1.2.3) wins over VCS data.
func resolve(version, commit string, info *debug.BuildInfo) (string, string) {
	if version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}

	var revision, modified, vcsTime string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if commit == "" && revision != "" {
		commit = revision
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if modified == "true" {
			commit += "-dirty"
		}
	}

	// vcs.time is RFC 3339; the date part is enough for a dev build
	if version == "" && len(vcsTime) >= 10 {
		version = "dev-" + strings.ReplaceAll(vcsTime[:10], "-", "")
	}
	return version, commit
}

// Full returns the version string including commit and Go version
func Full() string {
	return fmt.Sprintf("%s (commit: %s, %s)", Version, Commit, runtime.Version())
}

// UserAgent identifies this build in outgoing requests and mDNS TXT records
func UserAgent() string {
	return "co2monitor/" + Version
}
