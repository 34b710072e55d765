package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2024-03-01T12:00:00Z"},
	}

	tests := []struct {
		name        string
		version     string
		commit      string
		info        debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "ldflags win",
			version:     "v1.0.0",
			commit:      "abc",
			info:        debug.BuildInfo{Settings: vcs},
			wantVersion: "v1.0.0",
			wantCommit:  "abc",
		},
		{
			name:        "module version",
			info:        debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}},
			wantVersion: "v1.2.3",
		},
		{
			name:        "vcs data",
			info:        debug.BuildInfo{Main: debug.Module{Version: "(devel)"}, Settings: vcs},
			wantVersion: "dev-20240301",
			wantCommit:  "0123456-dirty",
		},
		{
			name: "nothing known",
			info: debug.BuildInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c := resolve(tt.version, tt.commit, &tt.info)
			if v != tt.wantVersion || c != tt.wantCommit {
				t.Errorf("resolve() = %q, %q, want %q, %q", v, c, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestFull(t *testing.T) {
	if !strings.Contains(Full(), Commit) {
		t.Errorf("Full() = %q, want commit %q", Full(), Commit)
	}
	if !strings.HasPrefix(UserAgent(), "co2monitor/") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
