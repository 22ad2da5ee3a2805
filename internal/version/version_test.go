package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-03-04T10:00:00Z"},
	}

	tests := []struct {
		name        string
		version     string
		commit      string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
	}{
		{"from vcs", "", "", settings, "dev-20260304", "0123456-dirty"},
		{"ldflags win", "v1.2.3", "abc", settings, "v1.2.3", "abc"},
		{"no vcs", "", "", nil, "", ""},
		{"short revision", "", "", []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}}, "", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c := fromSettings(tt.version, tt.commit, tt.settings)
			if v != tt.wantVersion || c != tt.wantCommit {
				t.Errorf("fromSettings() = %q, %q, want %q, %q", v, c, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	d := Details([]string{"v1", "v2"})
	for _, want := range []string{"version:", "commit:", "protocols: v1, v2"} {
		if !strings.Contains(d, want) {
			t.Errorf("Details() missing %q:\n%s", want, d)
		}
	}
	if !strings.Contains(Full(), "commit:") {
		t.Errorf("Full() = %q", Full())
	}
}
