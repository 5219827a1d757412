package sauce

import (
	"runtime"
	"testing"
)

func TestPlatformName(t *testing.T) {
	tests := []struct {
		goos     string
		release  string
		expected string
	}{
		{goos: "darwin", release: "23.1.0", expected: "Mac 23.1.0"},
		{goos: "windows", release: "10.0.19045", expected: "windows 10.0.19045"},
		{goos: "linux", release: "6.5.0-generic", expected: "linux"},
		{goos: "freebsd", release: "14.0", expected: "unknown"},
		{goos: "plan9", release: "", expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			if got := platformName(tt.goos, tt.release); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPlatformName_Host(t *testing.T) {
	got := PlatformName()
	if runtime.GOOS == "linux" && got != "linux" {
		t.Errorf("expected linux, got %q", got)
	}
	if got == "" {
		t.Error("platform name should never be empty")
	}
}
