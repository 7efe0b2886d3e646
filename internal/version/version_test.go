package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	Version, Commit, Date = "1.2.3", "unknown", "unknown"
	if got := String(); !strings.HasPrefix(got, "posterize version 1.2.3 (") {
		t.Errorf("String() = %q", got)
	}

	Commit, Date = "abc", "2026-01-01T00:00:00Z"
	if got := String(); !strings.Contains(got, "commit: abc,") {
		t.Errorf("short commit not handled: %q", got)
	}

	Commit = "0123456789abcdef"
	if got := String(); !strings.Contains(got, "commit: 01234567,") {
		t.Errorf("commit not shortened: %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "0.9.0"
	if got := UserAgent(); got != "posterize/0.9.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}
