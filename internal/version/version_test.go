package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if info["version"] == "" || info["commit"] == "" {
		t.Fatalf("expected version and commit, got %v", info)
	}
	if !strings.HasPrefix(info["go"], "go") {
		t.Fatalf("unexpected go version %q", info["go"])
	}
}
