package version

import "runtime"

// Set via -ldflags "-X portfolio/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
)

// Info is served by /api/version and printed by the version command.
func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"go":      runtime.Version(),
	}
}
