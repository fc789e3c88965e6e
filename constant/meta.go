// Package constant holds build metadata and fixed strings shared across packages.
package constant

import _ "embed"

const (
	App     = "scrubline"
	Version = "0.1.0"

	// UserAgent is sent with playlist, segment and release requests.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Releases is queried by the update check.
	Releases = "https://api.github.com/repos/scrubline/scrubline/releases/latest"
)

// Build metadata, injected at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// runtime.GOOS values with platform specific install hints.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

//go:embed ascii.txt
var AsciiArtLogo string
