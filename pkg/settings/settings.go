// Package settings provides build metadata, per-run options, and context
// helpers shared by the cloudx commands and the interactive browser.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "cloudx"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigFile  string
	Region      string
	Profile     string
	Interactive bool
	NoColor     bool
}

// NewCliParams returns the defaults used when cloudx is started from the CLI.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Interactive: true,
		NoColor:     false,
	}
}
