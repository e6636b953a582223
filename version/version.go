package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Tagged reports whether the binary was built from a release tag.
// Version strings that do not parse as semver are treated as untagged.
func (i Info) Tagged() bool {
	if i.Version == "" || i.Version == "dev" {
		return false
	}
	_, err := semver.NewVersion(i.Version)
	return err == nil
}

// String returns a human-readable version string
func (i Info) String() string {
	if i.Tagged() {
		return fmt.Sprintf("fbstubs %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
	}
	return fmt.Sprintf("fbstubs dev (commit %s, built %s)", i.Short(), i.BuildTime)
}

// UserAgent identifies outgoing documentation requests.
func (i Info) UserAgent() string {
	if i.Tagged() {
		return "fbstubs/" + i.Version
	}
	return "fbstubs/dev+" + i.Short()
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
