// Package version holds build information and the live preview protocol version.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/teranos/folio/errors"
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

// Protocol is the live preview protocol spoken by this server.
const Protocol = "1.0.0"

// ProtocolConstraint is the range of client protocol versions the server accepts.
const ProtocolConstraint = "^1.0.0"

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	Protocol   string `json:"protocol"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		Protocol:   Protocol,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	if i.Version != "dev" {
		return fmt.Sprintf("folio %s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildTime)
	}
	return fmt.Sprintf("folio dev (commit %s, built %s)", i.CommitHash, i.BuildTime)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// CheckProtocol reports whether a client speaking protocol v can talk to this server.
func CheckProtocol(v string) error {
	clientVer, err := semver.NewVersion(v)
	if err != nil {
		return errors.WithHint(
			errors.Wrapf(errors.ErrInvalidRequest, "invalid protocol version %q", v),
			"send a semantic version such as "+Protocol)
	}
	constraint, err := semver.NewConstraint(ProtocolConstraint)
	if err != nil {
		return errors.Wrap(err, "invalid protocol constraint")
	}
	if !constraint.Check(clientVer) {
		return errors.Newf("client speaks protocol %s, server requires %s", v, ProtocolConstraint)
	}
	return nil
}
