// Package version carries build metadata injected at link time.
package version

// Set via -ldflags "-X github.com/mlmtools/mlm-inventory/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// Version returns the release version.
func Version() string {
	return version
}

// BuildID returns the build identifier.
func BuildID() string {
	return buildID
}

// String returns the version with its build ID, as printed by --version.
func String() string {
	return version + " (build: " + buildID + ")"
}
