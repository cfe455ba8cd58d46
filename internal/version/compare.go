package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// CheckVersionCompatibility checks whether a config written for configVersion can run on libraryVersion.
// Returns nil if compatible, an ErrCodeVersionMismatch error otherwise.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
//
// Examples:
//   - Library 1.2.0, Config 1.2.0 -> OK (exact match)
//   - Library 1.2.1, Config 1.2.0 -> OK (patch differs)
//   - Library 1.3.0, Config 1.2.0 -> ERROR (minor differs)
//   - Library 2.0.0, Config 1.2.0 -> ERROR (major differs)
//   - Library main, Config 1.2.0 -> OK (dev build, skip check)
func CheckVersionCompatibility(libraryVersion, configVersion string) error {
	// Strip 'v' prefix if present for consistency
	libraryVersion = strings.TrimPrefix(libraryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if libraryVersion == "main" || configVersion == "main" {
		return nil
	}

	librarySemver, err := semver.NewVersion(libraryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid library version '%s'", libraryVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid config version '%s'", configVersion)
	}

	if librarySemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: library is %d.x.x but config requires %d.x.x",
			librarySemver.Major(), configSemver.Major())
	}

	if librarySemver.Minor() != configSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "minor version mismatch: library is %d.%d.x but config requires %d.%d.x",
			librarySemver.Major(), librarySemver.Minor(),
			configSemver.Major(), configSemver.Minor())
	}

	return nil
}
