package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

// CheckCatalogCompatibility checks that a step catalog can be loaded by the engine.
//
// When requires is set it is treated as a semver constraint (e.g. ">= 0.3, < 1.0")
// that the engine version must satisfy. Otherwise the catalog version must share
// the engine's major and minor version; patch versions may differ.
// A "main" engine or catalog version is a development build and always passes.
func CheckCatalogCompatibility(engineVersion, catalogVersion, requires string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	catalogVersion = strings.TrimPrefix(catalogVersion, "v")

	if engineVersion == "main" || catalogVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	if strings.TrimSpace(requires) != "" {
		constraint, err := semver.NewConstraint(requires)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid version constraint '%s'", requires)
		}

		if !constraint.Check(engineSemver) {
			return errors.Newf(errors.ErrCodeVersionMismatch,
				"engine version %s does not satisfy catalog requirement %s", engineSemver, requires)
		}

		return nil
	}

	if catalogVersion == "" {
		return nil
	}

	catalogSemver, err := semver.NewVersion(catalogVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid catalog version '%s'", catalogVersion)
	}

	if engineSemver.Major() != catalogSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: engine is %d.x.x but catalog requires %d.x.x",
			engineSemver.Major(), catalogSemver.Major())
	}

	if engineSemver.Minor() != catalogSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: engine is %d.%d.x but catalog requires %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			catalogSemver.Major(), catalogSemver.Minor())
	}

	return nil
}
