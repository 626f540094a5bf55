package version

import (
	"testing"

	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCatalogCompatibility(t *testing.T) {
	tests := []struct {
		name           string
		engineVersion  string
		catalogVersion string
		requires       string
		expectError    bool
		errorContains  string
	}{
		{
			name:           "exact match",
			engineVersion:  "0.3.0",
			catalogVersion: "0.3.0",
		},
		{
			name:           "patch differs",
			engineVersion:  "0.3.4",
			catalogVersion: "0.3.0",
		},
		{
			name:           "minor differs",
			engineVersion:  "0.4.0",
			catalogVersion: "0.3.0",
			expectError:    true,
			errorContains:  "minor version mismatch",
		},
		{
			name:           "major differs",
			engineVersion:  "1.3.0",
			catalogVersion: "0.3.0",
			expectError:    true,
			errorContains:  "major version mismatch",
		},
		{
			name:           "engine is main",
			engineVersion:  "main",
			catalogVersion: "9.9.9",
		},
		{
			name:           "catalog is main",
			engineVersion:  "0.3.0",
			catalogVersion: "main",
		},
		{
			name:           "v prefix on both",
			engineVersion:  "v0.3.0",
			catalogVersion: "v0.3.1",
		},
		{
			name:          "no catalog version",
			engineVersion: "0.3.0",
		},
		{
			name:           "constraint satisfied",
			engineVersion:  "0.5.2",
			catalogVersion: "0.3.0",
			requires:       ">= 0.3, < 1.0",
		},
		{
			name:           "constraint not satisfied",
			engineVersion:  "1.0.0",
			catalogVersion: "0.3.0",
			requires:       ">= 0.3, < 1.0",
			expectError:    true,
			errorContains:  "does not satisfy",
		},
		{
			name:           "invalid constraint",
			engineVersion:  "0.3.0",
			catalogVersion: "0.3.0",
			requires:       "not a constraint",
			expectError:    true,
			errorContains:  "invalid version constraint",
		},
		{
			name:           "invalid engine version",
			engineVersion:  "invalid",
			catalogVersion: "0.3.0",
			expectError:    true,
			errorContains:  "invalid engine version",
		},
		{
			name:           "invalid catalog version",
			engineVersion:  "0.3.0",
			catalogVersion: "x.y",
			expectError:    true,
			errorContains:  "invalid catalog version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCatalogCompatibility(tt.engineVersion, tt.catalogVersion, tt.requires)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckCatalogCompatibilityCodes(t *testing.T) {
	err := CheckCatalogCompatibility("1.0.0", "0.3.0", "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVersionMismatch, errors.GetCode(err))

	err = CheckCatalogCompatibility("bogus", "0.3.0", "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidVersion, errors.GetCode(err))
}

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v9.9.9"
	assert.Equal(t, "v9.9.9", GetVersion())
}
