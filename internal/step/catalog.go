package step

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-steps/internal/version"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RawInputBinding is the serialized form of an InputBinding.
type RawInputBinding struct {
	Source  string `yaml:"source" json:"source" jsonschema:"title=Source,enum=runtime,enum=config,enum=market" validate:"required,oneof=runtime config market"`
	Mapping string `yaml:"mapping" json:"mapping" jsonschema:"title=Mapping,description=Lookup key in the source" validate:"required"`
}

// RawStepDefinition is the serialized form of a Definition.
type RawStepDefinition struct {
	ID             string                     `yaml:"id" json:"id" jsonschema:"title=ID" validate:"required"`
	Function       string                     `yaml:"function" json:"function" jsonschema:"title=Function,description=Reference of the function to call (e.g. technical.sma)" validate:"required"`
	Description    string                     `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"title=Description"`
	SmokeTest      bool                       `yaml:"smoke_test,omitempty" json:"smoke_test,omitempty" jsonschema:"title=Smoke Test,description=Invoke the function once with placeholder arguments when loading"`
	InputBindings  map[string]RawInputBinding `yaml:"input_bindings,omitempty" json:"input_bindings,omitempty" jsonschema:"title=Input Bindings" validate:"dive"`
	OutputBindings map[string]string          `yaml:"output_bindings,omitempty" json:"output_bindings,omitempty" jsonschema:"title=Output Bindings,description=Result key to output name; _ publishes the value under the result key"`
}

// RawCatalog is a YAML step catalog.
type RawCatalog struct {
	Version  string              `yaml:"version" json:"version" jsonschema:"title=Version,description=Engine version the catalog was written for"`
	Requires string              `yaml:"requires,omitempty" json:"requires,omitempty" jsonschema:"title=Requires,description=Semver constraint on the engine version"`
	Steps    []RawStepDefinition `yaml:"steps" json:"steps" jsonschema:"title=Steps" validate:"required,min=1,dive"`
}

// ParseCatalog decodes and validates a YAML step catalog.
func ParseCatalog(data []byte) (RawCatalog, error) {
	var raw RawCatalog

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return RawCatalog{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse step catalog", err)
	}

	if err := validator.New().Struct(raw); err != nil {
		return RawCatalog{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid step catalog", err)
	}

	return raw, nil
}

// NewDefinitionFromRaw builds a Definition from its serialized form.
func NewDefinitionFromRaw(raw RawStepDefinition, loader FunctionLoader) (*Definition, error) {
	inputs := make(map[string]InputBinding, len(raw.InputBindings))
	for param, b := range raw.InputBindings {
		inputs[param] = InputBinding{Source: Source(b.Source), Key: b.Mapping}
	}

	outputs := make(map[string]OutputBinding, len(raw.OutputBindings))
	for resultKey, target := range raw.OutputBindings {
		outputs[resultKey] = OutputBinding{Target: target}
	}

	opts := []Option{WithDescription(raw.Description)}
	if raw.SmokeTest {
		opts = append(opts, WithSmokeTest())
	}

	return NewDefinition(raw.ID, raw.Function, inputs, outputs, loader, opts...)
}

// BuildRegistry builds every definition of a parsed catalog into a new Registry.
func BuildRegistry(raw RawCatalog, loader FunctionLoader) (*Registry, error) {
	registry := NewRegistry()

	for _, rawDef := range raw.Steps {
		def, err := NewDefinitionFromRaw(rawDef, loader)
		if err != nil {
			return nil, err
		}

		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// LoadCatalog reads a YAML step catalog from path, checks it against
// engineVersion and builds a Registry.
func LoadCatalog(path string, loader FunctionLoader, engineVersion string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataNotFound, fmt.Sprintf("failed to read step catalog %s", path), err)
	}

	raw, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}

	if err := version.CheckCatalogCompatibility(engineVersion, raw.Version, raw.Requires); err != nil {
		return nil, fmt.Errorf("step catalog %s: %w", path, err)
	}

	return BuildRegistry(raw, loader)
}
