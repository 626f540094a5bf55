package step

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

// Definition is an immutable, validated description of one reusable
// computation. It is safe to share across strategies.
type Definition struct {
	id          string
	description string
	reference   string
	fn          Function
	inputs      map[string]InputBinding
	outputs     map[string]OutputBinding
}

type definitionOptions struct {
	smokeTest   bool
	description string
}

// Option configures NewDefinition.
type Option func(*definitionOptions)

// WithSmokeTest invokes the function once and rejects it if it panics or
// omits a declared output key. Functions implementing SampleProvider are
// called with their sample arguments and must succeed. Other functions get
// nil placeholders, and an error return is accepted, so only panics and
// missing keys on a successful call are caught.
func WithSmokeTest() Option {
	return func(o *definitionOptions) {
		o.smokeTest = true
	}
}

// WithDescription attaches a human-readable description.
func WithDescription(description string) Option {
	return func(o *definitionOptions) {
		o.description = description
	}
}

// NewDefinition resolves reference through loader and validates the
// declared bindings against the function's parameters.
func NewDefinition(
	id string,
	reference string,
	inputs map[string]InputBinding,
	outputs map[string]OutputBinding,
	loader FunctionLoader,
	opts ...Option,
) (*Definition, error) {
	options := definitionOptions{smokeTest: false, description: ""}
	for _, opt := range opts {
		opt(&options)
	}

	if strings.TrimSpace(id) == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "step definition id cannot be empty")
	}

	if loader == nil {
		return nil, errors.NewLoadError(reference, "no function loader", nil)
	}

	fn, err := loader.Resolve(reference)
	if err != nil {
		return nil, errors.NewLoadError(reference, "function cannot be resolved", err)
	}

	if fn == nil {
		return nil, errors.NewLoadError(reference, "resolved value is not callable", nil)
	}

	def := &Definition{
		id:          id,
		description: options.description,
		reference:   reference,
		fn:          fn,
		inputs:      maps.Clone(inputs),
		outputs:     maps.Clone(outputs),
	}

	if def.inputs == nil {
		def.inputs = make(map[string]InputBinding)
	}

	if def.outputs == nil {
		def.outputs = make(map[string]OutputBinding)
	}

	if err := def.validateInputs(); err != nil {
		return nil, err
	}

	if err := def.validateOutputs(); err != nil {
		return nil, err
	}

	if options.smokeTest {
		if err := def.smokeTest(); err != nil {
			return nil, err
		}
	}

	return def, nil
}

func (d *Definition) validateInputs() error {
	accepted := make(map[string]struct{})
	for _, p := range d.fn.Params() {
		accepted[p] = struct{}{}
	}

	var missing, invalid []string

	aliases := make(map[InputBinding][]string)

	for param, binding := range d.inputs {
		if _, ok := accepted[param]; !ok {
			missing = append(missing, param)
		}

		if !binding.Source.Valid() || strings.TrimSpace(binding.Key) == "" {
			invalid = append(invalid, param)
		}

		aliases[binding] = append(aliases[binding], param)
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return errors.NewContractError(d.id, missing, "function does not accept parameters")
	}

	if len(invalid) > 0 {
		sort.Strings(invalid)

		return errors.NewContractError(d.id, invalid, "input bindings need a valid source and a key")
	}

	var ambiguous []string

	for binding, params := range aliases {
		if len(params) > 1 {
			sort.Strings(params)
			ambiguous = append(ambiguous, fmt.Sprintf("%s:%s <- %s", binding.Source, binding.Key, strings.Join(params, "|")))
		}
	}

	if len(ambiguous) > 0 {
		sort.Strings(ambiguous)

		return errors.NewContractError(d.id, ambiguous, "ambiguous input bindings")
	}

	return nil
}

func (d *Definition) validateOutputs() error {
	published := make(map[string]string)

	for resultKey, binding := range d.outputs {
		if strings.TrimSpace(resultKey) == "" {
			return errors.NewContractError(d.id, nil, "output binding with empty result key")
		}

		name := binding.Name(resultKey)
		if strings.TrimSpace(name) == "" {
			return errors.NewContractError(d.id, []string{resultKey}, "output binding with empty name")
		}

		if other, dup := published[name]; dup {
			keys := []string{other, resultKey}
			sort.Strings(keys)

			return errors.NewContractError(d.id, keys, fmt.Sprintf("result keys publish the same output %q", name))
		}

		published[name] = resultKey
	}

	return nil
}

func (d *Definition) smokeTest() (err error) {
	args := make(Args)
	for _, p := range d.fn.Params() {
		args[p] = nil
	}

	kind := "placeholder"

	sampler, sampled := d.fn.(SampleProvider)
	if sampled {
		args = sampler.SampleArgs()
		kind = "sample"
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.NewContractError(d.id, nil, fmt.Sprintf("function panicked on %s arguments: %v", kind, r))
		}
	}()

	raw, callErr := d.fn.Call(args)
	if callErr != nil {
		if sampled {
			return errors.NewContractError(d.id, nil, fmt.Sprintf("function failed on sample arguments: %v", callErr))
		}

		return nil
	}

	var missing []string

	for resultKey := range d.outputs {
		if _, ok := raw[resultKey]; !ok {
			missing = append(missing, resultKey)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return errors.NewContractError(d.id, missing, "function result lacks declared output keys")
	}

	return nil
}

// ID returns the definition id.
func (d *Definition) ID() string { return d.id }

// Description returns the optional description.
func (d *Definition) Description() string { return d.description }

// Reference returns the function reference the definition was built from.
func (d *Definition) Reference() string { return d.reference }

// Params returns the bound parameter names in sorted order.
func (d *Definition) Params() []string {
	params := slices.Collect(maps.Keys(d.inputs))
	sort.Strings(params)

	return params
}

// Input returns the binding of param.
func (d *Definition) Input(param string) (InputBinding, bool) {
	b, ok := d.inputs[param]

	return b, ok
}

// Inputs returns a copy of the input bindings.
func (d *Definition) Inputs() map[string]InputBinding { return maps.Clone(d.inputs) }

// Outputs returns a copy of the output bindings.
func (d *Definition) Outputs() map[string]OutputBinding { return maps.Clone(d.outputs) }

// ConfigKeys returns the keys read from the config source, sorted.
func (d *Definition) ConfigKeys() []string {
	var keys []string

	for _, b := range d.inputs {
		if b.Source == SourceConfig {
			keys = append(keys, b.Key)
		}
	}

	sort.Strings(keys)

	return keys
}

// Invoke calls the function and maps its raw result through the output
// bindings. Without output bindings the raw result is published as is.
func (d *Definition) Invoke(args Args) (Outputs, error) {
	raw, err := d.fn.Call(args)
	if err != nil {
		return nil, err
	}

	return d.MapOutputs(raw)
}

// MapOutputs applies the output bindings to a raw function result.
func (d *Definition) MapOutputs(raw Outputs) (Outputs, error) {
	if len(d.outputs) == 0 {
		return maps.Clone(raw), nil
	}

	mapped := make(Outputs, len(d.outputs))

	var missing []string

	for resultKey, binding := range d.outputs {
		value, ok := raw[resultKey]
		if !ok {
			missing = append(missing, resultKey)

			continue
		}

		mapped[binding.Name(resultKey)] = value
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return nil, errors.NewContractError(d.id, missing, "function result lacks declared output keys")
	}

	return mapped, nil
}
