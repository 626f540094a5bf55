package step

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

// ResultKey is the key a scalar function result is wrapped under.
const ResultKey = "result"

// Outputs is the string-keyed result of one step invocation.
type Outputs map[string]any

// Function is a step computation: it accepts the declared keyword-argument
// set and returns a string-keyed result.
type Function interface {
	// Params returns the parameter names the function accepts.
	Params() []string
	// Call invokes the function.
	Call(args Args) (Outputs, error)
}

// SampleProvider is implemented by functions that can supply representative
// arguments for the definition smoke test.
type SampleProvider interface {
	SampleArgs() Args
}

// FunctionLoader resolves a function reference to a callable once, at
// definition construction time.
type FunctionLoader interface {
	Resolve(reference string) (Function, error)
}

type mapFunction struct {
	params []string
	fn     func(args Args) (Outputs, error)
}

func (f *mapFunction) Params() []string { return slices.Clone(f.params) }

func (f *mapFunction) Call(args Args) (Outputs, error) { return f.fn(args) }

// Func adapts a map-returning Go function into a Function.
func Func(params []string, fn func(args Args) (Outputs, error)) Function {
	if fn == nil {
		return nil
	}

	return &mapFunction{params: slices.Clone(params), fn: fn}
}

// ScalarFunc adapts a single-value Go function into a Function. The value is
// wrapped as {"result": v}.
func ScalarFunc(params []string, fn func(args Args) (any, error)) Function {
	if fn == nil {
		return nil
	}

	return &mapFunction{
		params: slices.Clone(params),
		fn: func(args Args) (Outputs, error) {
			v, err := fn(args)
			if err != nil {
				return nil, err
			}

			return Outputs{ResultKey: v}, nil
		},
	}
}

type sampledFunction struct {
	Function
	sample Args
}

func (f *sampledFunction) SampleArgs() Args { return maps.Clone(f.sample) }

// WithSample attaches sample arguments to fn so smoke tests exercise a real
// call instead of placeholders.
func WithSample(fn Function, sample Args) Function {
	if fn == nil {
		return nil
	}

	return &sampledFunction{Function: fn, sample: maps.Clone(sample)}
}

// FunctionCatalog is an in-process FunctionLoader keyed by dotted reference
// (e.g. "builtin.sma").
type FunctionCatalog struct {
	functions map[string]Function
	mu        sync.RWMutex
}

// NewFunctionCatalog creates an empty catalog.
func NewFunctionCatalog() *FunctionCatalog {
	return &FunctionCatalog{
		functions: make(map[string]Function),
		mu:        sync.RWMutex{},
	}
}

// Register adds a function under reference.
func (c *FunctionCatalog) Register(reference string, fn Function) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reference == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "Register: function reference is empty")
	}

	if fn == nil {
		return errors.Newf(errors.ErrCodeInvalidParameter, "Register: function %s is nil", reference)
	}

	if _, exists := c.functions[reference]; exists {
		return fmt.Errorf("Register: function %s already registered", reference)
	}

	c.functions[reference] = fn

	return nil
}

// Resolve implements FunctionLoader.
func (c *FunctionCatalog) Resolve(reference string) (Function, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fn, exists := c.functions[reference]
	if !exists {
		return nil, errors.NewLoadError(reference, "function not registered", nil)
	}

	return fn, nil
}

// List returns every registered reference, sorted.
func (c *FunctionCatalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	refs := make([]string, 0, len(c.functions))
	for ref := range c.functions {
		refs = append(refs, ref)
	}

	sort.Strings(refs)

	return refs
}
