package step

import (
	"fmt"
	"math"
)

// Args is the keyword-argument set passed to a Function.
type Args map[string]any

// Float returns the named argument as a float64. YAML and JSON decoders hand
// numbers over as int or float64, so both are accepted.
func (a Args) Float(name string) (float64, error) {
	v, ok := a[name]
	if !ok {
		return 0, fmt.Errorf("argument %s is missing", name)
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %s: expected number, got %T", name, v)
	}
}

// Int returns the named argument as an int. Floats with a fractional part are rejected.
func (a Args) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok {
		return 0, fmt.Errorf("argument %s is missing", name)
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("argument %s: expected integer, got %v", name, n)
		}

		return int(n), nil
	default:
		return 0, fmt.Errorf("argument %s: expected integer, got %T", name, v)
	}
}

// String returns the named argument as a string.
func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok {
		return "", fmt.Errorf("argument %s is missing", name)
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s: expected string, got %T", name, v)
	}

	return s, nil
}

// StringOr returns the named string argument, or def when it is absent or nil.
func (a Args) StringOr(name, def string) (string, error) {
	if v, ok := a[name]; !ok || v == nil {
		return def, nil
	}

	return a.String(name)
}
