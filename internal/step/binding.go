package step

// Source identifies where the value of an input binding comes from.
type Source string

const (
	// SourceRuntime reads the latest successful output of an earlier step.
	SourceRuntime Source = "runtime"
	// SourceConfig reads a static value from the step instance configuration.
	SourceConfig Source = "config"
	// SourceMarket reads from the bar being processed: bar, window, closes or one of the bar fields.
	SourceMarket Source = "market"
)

// DirectMarker is the output binding target that publishes a result value
// unwrapped, under its own result key.
const DirectMarker = "_"

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceRuntime, SourceConfig, SourceMarket:
		return true
	default:
		return false
	}
}

// InputBinding maps a function parameter to a value source and a lookup key in it.
type InputBinding struct {
	Source Source
	Key    string
}

// Runtime is shorthand for an InputBinding reading a runtime output.
func Runtime(key string) InputBinding {
	return InputBinding{Source: SourceRuntime, Key: key}
}

// Config is shorthand for an InputBinding reading a static config value.
func Config(key string) InputBinding {
	return InputBinding{Source: SourceConfig, Key: key}
}

// Market is shorthand for an InputBinding reading from the current bar.
func Market(key string) InputBinding {
	return InputBinding{Source: SourceMarket, Key: key}
}

// OutputBinding maps a function result key to the name it is published under.
type OutputBinding struct {
	Target string
}

// Direct returns an OutputBinding carrying the direct marker.
func Direct() OutputBinding {
	return OutputBinding{Target: DirectMarker}
}

// As returns an OutputBinding publishing under name.
func As(name string) OutputBinding {
	return OutputBinding{Target: name}
}

// IsDirect reports whether the binding publishes the value under the result key.
func (o OutputBinding) IsDirect() bool {
	return o.Target == DirectMarker || o.Target == ""
}

// Name resolves the published output name for resultKey.
func (o OutputBinding) Name(resultKey string) string {
	if o.IsDirect() {
		return resultKey
	}

	return o.Target
}
