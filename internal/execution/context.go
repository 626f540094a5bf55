package execution

import (
	"cmp"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-steps/internal/strategy"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
)

// HistoryKey identifies one attempt. Attempt counts from 1 per (Timestamp, Step)
// so reevaluated steps get distinct keys within a bar.
type HistoryKey struct {
	Timestamp time.Time
	Step      string
	Attempt   int
}

// HistoryEntry is one recorded attempt.
type HistoryEntry struct {
	Key    HistoryKey
	Step   *strategy.StepInstance
	Result StepEvaluationResult
}

// published summarizes the values one instance has published under one name:
// the first value, and whether a different value has followed it.
type published struct {
	first any
	multi bool
}

// conflicts reports whether some value in the summary differs from value.
func (p *published) conflicts(value any) bool {
	return p.multi || !reflect.DeepEqual(p.first, value)
}

type attemptKey struct {
	timestamp time.Time
	step      *strategy.StepInstance
}

// Context is the per-run state shared by the steps of one strategy.
// It is not safe for concurrent mutation.
type Context struct {
	history  []HistoryEntry
	attempts map[attemptKey]int
	latest   map[string]any
	// producers records, per output name, what each instance has successfully
	// published.
	producers map[string]map[*strategy.StepInstance]*published
}

// NewContext creates an empty execution context.
func NewContext() *Context {
	return &Context{
		history:   nil,
		attempts:  make(map[attemptKey]int),
		latest:    make(map[string]any),
		producers: make(map[string]map[*strategy.StepInstance]*published),
	}
}

// AddResult records an attempt by inst at timestamp. A successful result
// updates the latest-output cache. If another instance has ever published one
// of the result's output names with a different value, an
// OutputCollisionError is returned and the context is left untouched.
func (c *Context) AddResult(timestamp time.Time, inst *strategy.StepInstance, result StepEvaluationResult) error {
	if inst == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "AddResult: step instance is nil")
	}

	if result.IsSuccess() {
		if err := c.checkCollisions(inst, result.outputs); err != nil {
			return err
		}
	}

	// Round(0) drops the monotonic reading so equal instants share a key.
	ak := attemptKey{timestamp: timestamp.Round(0).UTC(), step: inst}
	c.attempts[ak]++

	c.history = append(c.history, HistoryEntry{
		Key:    HistoryKey{Timestamp: timestamp, Step: inst.ID(), Attempt: c.attempts[ak]},
		Step:   inst,
		Result: result,
	})

	if !result.IsSuccess() {
		return nil
	}

	for name, value := range result.outputs {
		c.latest[name] = value

		byProducer, ok := c.producers[name]
		if !ok {
			byProducer = make(map[*strategy.StepInstance]*published)
			c.producers[name] = byProducer
		}

		entry, ok := byProducer[inst]
		if !ok {
			byProducer[inst] = &published{first: value}

			continue
		}

		if !entry.multi && !reflect.DeepEqual(entry.first, value) {
			entry.multi = true
		}
	}

	return nil
}

func (c *Context) checkCollisions(inst *strategy.StepInstance, outputs map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(outputs)) {
		value := outputs[name]
		byProducer := c.producers[name]

		producers := slices.SortedFunc(maps.Keys(byProducer), func(x, y *strategy.StepInstance) int {
			return cmp.Compare(x.ID(), y.ID())
		})

		for _, producer := range producers {
			if producer == inst {
				continue
			}

			if byProducer[producer].conflicts(value) {
				return &errors.OutputCollisionError{
					Output:   name,
					Existing: producer.ID(),
					Incoming: inst.ID(),
				}
			}
		}
	}

	return nil
}

// LatestOutput returns the most recent successfully produced value for name.
func (c *Context) LatestOutput(name string) optional.Option[any] {
	v, ok := c.latest[name]
	if !ok {
		return optional.None[any]()
	}

	return optional.Some(v)
}

// HistoryFor returns every attempt by inst, oldest first.
func (c *Context) HistoryFor(inst *strategy.StepInstance) []HistoryEntry {
	var entries []HistoryEntry

	for _, entry := range c.history {
		if entry.Step == inst {
			entries = append(entries, entry)
		}
	}

	return entries
}

// HistoryAt returns every attempt by inst at timestamp, oldest first.
func (c *Context) HistoryAt(timestamp time.Time, inst *strategy.StepInstance) []HistoryEntry {
	var entries []HistoryEntry

	for _, entry := range c.history {
		if entry.Step == inst && entry.Key.Timestamp.Equal(timestamp) {
			entries = append(entries, entry)
		}
	}

	return entries
}

// History returns every attempt in insertion order.
func (c *Context) History() []HistoryEntry {
	entries := make([]HistoryEntry, len(c.history))
	copy(entries, c.history)

	return entries
}

// Len returns the number of recorded attempts.
func (c *Context) Len() int { return len(c.history) }

// Snapshot returns a copy of the latest-output cache.
func (c *Context) Snapshot() map[string]any { return maps.Clone(c.latest) }

// Last returns the most recently recorded attempt.
func (c *Context) Last() (HistoryEntry, bool) {
	if len(c.history) == 0 {
		return HistoryEntry{}, false
	}

	return c.history[len(c.history)-1], true
}
