// Package processor defines the unit of work the dispatcher selects per
// event and the immutable registry that holds them.
package processor

import (
	"context"
	"errors"

	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/predicate"
)

var (
	// ErrDuplicateProcessor is returned when two processors share an id.
	ErrDuplicateProcessor = errors.New("scribe: duplicate processor id")

	// ErrInvalidProcessor is returned when a processor has no id or no executor.
	ErrInvalidProcessor = errors.New("scribe: invalid processor")
)

// Executor performs the side-effecting work of a processor. It returns true
// on full success and false on a handled failure. Unexpected failures may be
// returned as an error; the dispatcher treats them like false.
type Executor func(ctx context.Context, evt *event.Envelope) (bool, error)

// Processor pairs match rules with an executor.
type Processor struct {
	// ID identifies the processor in logs and results.
	ID string `json:"id"`

	// Name is a human-readable label.
	Name string `json:"name"`

	// Enabled is a kill switch independent of event content. Use
	// predicate.Const for a fixed value. Nil never matches.
	Enabled predicate.Func `json:"-"`

	// When is the content-based match rule. Nil never matches.
	When predicate.Func `json:"-"`

	// Executor runs when both Enabled and When match.
	Executor Executor `json:"-"`
}

// Module contributes processors to a registry.
type Module interface {
	Processors() []Processor
}

// ModuleFunc adapts a function to the Module interface.
type ModuleFunc func() []Processor

// Processors implements Module.
func (f ModuleFunc) Processors() []Processor { return f() }

// Collect flattens modules in order.
func Collect(modules ...Module) []Processor {
	var out []Processor
	for _, m := range modules {
		if m == nil {
			continue
		}
		out = append(out, m.Processors()...)
	}
	return out
}
