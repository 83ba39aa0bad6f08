package processor

import (
	"fmt"

	"github.com/xraph/scribe/predicate"
)

// Registry is an ordered, immutable set of processors. It is safe for
// concurrent use because nothing mutates it after NewRegistry returns.
type Registry struct {
	procs []Processor
	index map[string]int
}

// NewRegistry validates procs and builds a registry in the given order.
// Nil predicates are replaced with predicate.Never.
func NewRegistry(procs ...Processor) (*Registry, error) {
	r := &Registry{
		procs: make([]Processor, 0, len(procs)),
		index: make(map[string]int, len(procs)),
	}

	for i, p := range procs {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: processor at position %d has no id", ErrInvalidProcessor, i)
		}
		if p.Executor == nil {
			return nil, fmt.Errorf("%w: processor %q has no executor", ErrInvalidProcessor, p.ID)
		}
		if _, dup := r.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProcessor, p.ID)
		}

		p.Enabled = predicate.OrNever(p.Enabled)
		p.When = predicate.OrNever(p.When)
		if p.Name == "" {
			p.Name = p.ID
		}

		r.index[p.ID] = len(r.procs)
		r.procs = append(r.procs, p)
	}

	return r, nil
}

// All returns a copy of the processors in registry order.
func (r *Registry) All() []Processor {
	out := make([]Processor, len(r.procs))
	copy(out, r.procs)
	return out
}

// Len returns the number of registered processors.
func (r *Registry) Len() int { return len(r.procs) }

// Get returns the processor with the given id.
func (r *Registry) Get(id string) (Processor, bool) {
	i, ok := r.index[id]
	if !ok {
		return Processor{}, false
	}
	return r.procs[i], true
}

// Each calls fn for every processor in order until fn returns false.
func (r *Registry) Each(fn func(Processor) bool) {
	for _, p := range r.procs {
		if !fn(p) {
			return
		}
	}
}
