// Package rule compiles CEL expressions into envelope predicates so that
// processor enablement and match rules can be declared in configuration.
//
// Expressions see a single variable, event, holding a map view of the
// envelope:
//
//	event.id, event.type, event.namespace, event.timestamp
//	event.workspace_id, event.attempt_number
//	event.entity.id, event.entity.type
//	event.authors[i].id, event.authors[i].type
//	event.parent.id, event.parent.type   (only present when the payload has a parent)
//
// The helper normalize_id(string) mirrors predicate.NormalizeID.
package rule

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/predicate"
)

// ErrNotBoolean is returned when an expression does not evaluate to a bool.
var ErrNotBoolean = errors.New("scribe: rule result is not boolean")

const defaultCostLimit = 10_000

// Engine compiles and caches rule programs.
type Engine struct {
	env       *cel.Env
	logger    *slog.Logger
	costLimit uint64

	mu       sync.RWMutex
	prgCache map[string]cel.Program
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report evaluation failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCostLimit bounds the runtime cost of a single evaluation.
func WithCostLimit(limit uint64) Option {
	return func(e *Engine) { e.costLimit = limit }
}

// NewEngine creates a rule engine.
func NewEngine(opts ...Option) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("event", cel.MapType(cel.StringType, cel.DynType)),
		cel.Function("normalize_id",
			cel.Overload("normalize_id_string",
				[]*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					s, ok := v.Value().(string)
					if !ok {
						return types.NewErr("normalize_id: expected string")
					}
					return types.String(predicate.NormalizeID(s))
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	e := &Engine{
		env:       env,
		logger:    slog.Default(),
		costLimit: defaultCostLimit,
		prgCache:  make(map[string]cel.Program),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Compile parses and type-checks expr and returns the cached program.
func (e *Engine) Compile(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, hit := e.prgCache[expr]
	e.mu.RUnlock()
	if hit {
		return prg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, hit = e.prgCache[expr]; hit {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}

	p, err := e.env.Program(ast, cel.CostLimit(e.costLimit))
	if err != nil {
		return nil, fmt.Errorf("CEL program error: %w", err)
	}
	e.prgCache[expr] = p
	return p, nil
}

// Evaluate runs expr against evt.
func (e *Engine) Evaluate(expr string, evt *event.Envelope) (bool, error) {
	prg, err := e.Compile(expr)
	if err != nil {
		return false, err
	}
	return eval(prg, evt)
}

// Predicate compiles expr eagerly and returns a predicate over envelopes.
// An empty expression yields predicate.Always. Evaluation errors are logged
// and count as no match.
func (e *Engine) Predicate(expr string) (predicate.Func, error) {
	if expr == "" {
		return predicate.Always, nil
	}
	prg, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}

	return func(evt *event.Envelope) bool {
		if evt == nil {
			return false
		}
		ok, err := eval(prg, evt)
		if err != nil {
			e.logger.Warn("rule evaluation failed",
				"expr", expr,
				"event_id", evt.ID,
				"error", err,
			)
			return false
		}
		return ok
	}, nil
}

func eval(prg cel.Program, evt *event.Envelope) (bool, error) {
	out, _, err := prg.Eval(map[string]any{"event": Activation(evt)})
	if err != nil {
		return false, fmt.Errorf("CEL eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, ErrNotBoolean
	}
	return b, nil
}

// Activation returns the map view of evt exposed to expressions.
func Activation(evt *event.Envelope) map[string]any {
	if evt == nil {
		return map[string]any{}
	}

	authors := make([]any, 0, len(evt.Authors))
	for _, a := range evt.Authors {
		authors = append(authors, map[string]any{"id": a.ID, "type": string(a.Kind)})
	}

	m := map[string]any{
		"id":             evt.ID,
		"type":           string(evt.Type),
		"namespace":      evt.Type.Namespace(),
		"timestamp":      evt.Timestamp,
		"workspace_id":   evt.WorkspaceID,
		"attempt_number": int64(evt.AttemptNumber),
		"entity":         map[string]any{"id": evt.Entity.ID, "type": string(evt.Entity.Kind)},
		"authors":        authors,
	}
	if parent, ok := evt.ParentRef(); ok {
		m["parent"] = map[string]any{"id": parent.ID, "type": string(parent.Kind)}
	}
	return m
}
