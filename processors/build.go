package processors

import (
	"fmt"
	"log/slog"

	"github.com/xraph/scribe/ai"
	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/platform"
	"github.com/xraph/scribe/predicate"
	"github.com/xraph/scribe/processor"
	"github.com/xraph/scribe/rule"
)

// maxContentRunes bounds the page text sent to the completion service.
const maxContentRunes = 12000

// Deps are the shared clients executors use.
type Deps struct {
	AI       ai.Completer
	Platform platform.API
	Rules    *rule.Engine
	Logger   *slog.Logger
}

// Module is a processor.Module built from configuration.
type Module struct {
	procs []processor.Processor
}

// compile-time interface check.
var _ processor.Module = (*Module)(nil)

// NewModule validates cfgs and builds their processors.
func NewModule(cfgs []Config, deps Deps) (*Module, error) {
	procs, err := Build(cfgs, deps)
	if err != nil {
		return nil, err
	}
	return &Module{procs: procs}, nil
}

// Processors implements processor.Module.
func (m *Module) Processors() []processor.Processor {
	out := make([]processor.Processor, len(m.procs))
	copy(out, m.procs)
	return out
}

// Build turns configurations into processors in order.
func Build(cfgs []Config, deps Deps) ([]processor.Processor, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	if deps.AI == nil || deps.Platform == nil {
		return nil, fmt.Errorf("%w: completion and platform clients are required", ErrInvalidConfig)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Rules == nil {
		engine, err := rule.NewEngine(rule.WithLogger(deps.Logger))
		if err != nil {
			return nil, err
		}
		deps.Rules = engine
	}

	out := make([]processor.Processor, 0, len(cfgs))
	for _, cfg := range cfgs {
		p, err := build(cfg, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func build(cfg Config, deps Deps) (processor.Processor, error) {
	if err := cfg.Validate(); err != nil {
		return processor.Processor{}, err
	}

	enabled := predicate.Const(!cfg.Disabled)
	if !cfg.Disabled && cfg.Enabled != "" {
		p, err := deps.Rules.Predicate(cfg.Enabled)
		if err != nil {
			return processor.Processor{}, fmt.Errorf("%w: %s: enabled: %w", ErrInvalidConfig, cfg.ID, err)
		}
		enabled = p
	}

	custom, err := deps.Rules.Predicate(cfg.When)
	if err != nil {
		return processor.Processor{}, fmt.Errorf("%w: %s: when: %w", ErrInvalidConfig, cfg.ID, err)
	}

	x := &executor{cfg: cfg, ai: deps.AI, api: deps.Platform, logger: deps.Logger.With("processor_id", cfg.ID)}

	var exec processor.Executor
	switch cfg.Kind {
	case KindSummarize:
		exec = x.summarize
	case KindClassify:
		exec = x.classify
	case KindCommentReply:
		exec = x.reply
	}

	when := BuiltinRule(cfg)
	if len(cfg.Types) > 0 {
		when = predicate.All(when, predicate.TypeGlob(cfg.Types...))
	}

	return processor.Processor{
		ID:       cfg.ID,
		Name:     cfg.Name,
		Enabled:  enabled,
		When:     predicate.All(when, custom),
		Executor: exec,
	}, nil
}

// BuiltinRule returns the match rule of cfg's kind before any CEL
// expression is applied.
func BuiltinRule(cfg Config) predicate.Func {
	pages := predicate.EntityEvent(event.KindPage)
	if cfg.CollectionID != "" {
		pages = predicate.EntityFromCollection(event.KindPage, cfg.CollectionID)
	}

	switch cfg.Kind {
	case KindSummarize:
		return predicate.All(predicate.OfType(event.PageCreated), pages, predicate.AuthoredByPerson)
	case KindClassify:
		// Bot authors are excluded so the processor's own update does not
		// trigger it again.
		return predicate.All(predicate.OfType(event.PagePropertiesUpdated), pages, predicate.AuthoredByPerson)
	case KindCommentReply:
		return predicate.All(predicate.OfType(event.CommentCreated), predicate.AuthoredByPerson)
	default:
		return predicate.Never
	}
}
