// Package processors builds processors from declarative configuration.
//
// Each configured processor has a kind with a built-in match rule and
// executor. Optional CEL expressions narrow the built-in rule further:
//
//	processors:
//	  - id: summarize-notes
//	    kind: summarize
//	    collection_id: 2f4dcaad-a6d6-4b3e-9b6f-0e5d1a2b3c4d
//	    property: Summary
//	    when: 'event.workspace_id == "ws-1"'
//	  - id: reply-pages
//	    kind: comment_reply
//	    types: ["comment.*"]
package processors

import (
	"errors"
	"fmt"

	"github.com/xraph/scribe/predicate"
)

// ErrInvalidConfig is returned for a processor configuration that cannot be
// built.
var ErrInvalidConfig = errors.New("scribe: invalid processor config")

// Kind selects a built-in processor behaviour.
type Kind string

// Processor kinds.
const (
	// KindSummarize summarizes pages created in a collection by a person.
	KindSummarize Kind = "summarize"

	// KindClassify picks one of a set of options for pages whose properties
	// a person updated.
	KindClassify Kind = "classify"

	// KindCommentReply answers comments written by a person.
	KindCommentReply Kind = "comment_reply"
)

// Config declares one processor.
type Config struct {
	ID   string `json:"id" yaml:"id" mapstructure:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Kind Kind   `json:"kind" yaml:"kind" mapstructure:"kind"`

	// Disabled turns the processor off without removing it.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty" mapstructure:"disabled"`

	// Enabled is an optional CEL kill switch evaluated per event.
	Enabled string `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled"`

	// When is an optional CEL expression ANDed with the kind's rule.
	When string `json:"when,omitempty" yaml:"when,omitempty" mapstructure:"when"`

	// Types are event type globs ("page.*", "*.created"). When set, an
	// event must match one of them in addition to the kind's rule.
	Types []string `json:"types,omitempty" yaml:"types,omitempty" mapstructure:"types"`

	// CollectionID restricts page kinds to one database or data source.
	CollectionID string `json:"collection_id,omitempty" yaml:"collection_id,omitempty" mapstructure:"collection_id"`

	// Property is the page property written by summarize and classify.
	// Summarize appends paragraphs to the page when it is empty.
	Property string `json:"property,omitempty" yaml:"property,omitempty" mapstructure:"property"`

	// Options are the allowed classify answers.
	Options []string `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`

	// Prompt overrides the kind's system prompt.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`
}

// Validate checks the fields the kind requires.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidConfig)
	}
	for _, p := range c.Types {
		if !predicate.ValidPattern(p) {
			return fmt.Errorf("%w: %s: bad type pattern %q", ErrInvalidConfig, c.ID, p)
		}
	}
	switch c.Kind {
	case KindSummarize, KindCommentReply:
	case KindClassify:
		if c.Property == "" {
			return fmt.Errorf("%w: %s: classify requires property", ErrInvalidConfig, c.ID)
		}
		if len(c.Options) == 0 {
			return fmt.Errorf("%w: %s: classify requires options", ErrInvalidConfig, c.ID)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidConfig, c.ID, c.Kind)
	}
	return nil
}

const (
	summarizePrompt = "You summarize workspace pages. Reply with two or three plain sentences and no preamble."

	classifyPrompt = "You classify workspace pages. Reply with exactly one of the allowed options and nothing else."

	replyPrompt = "You reply to comments on workspace pages. Be brief, concrete and friendly. Reply in plain text."
)

func (c Config) systemPrompt() string {
	if c.Prompt != "" {
		return c.Prompt
	}
	switch c.Kind {
	case KindSummarize:
		return summarizePrompt
	case KindClassify:
		return classifyPrompt
	default:
		return replyPrompt
	}
}
