// Package predicate provides total, side-effect-free tests over webhook
// envelopes and combinators for building processor match rules.
//
// Every function returns false for a nil envelope or a missing field.
package predicate

import (
	"strings"

	"github.com/xraph/scribe/event"
)

// Func is a match rule evaluated against a single envelope.
type Func func(evt *event.Envelope) bool

// Const returns a predicate that ignores the envelope and returns b.
func Const(b bool) Func {
	if b {
		return Always
	}
	return Never
}

// Always matches every envelope.
func Always(*event.Envelope) bool { return true }

// Never matches no envelope.
func Never(*event.Envelope) bool { return false }

// OrNever returns f, or Never when f is nil.
func OrNever(f Func) Func {
	if f == nil {
		return Never
	}
	return f
}

// All matches when every predicate matches. It evaluates left to right and
// stops at the first miss. All() matches everything.
func All(fs ...Func) Func {
	return func(evt *event.Envelope) bool {
		for _, f := range fs {
			if f == nil || !f(evt) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one predicate matches. Any() matches nothing.
func Any(fs ...Func) Func {
	return func(evt *event.Envelope) bool {
		for _, f := range fs {
			if f != nil && f(evt) {
				return true
			}
		}
		return false
	}
}

// Not inverts f. A nil f is treated as Never, so Not(nil) matches everything.
func Not(f Func) Func {
	f = OrNever(f)
	return func(evt *event.Envelope) bool { return !f(evt) }
}

// OfType matches envelopes whose type is one of types.
func OfType(types ...event.Type) Func {
	return func(evt *event.Envelope) bool { return IsEventOfType(evt, types...) }
}

// TypeGlob matches envelopes whose type matches any of the patterns.
// See TypeMatches for the pattern syntax.
func TypeGlob(patterns ...string) Func {
	return func(evt *event.Envelope) bool {
		if evt == nil {
			return false
		}
		for _, p := range patterns {
			if TypeMatches(p, string(evt.Type)) {
				return true
			}
		}
		return false
	}
}

// EntityEvent matches events about entities of the given kind.
func EntityEvent(kind event.EntityKind) Func {
	return func(evt *event.Envelope) bool { return IsEntityEvent(evt, kind) }
}

// EntityFromCollection matches events about a kind whose parent collection
// is collectionID.
func EntityFromCollection(kind event.EntityKind, collectionID string) Func {
	return func(evt *event.Envelope) bool {
		return IsEntityEventFromCollection(evt, kind, collectionID)
	}
}

// AuthoredByPerson matches envelopes with at least one person author.
func AuthoredByPerson(evt *event.Envelope) bool { return IsAuthoredByPerson(evt) }

// NormalizeID strips dashes and lower-cases id so that dashed and compact
// forms of the same identifier compare equal. It is idempotent.
func NormalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}

// SameID reports whether a and b identify the same object.
func SameID(a, b string) bool {
	return a != "" && NormalizeID(a) == NormalizeID(b)
}

// IsEventOfType reports whether evt.Type is one of types.
func IsEventOfType(evt *event.Envelope, types ...event.Type) bool {
	if evt == nil {
		return false
	}
	for _, t := range types {
		if evt.Type == t {
			return true
		}
	}
	return false
}

// IsEntityEvent reports whether the event type belongs to kind's namespace
// and the entity itself is of that kind. Both must agree.
func IsEntityEvent(evt *event.Envelope, kind event.EntityKind) bool {
	if evt == nil || kind == "" {
		return false
	}
	return strings.HasPrefix(string(evt.Type), string(kind)+".") && evt.Entity.Kind == kind
}

// IsAuthoredByPerson reports whether any author is a person. An empty
// author list does not match.
func IsAuthoredByPerson(evt *event.Envelope) bool {
	if evt == nil {
		return false
	}
	for _, a := range evt.Authors {
		if a.Kind == event.AuthorPerson {
			return true
		}
	}
	return false
}

// ParentCollectionID returns the parent id when the parent is a database or
// data source.
func ParentCollectionID(evt *event.Envelope) (string, bool) {
	parent, ok := evt.ParentRef()
	if !ok || !parent.Kind.IsCollection() {
		return "", false
	}
	return parent.ID, true
}

// IsEntityEventFromCollection reports whether evt is a kind event whose
// parent collection is collectionID. Ids are compared after NormalizeID.
func IsEntityEventFromCollection(evt *event.Envelope, kind event.EntityKind, collectionID string) bool {
	if !IsEntityEvent(evt, kind) {
		return false
	}
	parentID, ok := ParentCollectionID(evt)
	if !ok {
		return false
	}
	return SameID(parentID, collectionID)
}
