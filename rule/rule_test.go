package rule_test

import (
	"errors"
	"testing"

	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/rule"
)

func testEnvelope() *event.Envelope {
	return &event.Envelope{
		ID:            "evt-1",
		Type:          event.PageCreated,
		AttemptNumber: 2,
		Entity:        event.Ref{ID: "page-1", Kind: event.KindPage},
		Authors:       []event.Author{{ID: "u1", Kind: event.AuthorPerson}},
		Data:          event.Created{Parent: &event.Ref{ID: "2F4D-CAAD", Kind: event.KindDatabase}},
	}
}

func TestEngineEvaluate(t *testing.T) {
	e, err := rule.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	env := testEnvelope()

	tests := []struct {
		expr string
		want bool
	}{
		{`event.type == "page.created"`, true},
		{`event.namespace == "page" && event.entity.type == "page"`, true},
		{`event.type.startsWith("database.")`, false},
		{`event.attempt_number > 1`, true},
		{`has(event.parent) && event.parent.type == "database"`, true},
		{`normalize_id(event.parent.id) == normalize_id("2f4dcaad")`, true},
		{`event.authors.exists(a, a.type == "person")`, true},
		{`event.authors.exists(a, a.type == "bot")`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Evaluate(tt.expr, env)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEngineCompileError(t *testing.T) {
	e, err := rule.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if _, err := e.Predicate(`event.type ==`); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestEngineNonBoolean(t *testing.T) {
	e, err := rule.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	_, err = e.Evaluate(`event.type`, testEnvelope())
	if !errors.Is(err, rule.ErrNotBoolean) {
		t.Fatalf("expected ErrNotBoolean, got %v", err)
	}
}

func TestPredicateFailsClosed(t *testing.T) {
	e, err := rule.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	p, err := e.Predicate(`event.parent.id == "x"`)
	if err != nil {
		t.Fatalf("Predicate: %v", err)
	}

	// No parent key: evaluation errors and must not match.
	env := testEnvelope()
	env.Data = event.Deleted{}
	if p(env) {
		t.Error("missing key should not match")
	}
	if p(nil) {
		t.Error("nil envelope should not match")
	}
}

func TestPredicateEmptyExpression(t *testing.T) {
	e, err := rule.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	p, err := e.Predicate("")
	if err != nil {
		t.Fatalf("Predicate: %v", err)
	}
	if !p(testEnvelope()) {
		t.Error("empty expression should match")
	}
}

func TestCompileCaches(t *testing.T) {
	e, err := rule.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	a, err := e.Compile(`true`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	b, err := e.Compile(`true`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if a != b {
		t.Error("expected cached program")
	}
}
