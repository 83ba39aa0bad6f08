package processor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/predicate"
	"github.com/xraph/scribe/processor"
)

func noop(context.Context, *event.Envelope) (bool, error) { return true, nil }

func proc(id string) processor.Processor {
	return processor.Processor{
		ID:       id,
		Enabled:  predicate.Always,
		When:     predicate.Always,
		Executor: noop,
	}
}

func TestNewRegistryPreservesOrder(t *testing.T) {
	r, err := processor.NewRegistry(proc("c"), proc("a"), proc("b"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	all := r.All()
	if len(all) != 3 || r.Len() != 3 {
		t.Fatalf("expected 3 processors, got %d", len(all))
	}
	for i, want := range []string{"c", "a", "b"} {
		if all[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, all[i].ID, want)
		}
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := processor.NewRegistry(proc("a"), proc("b"), proc("a"))
	if !errors.Is(err, processor.ErrDuplicateProcessor) {
		t.Fatalf("expected ErrDuplicateProcessor, got %v", err)
	}
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	noID := proc("")
	noExec := proc("x")
	noExec.Executor = nil

	for name, p := range map[string]processor.Processor{"no id": noID, "no executor": noExec} {
		t.Run(name, func(t *testing.T) {
			_, err := processor.NewRegistry(p)
			if !errors.Is(err, processor.ErrInvalidProcessor) {
				t.Fatalf("expected ErrInvalidProcessor, got %v", err)
			}
		})
	}
}

func TestNewRegistryNormalizesPredicates(t *testing.T) {
	p := processor.Processor{ID: "bare", Executor: noop}

	r, err := processor.NewRegistry(p)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got, ok := r.Get("bare")
	if !ok {
		t.Fatal("expected processor to be found")
	}
	if got.Enabled == nil || got.When == nil {
		t.Fatal("nil predicates should be normalized")
	}
	if got.Enabled(&event.Envelope{}) || got.When(&event.Envelope{}) {
		t.Error("nil predicates should normalize to Never")
	}
	if got.Name != "bare" {
		t.Errorf("Name = %q, want id fallback", got.Name)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r, err := processor.NewRegistry(proc("a"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	all := r.All()
	all[0].ID = "mutated"

	if _, ok := r.Get("a"); !ok {
		t.Error("registry should not be affected by mutating All()")
	}
	if r.All()[0].ID != "a" {
		t.Error("registry order entry was mutated")
	}
}

func TestGetMissing(t *testing.T) {
	r, err := processor.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("expected miss")
	}
}

func TestCollect(t *testing.T) {
	m1 := processor.ModuleFunc(func() []processor.Processor { return []processor.Processor{proc("a"), proc("b")} })
	m2 := processor.ModuleFunc(func() []processor.Processor { return []processor.Processor{proc("c")} })

	procs := processor.Collect(m1, nil, m2)
	if len(procs) != 3 {
		t.Fatalf("expected 3, got %d", len(procs))
	}
	if procs[2].ID != "c" {
		t.Errorf("last = %q, want c", procs[2].ID)
	}
}

func TestEachStops(t *testing.T) {
	r, err := processor.NewRegistry(proc("a"), proc("b"), proc("c"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	var seen []string
	r.Each(func(p processor.Processor) bool {
		seen = append(seen, p.ID)
		return p.ID != "b"
	})
	if len(seen) != 2 {
		t.Errorf("seen = %v", seen)
	}
}
