package scribe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/xraph/scribe"
	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/predicate"
	"github.com/xraph/scribe/processor"
	"github.com/xraph/scribe/replay/memory"
	"github.com/xraph/scribe/signature"
)

const secret = "whsec_test"

func ctx() context.Context { return context.Background() }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func pageCreatedBody(parentID string, attempt int) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt-1",
		"timestamp": "2025-01-02T03:04:05Z",
		"workspace_id": "ws-1",
		"type": "page.created",
		"attempt_number": %d,
		"authors": [{"id": "u1", "type": "person"}],
		"entity": {"id": "page-1", "type": "page"},
		"data": {"parent": {"id": %q, "type": "database"}}
	}`, attempt, parentID))
}

type counter struct {
	calls atomic.Int32
	ok    bool
	err   error
}

func (c *counter) exec(context.Context, *event.Envelope) (bool, error) {
	c.calls.Add(1)
	return c.ok, c.err
}

func collectionProcessor(id string, exec processor.Executor) processor.Processor {
	return processor.Processor{
		ID:       id,
		Enabled:  predicate.Const(true),
		When:     predicate.EntityFromCollection(event.KindPage, "2f4d-caad-a6d6"),
		Executor: exec,
	}
}

func setup(t *testing.T, opts ...scribe.Option) *scribe.Scribe {
	t.Helper()
	opts = append([]scribe.Option{scribe.WithLogger(quietLogger()), scribe.WithWebhookSecret(secret)}, opts...)
	s, err := scribe.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func receive(t *testing.T, s *scribe.Scribe, body []byte) (scribe.Receipt, error) {
	t.Helper()
	return s.Receive(ctx(), body, signature.Sign(body, secret))
}

func TestReceiveScenarioA(t *testing.T) {
	c := &counter{ok: true}
	s := setup(t, scribe.WithProcessors(collectionProcessor("p1", c.exec)))

	rec, err := receive(t, s, pageCreatedBody("2F4DCAADA6D6", 1))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if rec.Result == nil {
		t.Fatal("expected dispatch result")
	}
	if !rec.Result.Processed || rec.Result.ProcessorsExecuted != 1 {
		t.Errorf("result = %+v", rec.Result)
	}
	if rec.Result.ObjectType != "page" || rec.Result.EventType != "page.created" {
		t.Errorf("result = %+v", rec.Result)
	}
}

func TestReceiveScenarioB(t *testing.T) {
	c := &counter{ok: true}
	s := setup(t, scribe.WithProcessors(collectionProcessor("p1", c.exec)))

	rec, err := receive(t, s, pageCreatedBody("ffff", 1))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if rec.Result.Processed || rec.Result.ProcessorsExecuted != 0 {
		t.Errorf("result = %+v", rec.Result)
	}
	if n := c.calls.Load(); n != 0 {
		t.Errorf("executor called %d times", n)
	}
}

func TestReceiveScenarioC(t *testing.T) {
	good := &counter{ok: true}
	bad := &counter{err: errors.New("boom")}
	s := setup(t, scribe.WithProcessors(
		collectionProcessor("good", good.exec),
		collectionProcessor("bad", bad.exec),
	))

	rec, err := receive(t, s, pageCreatedBody("2f4dcaada6d6", 1))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !rec.Result.Processed || rec.Result.ProcessorsExecuted != 1 || rec.Result.Matched != 2 {
		t.Errorf("result = %+v", rec.Result)
	}
}

func TestReceiveVerificationHandshake(t *testing.T) {
	c := &counter{ok: true}
	s := setup(t, scribe.WithProcessors(collectionProcessor("p1", c.exec)))

	rec, err := s.Receive(ctx(), []byte(`{"verification_token":"secret_xyz"}`), "")
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !rec.Verification || rec.Result != nil {
		t.Errorf("receipt = %+v", rec)
	}
	if c.calls.Load() != 0 {
		t.Error("handshake must not dispatch")
	}
}

func TestReceiveSignature(t *testing.T) {
	s := setup(t)
	body := pageCreatedBody("x", 1)

	if _, err := s.Receive(ctx(), body, ""); !errors.Is(err, scribe.ErrMissingSignature) {
		t.Errorf("missing: err = %v", err)
	}
	if _, err := s.Receive(ctx(), body, signature.Sign(body, "other")); !errors.Is(err, scribe.ErrInvalidSignature) {
		t.Errorf("wrong secret: err = %v", err)
	}

	open, err := scribe.New(scribe.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := open.Receive(ctx(), body, ""); err != nil {
		t.Errorf("verification disabled: err = %v", err)
	}
}

func TestReceiveReplay(t *testing.T) {
	s := setup(t, scribe.WithReplayGuard(memory.New()))

	first := pageCreatedBody("x", 1)
	if _, err := receive(t, s, first); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := receive(t, s, first); !errors.Is(err, scribe.ErrReplayedRequest) {
		t.Fatalf("replay: err = %v", err)
	}

	// A platform retry carries a new attempt number and signature.
	if _, err := receive(t, s, pageCreatedBody("x", 2)); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestReceiveUnknownAndInvalid(t *testing.T) {
	s := setup(t)

	rec, err := receive(t, s, []byte(`{"id":"e","type":"page.exploded","entity":{"id":"p","type":"page"}}`))
	if err != nil {
		t.Fatalf("unknown: %v", err)
	}
	if !rec.Ignored || rec.EventType != "page.exploded" {
		t.Errorf("receipt = %+v", rec)
	}

	for _, body := range []string{`null`, `[]`, `{"type":"page.created"}`, `not json`} {
		if _, err := receive(t, s, []byte(body)); !errors.Is(err, scribe.ErrInvalidPayload) {
			t.Errorf("%s: err = %v, want ErrInvalidPayload", body, err)
		}
	}
}

func TestNewRejectsDuplicateProcessors(t *testing.T) {
	c := &counter{ok: true}
	_, err := scribe.New(
		scribe.WithLogger(quietLogger()),
		scribe.WithProcessors(collectionProcessor("dup", c.exec)),
		scribe.WithModules(processor.ModuleFunc(func() []processor.Processor {
			return []processor.Processor{collectionProcessor("dup", c.exec)}
		})),
	)
	if !errors.Is(err, scribe.ErrDuplicateProcessor) {
		t.Fatalf("err = %v, want ErrDuplicateProcessor", err)
	}
}

func TestMatchAndRegistry(t *testing.T) {
	c := &counter{ok: true}
	s := setup(t, scribe.WithProcessors(collectionProcessor("p1", c.exec)))

	if s.Registry().Len() != 1 {
		t.Errorf("Len = %d", s.Registry().Len())
	}
	evt, err := event.Decode(pageCreatedBody("2f4dcaada6d6", 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Match(evt); len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("Match = %+v", got)
	}
	if c.calls.Load() != 0 {
		t.Error("Match must not execute")
	}
	if err := s.Ping(ctx()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
