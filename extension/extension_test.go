package extension_test

import (
	"context"
	"errors"
	"testing"
	"time"

	forgetesting "github.com/xraph/forge/testing"

	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/extension"
	"github.com/xraph/scribe/predicate"
	"github.com/xraph/scribe/processor"
	"github.com/xraph/scribe/replay"
	"github.com/xraph/scribe/replay/memory"
)

func noop() processor.Processor {
	return processor.Processor{
		ID:      "noop",
		Enabled: predicate.Const(true),
		When:    predicate.OfType(event.PageCreated),
		Executor: func(context.Context, *event.Envelope) (bool, error) {
			return true, nil
		},
	}
}

func TestExtension_Metadata(t *testing.T) {
	ext := extension.New()

	if ext.Name() != extension.ExtensionName {
		t.Errorf("Name() = %q, want %q", ext.Name(), extension.ExtensionName)
	}
	if ext.Description() != extension.ExtensionDescription {
		t.Errorf("Description() = %q, want %q", ext.Description(), extension.ExtensionDescription)
	}
	if ext.Version() != extension.ExtensionVersion {
		t.Errorf("Version() = %q, want %q", ext.Version(), extension.ExtensionVersion)
	}
}

func TestExtension_Lifecycle(t *testing.T) {
	ext := extension.New(
		extension.WithProcessors(noop()),
		extension.WithConfig(extension.Config{Replay: extension.ReplayMemory}),
	)
	fapp := forgetesting.NewTestApp("scribe-app", "0.1.0")

	if err := ext.Register(fapp); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ext.Scribe() == nil || ext.API() == nil {
		t.Fatal("expected scribe and API after Register")
	}
	if ext.Scribe().Registry().Len() != 1 {
		t.Errorf("registry len = %d", ext.Scribe().Registry().Len())
	}
	if got := ext.Scribe().Config().ExecutorTimeout; got == 0 {
		t.Error("executor timeout default not applied")
	}

	ctx := context.Background()
	if err := ext.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := ext.Health(ctx); err != nil {
		t.Errorf("Health: %v", err)
	}
	if err := ext.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

type failingGuard struct{}

func (failingGuard) Claim(context.Context, string, time.Duration) error { return nil }
func (failingGuard) Ping(context.Context) error                         { return errors.New("down") }
func (failingGuard) Close() error                                       { return nil }

var _ replay.Guard = failingGuard{}

func TestExtension_HealthReportsGuard(t *testing.T) {
	ext := extension.New(extension.WithReplayGuard(failingGuard{}))
	fapp := forgetesting.NewTestApp("guard-app", "0.1.0")

	if err := ext.Register(fapp); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := ext.Health(context.Background()); err == nil {
		t.Error("expected health error from guard")
	}
	if err := ext.Start(context.Background()); err == nil {
		t.Error("expected start error from guard")
	}
}

func TestExtension_DuplicateProcessorsFail(t *testing.T) {
	ext := extension.New(extension.WithProcessors(noop(), noop()))
	fapp := forgetesting.NewTestApp("dup-app", "0.1.0")

	if err := ext.Register(fapp); err == nil {
		t.Fatal("expected duplicate processor error")
	}
}

func TestExtension_UnknownReplayBackend(t *testing.T) {
	ext := extension.New(extension.WithConfig(extension.Config{Replay: "etcd"}))
	fapp := forgetesting.NewTestApp("bad-replay-app", "0.1.0")

	if err := ext.Register(fapp); err == nil {
		t.Fatal("expected unsupported backend error")
	}
}

func TestExtension_BeforeRegister(t *testing.T) {
	ext := extension.New()

	if err := ext.Start(context.Background()); err == nil {
		t.Error("expected error when starting before Register")
	}
	if err := ext.Health(context.Background()); err == nil {
		t.Error("expected error when checking health before Register")
	}
	if err := ext.Stop(context.Background()); err != nil {
		t.Errorf("Stop before Register should be no-op, got: %v", err)
	}
}

func TestExtension_DisableRoutes(t *testing.T) {
	ext := extension.New(
		extension.WithDisableRoutes(),
		extension.WithReplayGuard(memory.New()),
	)
	fapp := forgetesting.NewTestApp("no-routes-app", "0.1.0")

	if err := ext.Register(fapp); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ext.Handler() == nil {
		t.Error("standalone handler should still be available")
	}
}

func TestConfig_ToScribeOptions(t *testing.T) {
	cfg := extension.DefaultConfig()
	if cfg.BasePath != "/notion" {
		t.Errorf("BasePath = %q", cfg.BasePath)
	}
	if len(cfg.ToScribeOptions()) == 0 {
		t.Error("expected options")
	}
}
