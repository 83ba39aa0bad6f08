package scribe

import (
	"github.com/xraph/scribe/dispatcher"
	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/processor"
	"github.com/xraph/scribe/replay"
	"github.com/xraph/scribe/signature"
)

// Sentinel errors returned by Scribe operations. They alias the variables
// declared in the leaf packages so errors.Is matches either name.
var (
	// ErrInvalidPayload is returned for a body that is not a well-formed envelope.
	ErrInvalidPayload = event.ErrInvalidPayload

	// ErrUnknownEventType is returned for an envelope whose type is not recognized.
	ErrUnknownEventType = event.ErrUnknownEventType

	// ErrMissingSignature is returned when verification is enabled and no signature was sent.
	ErrMissingSignature = signature.ErrMissingSignature

	// ErrInvalidSignature is returned when the signature does not match the body.
	ErrInvalidSignature = signature.ErrInvalidSignature

	// ErrReplayedRequest is returned when a signature was already seen within the replay window.
	ErrReplayedRequest = replay.ErrReplayedRequest

	// ErrDuplicateProcessor is returned when two processors share an id.
	ErrDuplicateProcessor = processor.ErrDuplicateProcessor

	// ErrInvalidProcessor is returned for a processor without id or executor.
	ErrInvalidProcessor = processor.ErrInvalidProcessor

	// ErrNoRegistry is returned when a dispatcher is built without a registry.
	ErrNoRegistry = dispatcher.ErrNoRegistry
)
