package event

import "errors"

var (
	// ErrInvalidPayload is returned when a body is not a JSON object or does
	// not carry the required envelope fields.
	ErrInvalidPayload = errors.New("scribe: invalid payload")

	// ErrUnknownEventType is returned when the envelope type is outside the
	// known set.
	ErrUnknownEventType = errors.New("scribe: unknown event type")
)
