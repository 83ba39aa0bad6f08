package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// wireEnvelope mirrors Envelope with the payload left undecoded.
type wireEnvelope struct {
	ID             string          `json:"id"`
	Type           Type            `json:"type"`
	Timestamp      time.Time       `json:"timestamp"`
	WorkspaceID    string          `json:"workspace_id"`
	WorkspaceName  string          `json:"workspace_name"`
	SubscriptionID string          `json:"subscription_id"`
	IntegrationID  string          `json:"integration_id"`
	AttemptNumber  int             `json:"attempt_number"`
	Entity         Ref             `json:"entity"`
	Authors        []Author        `json:"authors"`
	Data           json.RawMessage `json:"data"`
}

// Decode parses a raw webhook body into an Envelope.
//
// It returns ErrInvalidPayload when the body is not a JSON object or is
// missing required envelope fields, and ErrUnknownEventType when the type is
// not one of Types().
func Decode(raw []byte) (*Envelope, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrInvalidPayload)
	}
	if err := validateEnvelope(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if errors.Is(err, ErrUnknownEventType) || errors.Is(err, ErrInvalidPayload) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &env, nil
}

// UnmarshalJSON decodes an envelope and selects the Data variant from Type.
func (e *Envelope) UnmarshalJSON(raw []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return err
	}
	if !w.Type.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, w.Type)
	}

	data, err := decodeData(w.Type, w.Data)
	if err != nil {
		return fmt.Errorf("%w: data for %s: %v", ErrInvalidPayload, w.Type, err)
	}

	*e = Envelope{
		ID:             w.ID,
		Type:           w.Type,
		Timestamp:      w.Timestamp,
		WorkspaceID:    w.WorkspaceID,
		WorkspaceName:  w.WorkspaceName,
		SubscriptionID: w.SubscriptionID,
		IntegrationID:  w.IntegrationID,
		AttemptNumber:  w.AttemptNumber,
		Entity:         w.Entity,
		Authors:        w.Authors,
		Data:           data,
	}
	return nil
}

// decodeData maps every known type to its payload variant.
func decodeData(t Type, raw json.RawMessage) (Data, error) {
	switch t {
	case PageCreated, DatabaseCreated, DataSourceCreated:
		return decodeInto[Created](raw)
	case PagePropertiesUpdated:
		return decodeInto[PropertiesUpdated](raw)
	case PageContentUpdated, DatabaseContentUpdated, DataSourceContentUpdated:
		return decodeInto[ContentUpdated](raw)
	case DatabaseSchemaUpdated, DataSourceSchemaUpdated:
		return decodeInto[SchemaUpdated](raw)
	case PageMoved, DatabaseMoved, DataSourceMoved:
		return decodeInto[Moved](raw)
	case PageDeleted, DatabaseDeleted, DataSourceDeleted:
		return decodeInto[Deleted](raw)
	case PageUndeleted, DatabaseUndeleted, DataSourceUndeleted:
		return decodeInto[Undeleted](raw)
	case PageLocked:
		return decodeInto[Locked](raw)
	case PageUnlocked:
		return decodeInto[Unlocked](raw)
	case CommentCreated, CommentUpdated, CommentDeleted:
		return decodeInto[Comment](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, t)
	}
}

func decodeInto[T Data](raw json.RawMessage) (Data, error) {
	var v T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// VerificationToken reports whether raw is the one-time subscription
// handshake body and returns its token.
func VerificationToken(raw []byte) (string, bool) {
	var probe struct {
		Token *string `json:"verification_token"`
		Type  string  `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", false
	}
	if probe.Token == nil || probe.Type != "" {
		return "", false
	}
	return *probe.Token, true
}

// RawType returns the "type" field of raw without validating anything else.
// It is used to report ignored events.
func RawType(raw []byte) string {
	var probe struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(raw, &probe) != nil {
		return ""
	}
	return probe.Type
}
