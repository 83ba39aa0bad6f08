// Package event defines the inbound webhook envelope and its closed set of
// event variants.
//
// An Envelope is decoded once per request and never mutated afterwards.
// Predicates and executors receive it read-only.
package event

import (
	"strings"
	"time"
)

// Type is the event discriminator sent by the platform in the "type" field.
type Type string

// Known event types.
const (
	PageCreated           Type = "page.created"
	PagePropertiesUpdated Type = "page.properties_updated"
	PageContentUpdated    Type = "page.content_updated"
	PageMoved             Type = "page.moved"
	PageDeleted           Type = "page.deleted"
	PageUndeleted         Type = "page.undeleted"
	PageLocked            Type = "page.locked"
	PageUnlocked          Type = "page.unlocked"

	DatabaseCreated        Type = "database.created"
	DatabaseContentUpdated Type = "database.content_updated"
	DatabaseMoved          Type = "database.moved"
	DatabaseDeleted        Type = "database.deleted"
	DatabaseUndeleted      Type = "database.undeleted"
	DatabaseSchemaUpdated  Type = "database.schema_updated"

	DataSourceCreated        Type = "data_source.created"
	DataSourceContentUpdated Type = "data_source.content_updated"
	DataSourceMoved          Type = "data_source.moved"
	DataSourceDeleted        Type = "data_source.deleted"
	DataSourceUndeleted      Type = "data_source.undeleted"
	DataSourceSchemaUpdated  Type = "data_source.schema_updated"

	CommentCreated Type = "comment.created"
	CommentUpdated Type = "comment.updated"
	CommentDeleted Type = "comment.deleted"
)

var knownTypes = []Type{
	PageCreated, PagePropertiesUpdated, PageContentUpdated, PageMoved,
	PageDeleted, PageUndeleted, PageLocked, PageUnlocked,
	DatabaseCreated, DatabaseContentUpdated, DatabaseMoved, DatabaseDeleted,
	DatabaseUndeleted, DatabaseSchemaUpdated,
	DataSourceCreated, DataSourceContentUpdated, DataSourceMoved,
	DataSourceDeleted, DataSourceUndeleted, DataSourceSchemaUpdated,
	CommentCreated, CommentUpdated, CommentDeleted,
}

// Types returns every known event type in declaration order.
func Types() []Type {
	out := make([]Type, len(knownTypes))
	copy(out, knownTypes)
	return out
}

// Known reports whether t is part of the closed set of event types.
func (t Type) Known() bool {
	for _, k := range knownTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Namespace returns the part of the type before the first dot
// ("page" for "page.created").
func (t Type) Namespace() string {
	ns, _, _ := strings.Cut(string(t), ".")
	return ns
}

// EntityKind identifies the kind of object an event or reference concerns.
type EntityKind string

// Entity kinds.
const (
	KindPage       EntityKind = "page"
	KindBlock      EntityKind = "block"
	KindDatabase   EntityKind = "database"
	KindDataSource EntityKind = "data_source"
	KindComment    EntityKind = "comment"
	KindWorkspace  EntityKind = "workspace"
)

// IsCollection reports whether the kind is a collection-like container of
// pages (a database or one of its data sources).
func (k EntityKind) IsCollection() bool {
	return k == KindDatabase || k == KindDataSource
}

// AuthorKind identifies who caused an event.
type AuthorKind string

// Author kinds.
const (
	AuthorPerson AuthorKind = "person"
	AuthorBot    AuthorKind = "bot"
	AuthorAgent  AuthorKind = "agent"
)

// Ref is a reference to a platform object.
type Ref struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"type"`
}

// Author is one entry of the envelope's author list.
type Author struct {
	ID   string     `json:"id"`
	Kind AuthorKind `json:"type"`
}

// Envelope is a decoded webhook notification.
type Envelope struct {
	// ID is the opaque identifier of this event instance.
	ID string `json:"id"`

	// Type is the event discriminator.
	Type Type `json:"type"`

	// Timestamp is when the platform recorded the event.
	Timestamp time.Time `json:"timestamp"`

	WorkspaceID    string `json:"workspace_id,omitempty"`
	WorkspaceName  string `json:"workspace_name,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	IntegrationID  string `json:"integration_id,omitempty"`

	// AttemptNumber is the platform's delivery attempt counter, starting at 1.
	AttemptNumber int `json:"attempt_number,omitempty"`

	// Entity is the object the event concerns.
	Entity Ref `json:"entity"`

	// Authors lists who caused the event. It may be empty.
	Authors []Author `json:"authors"`

	// Data is the type-specific payload. Its concrete type is determined by Type.
	Data Data `json:"data"`
}

// ParentRef returns the parent reference carried by the payload, if any.
func (e *Envelope) ParentRef() (Ref, bool) {
	if e == nil || e.Data == nil {
		return Ref{}, false
	}
	return e.Data.ParentRef()
}
