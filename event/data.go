package event

// Data is the type-specific payload of an Envelope. The set of
// implementations is closed: only this package can add variants.
type Data interface {
	// ParentRef returns the parent carried by the payload, if present.
	ParentRef() (Ref, bool)

	isData()
}

func parentOf(p *Ref) (Ref, bool) {
	if p == nil || p.ID == "" {
		return Ref{}, false
	}
	return *p, true
}

// Created is the payload of page.created, database.created and
// data_source.created.
type Created struct {
	Parent *Ref `json:"parent,omitempty"`
}

// PropertiesUpdated is the payload of page.properties_updated.
type PropertiesUpdated struct {
	Parent *Ref `json:"parent,omitempty"`

	// UpdatedProperties holds the ids of the changed properties.
	UpdatedProperties []string `json:"updated_properties,omitempty"`
}

// ContentUpdated is the payload of the *.content_updated events.
type ContentUpdated struct {
	Parent *Ref `json:"parent,omitempty"`

	UpdatedBlocks []Ref `json:"updated_blocks,omitempty"`
}

// SchemaChange describes one property touched by a schema update.
type SchemaChange struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Action string `json:"action"`
}

// SchemaUpdated is the payload of database.schema_updated and
// data_source.schema_updated.
type SchemaUpdated struct {
	Parent *Ref `json:"parent,omitempty"`

	UpdatedProperties []SchemaChange `json:"updated_properties,omitempty"`
}

// Moved is the payload of the *.moved events. Parent is the new location.
type Moved struct {
	Parent *Ref `json:"parent,omitempty"`
}

// Deleted is the payload of the *.deleted events.
type Deleted struct {
	Parent *Ref `json:"parent,omitempty"`
}

// Undeleted is the payload of the *.undeleted events.
type Undeleted struct {
	Parent *Ref `json:"parent,omitempty"`
}

// Locked is the payload of page.locked.
type Locked struct {
	Parent *Ref `json:"parent,omitempty"`
}

// Unlocked is the payload of page.unlocked.
type Unlocked struct {
	Parent *Ref `json:"parent,omitempty"`
}

// Comment is the payload of comment.created, comment.updated and
// comment.deleted.
type Comment struct {
	Parent *Ref `json:"parent,omitempty"`

	// PageID is the page the discussion belongs to.
	PageID string `json:"page_id,omitempty"`
}

func (Created) isData()           {}
func (PropertiesUpdated) isData() {}
func (ContentUpdated) isData()    {}
func (SchemaUpdated) isData()     {}
func (Moved) isData()             {}
func (Deleted) isData()           {}
func (Undeleted) isData()         {}
func (Locked) isData()            {}
func (Unlocked) isData()          {}
func (Comment) isData()           {}

func (d Created) ParentRef() (Ref, bool)           { return parentOf(d.Parent) }
func (d PropertiesUpdated) ParentRef() (Ref, bool) { return parentOf(d.Parent) }
func (d ContentUpdated) ParentRef() (Ref, bool)    { return parentOf(d.Parent) }
func (d SchemaUpdated) ParentRef() (Ref, bool)     { return parentOf(d.Parent) }
func (d Moved) ParentRef() (Ref, bool)             { return parentOf(d.Parent) }
func (d Deleted) ParentRef() (Ref, bool)           { return parentOf(d.Parent) }
func (d Undeleted) ParentRef() (Ref, bool)         { return parentOf(d.Parent) }
func (d Locked) ParentRef() (Ref, bool)            { return parentOf(d.Parent) }
func (d Unlocked) ParentRef() (Ref, bool)          { return parentOf(d.Parent) }
func (d Comment) ParentRef() (Ref, bool)           { return parentOf(d.Parent) }
