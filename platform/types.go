package platform

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// maxRichTextLen is the per-object content limit the API enforces.
const maxRichTextLen = 2000

// RichText is one rich-text run.
type RichText struct {
	Type      string     `json:"type,omitempty"`
	Text      *TextValue `json:"text,omitempty"`
	PlainText string     `json:"plain_text,omitempty"`
}

// TextValue is the payload of a text run.
type TextValue struct {
	Content string `json:"content"`
}

// Plain joins the plain text of runs.
func Plain(runs []RichText) string {
	var sb strings.Builder
	for _, r := range runs {
		switch {
		case r.PlainText != "":
			sb.WriteString(r.PlainText)
		case r.Text != nil:
			sb.WriteString(r.Text.Content)
		}
	}
	return sb.String()
}

// Text splits s into runs that each respect the API length limit.
func Text(s string) []RichText {
	var out []RichText
	for s != "" {
		chunk := s
		if utf8.RuneCountInString(s) > maxRichTextLen {
			chunk = string([]rune(s)[:maxRichTextLen])
		}
		out = append(out, RichText{Type: "text", Text: &TextValue{Content: chunk}})
		s = s[len(chunk):]
	}
	if out == nil {
		out = []RichText{}
	}
	return out
}

// Property is a page property value. Only the fields used here are decoded.
type Property struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
}

// SelectOption is a select property value.
type SelectOption struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Parent locates a page, comment or block.
type Parent struct {
	Type         string `json:"type"`
	DatabaseID   string `json:"database_id,omitempty"`
	DataSourceID string `json:"data_source_id,omitempty"`
	PageID       string `json:"page_id,omitempty"`
	BlockID      string `json:"block_id,omitempty"`
}

// Page is a retrieved page.
type Page struct {
	ID         string              `json:"id"`
	URL        string              `json:"url"`
	Archived   bool                `json:"archived"`
	InTrash    bool                `json:"in_trash"`
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

// Title returns the plain text of the page's title property.
func (p *Page) Title() string {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return Plain(prop.Title)
		}
	}
	return ""
}

// PropertyText returns the plain text of a title or rich-text property.
func (p *Page) PropertyText(name string) (string, bool) {
	prop, ok := p.Properties[name]
	if !ok {
		return "", false
	}
	switch prop.Type {
	case "title":
		return Plain(prop.Title), true
	case "rich_text":
		return Plain(prop.RichText), true
	case "select":
		if prop.Select == nil {
			return "", true
		}
		return prop.Select.Name, true
	default:
		return "", false
	}
}

// Comment is a discussion comment.
type Comment struct {
	ID           string     `json:"id"`
	DiscussionID string     `json:"discussion_id"`
	Parent       Parent     `json:"parent"`
	RichText     []RichText `json:"rich_text"`
	CreatedBy    struct {
		ID     string `json:"id"`
		Object string `json:"object"`
	} `json:"created_by"`
}

// Text returns the comment body as plain text.
func (c *Comment) Text() string { return Plain(c.RichText) }

// Block is a content block. Text holds the plain text of whichever
// rich-text field the block type carries.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`
	Text        string `json:"-"`
}

// UnmarshalJSON extracts the plain text of the block's type-specific body.
func (b *Block) UnmarshalJSON(raw []byte) error {
	type alias Block
	var a alias
	if err := json.Unmarshal(raw, &a); err != nil {
		return err
	}
	*b = Block(a)

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return err
	}
	body, ok := all[b.Type]
	if !ok {
		return nil
	}
	var typed struct {
		RichText []RichText `json:"rich_text"`
	}
	if err := json.Unmarshal(body, &typed); err == nil {
		b.Text = Plain(typed.RichText)
	}
	return nil
}

// Properties is a property update payload for UpdatePageProperties.
type Properties map[string]any

// RichTextValue builds a rich-text property update.
func RichTextValue(s string) any {
	return map[string]any{"rich_text": Text(s)}
}

// SelectValue builds a select property update.
func SelectValue(name string) any {
	return map[string]any{"select": map[string]any{"name": name}}
}
