// Package slack composes, validates and delivers Block Kit messages.
// Messages go out through an incoming webhook; images ride along via the
// external upload flow on the Web API.
package slack

import "strings"

// Block types understood by the validator
const (
	BlockTypeHeader  = "header"
	BlockTypeSection = "section"
	BlockTypeContext = "context"
	BlockTypeDivider = "divider"
	BlockTypeImage   = "image"
)

// Text types
const (
	TextTypePlain    = "plain_text"
	TextTypeMarkdown = "mrkdwn"
)

// Message is a webhook payload: fallback text plus Block Kit blocks
type Message struct {
	Text   string   `json:"text"`
	Blocks []*Block `json:"blocks,omitempty"`
}

// Block is one Block Kit block. Only the fields for the block's type are
// set; Validate enforces the per-type rules.
type Block struct {
	Type      string   `json:"type"`
	Text      *Text    `json:"text,omitempty"`
	Fields    []*Text  `json:"fields,omitempty"`
	Elements  []*Text  `json:"elements,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
	AltText   string   `json:"alt_text,omitempty"`
	SlackFile *FileRef `json:"slack_file,omitempty"`
}

// Text is a Block Kit text object
type Text struct {
	Type  string `json:"type"` // plain_text or mrkdwn
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// FileRef points an image block at an uploaded file, by ID or by URL
type FileRef struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url,omitempty"`
}

// Header creates a header block with plain text
func Header(text string) *Block {
	return &Block{
		Type: BlockTypeHeader,
		Text: &Text{Type: TextTypePlain, Text: text, Emoji: true},
	}
}

// Section creates a section block with mrkdwn text
func Section(md string) *Block {
	return &Block{
		Type: BlockTypeSection,
		Text: &Text{Type: TextTypeMarkdown, Text: md},
	}
}

// FieldsSection creates a section block with a two-column field grid
func FieldsSection(fields ...string) *Block {
	texts := make([]*Text, 0, len(fields))
	for _, f := range fields {
		texts = append(texts, &Text{Type: TextTypeMarkdown, Text: f})
	}
	return &Block{Type: BlockTypeSection, Fields: texts}
}

// Context creates a context block with mrkdwn elements
func Context(md ...string) *Block {
	elements := make([]*Text, 0, len(md))
	for _, m := range md {
		elements = append(elements, &Text{Type: TextTypeMarkdown, Text: m})
	}
	return &Block{Type: BlockTypeContext, Elements: elements}
}

// Divider creates a divider block
func Divider() *Block {
	return &Block{Type: BlockTypeDivider}
}

// ImageFromURL creates an image block sourced from a public URL
func ImageFromURL(url, alt string) *Block {
	return &Block{Type: BlockTypeImage, ImageURL: url, AltText: alt}
}

// ImageFromFile creates an image block sourced from an uploaded file ID
func ImageFromFile(id, alt string) *Block {
	return &Block{Type: BlockTypeImage, AltText: alt, SlackFile: &FileRef{ID: id}}
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape replaces the characters Slack treats as control sequences.
// Apply it to values interpolated from activity data (app names, project
// names), not to composed mrkdwn.
func Escape(value string) string {
	return escaper.Replace(value)
}
