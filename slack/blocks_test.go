package slack

import (
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	header := Header("Daily Report")
	if header.Type != BlockTypeHeader || header.Text.Type != TextTypePlain {
		t.Errorf("unexpected header shape: %+v", header)
	}
	if !header.Text.Emoji {
		t.Error("expected header emoji flag")
	}

	section := Section("*bold* text")
	if section.Type != BlockTypeSection || section.Text.Type != TextTypeMarkdown {
		t.Errorf("unexpected section shape: %+v", section)
	}

	fields := FieldsSection("*A*\n1", "*B*\n2")
	if len(fields.Fields) != 2 || fields.Fields[0].Type != TextTypeMarkdown {
		t.Errorf("unexpected fields shape: %+v", fields)
	}
	if fields.Text != nil {
		t.Error("fields section should not carry text")
	}

	ctx := Context("footer one", "footer two")
	if ctx.Type != BlockTypeContext || len(ctx.Elements) != 2 {
		t.Errorf("unexpected context shape: %+v", ctx)
	}

	if Divider().Type != BlockTypeDivider {
		t.Error("unexpected divider shape")
	}

	img := ImageFromURL("https://example.com/h.png", "heatmap")
	if img.Type != BlockTypeImage || img.ImageURL == "" || img.SlackFile != nil {
		t.Errorf("unexpected url image shape: %+v", img)
	}

	fileImg := ImageFromFile("F123", "heatmap")
	if fileImg.SlackFile == nil || fileImg.SlackFile.ID != "F123" || fileImg.ImageURL != "" {
		t.Errorf("unexpected file image shape: %+v", fileImg)
	}
}

func TestEscape(t *testing.T) {
	got := Escape("R&D <experiments> 1 > 0")
	want := "R&amp;D &lt;experiments&gt; 1 &gt; 0"
	if got != want {
		t.Errorf("Escape() = %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		blocks   []*Block
		problems []string // substrings expected in the error, empty = valid
	}{
		{
			name: "valid report shape",
			blocks: []*Block{
				Header("Daily Report 2026-01-14"),
				Section("A focused day."),
				Divider(),
				FieldsSection("*Work*\n8h", "*Longest*\n1h 30m", "*Night*\n0m", "*Date*\n2026-01-14"),
				ImageFromURL("https://example.com/heatmap.png", "activity heatmap"),
				Context("generated by aw-analyzer"),
			},
		},
		{
			name:     "too many blocks",
			blocks:   repeatBlocks(Divider(), 51),
			problems: []string{"51 blocks, max 50"},
		},
		{
			name:     "section text too long",
			blocks:   []*Block{Section(strings.Repeat("a", 3001))},
			problems: []string{"section text is 3001 characters, max 3000"},
		},
		{
			name:     "too many fields",
			blocks:   []*Block{FieldsSection(repeatStrings("f", 11)...)},
			problems: []string{"11 fields, max 10"},
		},
		{
			name:     "field too long",
			blocks:   []*Block{FieldsSection(strings.Repeat("b", 2001), "ok")},
			problems: []string{"field 0 is 2001 characters, max 2000"},
		},
		{
			name:     "header too long",
			blocks:   []*Block{Header(strings.Repeat("h", 151))},
			problems: []string{"header text is 151 characters, max 150"},
		},
		{
			name:     "empty section",
			blocks:   []*Block{{Type: BlockTypeSection}},
			problems: []string{"section requires text or fields"},
		},
		{
			name: "image with both sources",
			blocks: []*Block{{
				Type:      BlockTypeImage,
				ImageURL:  "https://example.com/a.png",
				AltText:   "a",
				SlackFile: &FileRef{ID: "F1"},
			}},
			problems: []string{"exactly one source"},
		},
		{
			name:     "image without source",
			blocks:   []*Block{{Type: BlockTypeImage, AltText: "a"}},
			problems: []string{"image requires a url or a slack_file"},
		},
		{
			name:     "image url wrong scheme",
			blocks:   []*Block{ImageFromURL("ftp://example.com/a.png", "a")},
			problems: []string{"image url must start with http:// or https://"},
		},
		{
			name:     "image url too long",
			blocks:   []*Block{ImageFromURL("https://example.com/"+strings.Repeat("x", 3000), "a")},
			problems: []string{"max 3000"},
		},
		{
			name:     "alt text too long",
			blocks:   []*Block{ImageFromURL("https://example.com/a.png", strings.Repeat("a", 2001))},
			problems: []string{"alt text is 2001 characters, max 2000"},
		},
		{
			name:     "empty context",
			blocks:   []*Block{{Type: BlockTypeContext}},
			problems: []string{"context requires at least one element"},
		},
		{
			name:     "too many context elements",
			blocks:   []*Block{Context(repeatStrings("e", 11)...)},
			problems: []string{"context has 11 elements, max 10"},
		},
		{
			name: "all violations reported together",
			blocks: []*Block{
				Header(strings.Repeat("h", 151)),
				{Type: BlockTypeContext},
			},
			problems: []string{
				"header text is 151 characters",
				"context requires at least one element",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.blocks)
			if len(tt.problems) == 0 {
				if err != nil {
					t.Fatalf("expected valid blocks, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected violations %v, got nil", tt.problems)
			}
			for _, p := range tt.problems {
				if !strings.Contains(err.Error(), p) {
					t.Errorf("expected %q in error, got: %v", p, err)
				}
			}
		})
	}
}

// TestValidateOddFieldCountIsAccepted pins the warning-only behavior
func TestValidateOddFieldCountIsAccepted(t *testing.T) {
	if err := Validate([]*Block{FieldsSection("one", "two", "three")}); err != nil {
		t.Errorf("odd field count must validate, got: %v", err)
	}
}

func repeatBlocks(b *Block, n int) []*Block {
	out := make([]*Block, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func repeatStrings(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
