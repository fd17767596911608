package slack

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/logger"
)

// Limits from the Block Kit reference. Lengths count characters, so
// checks use rune counts.
const (
	maxBlocksPerMessage = 50
	maxSectionTextLen   = 3000
	maxFieldsPerSection = 10
	maxFieldTextLen     = 2000
	maxHeaderTextLen    = 150
	maxAltTextLen       = 2000
	maxImageURLLen      = 3000
	maxContextElements  = 10
)

var imageURLPattern = regexp.MustCompile(`^https?://`)

// Validate checks blocks against the Block Kit limits before sending.
// Every violation is collected and joined into a single error so one
// report names everything that needs fixing. An odd field count renders
// poorly but is accepted by the API, so it only logs a warning.
func Validate(blocks []*Block) error {
	var violations []string

	if len(blocks) > maxBlocksPerMessage {
		violations = append(violations,
			fmt.Sprintf("message has %d blocks, max %d", len(blocks), maxBlocksPerMessage))
	}

	for i, b := range blocks {
		prefix := fmt.Sprintf("block %d (%s)", i, b.Type)
		switch b.Type {
		case BlockTypeHeader:
			violations = append(violations, validateHeader(prefix, b)...)
		case BlockTypeSection:
			violations = append(violations, validateSection(prefix, b)...)
		case BlockTypeContext:
			violations = append(violations, validateContext(prefix, b)...)
		case BlockTypeImage:
			violations = append(violations, validateImage(prefix, b)...)
		case BlockTypeDivider:
			// No content to check
		default:
			violations = append(violations, fmt.Sprintf("%s: unknown block type", prefix))
		}
	}

	if len(violations) > 0 {
		return errors.Newf("invalid blocks: %s", strings.Join(violations, "; "))
	}
	return nil
}

func validateHeader(prefix string, b *Block) []string {
	var violations []string
	if b.Text == nil || b.Text.Text == "" {
		violations = append(violations, prefix+": header requires text")
		return violations
	}
	if b.Text.Type != TextTypePlain {
		violations = append(violations, prefix+": header text must be plain_text")
	}
	if n := utf8.RuneCountInString(b.Text.Text); n > maxHeaderTextLen {
		violations = append(violations,
			fmt.Sprintf("%s: header text is %d characters, max %d", prefix, n, maxHeaderTextLen))
	}
	return violations
}

func validateSection(prefix string, b *Block) []string {
	var violations []string

	if b.Text == nil && len(b.Fields) == 0 {
		violations = append(violations, prefix+": section requires text or fields")
		return violations
	}

	if b.Text != nil {
		if n := utf8.RuneCountInString(b.Text.Text); n > maxSectionTextLen {
			violations = append(violations,
				fmt.Sprintf("%s: section text is %d characters, max %d", prefix, n, maxSectionTextLen))
		}
	}

	if len(b.Fields) > 0 {
		if len(b.Fields) > maxFieldsPerSection {
			violations = append(violations,
				fmt.Sprintf("%s: section has %d fields, max %d", prefix, len(b.Fields), maxFieldsPerSection))
		}
		if len(b.Fields)%2 != 0 {
			logger.Warnw("Section has an odd field count, the grid will render unevenly",
				"block", prefix, "fields", len(b.Fields))
		}
		for j, f := range b.Fields {
			if n := utf8.RuneCountInString(f.Text); n > maxFieldTextLen {
				violations = append(violations,
					fmt.Sprintf("%s: field %d is %d characters, max %d", prefix, j, n, maxFieldTextLen))
			}
		}
	}

	return violations
}

func validateContext(prefix string, b *Block) []string {
	var violations []string
	if len(b.Elements) == 0 {
		violations = append(violations, prefix+": context requires at least one element")
	}
	if len(b.Elements) > maxContextElements {
		violations = append(violations,
			fmt.Sprintf("%s: context has %d elements, max %d", prefix, len(b.Elements), maxContextElements))
	}
	return violations
}

func validateImage(prefix string, b *Block) []string {
	var violations []string

	hasURL := b.ImageURL != ""
	hasFile := b.SlackFile != nil
	switch {
	case !hasURL && !hasFile:
		violations = append(violations, prefix+": image requires a url or a slack_file")
	case hasURL && hasFile:
		violations = append(violations, prefix+": image must have exactly one source, url or slack_file")
	}

	if hasURL {
		if n := utf8.RuneCountInString(b.ImageURL); n > maxImageURLLen {
			violations = append(violations,
				fmt.Sprintf("%s: image url is %d characters, max %d", prefix, n, maxImageURLLen))
		}
		if !imageURLPattern.MatchString(b.ImageURL) {
			violations = append(violations, prefix+": image url must start with http:// or https://")
		}
	}
	if hasFile && b.SlackFile.ID == "" && b.SlackFile.URL == "" {
		violations = append(violations, prefix+": slack_file requires an id or a url")
	}

	if n := utf8.RuneCountInString(b.AltText); n > maxAltTextLen {
		violations = append(violations,
			fmt.Sprintf("%s: alt text is %d characters, max %d", prefix, n, maxAltTextLen))
	}

	return violations
}
