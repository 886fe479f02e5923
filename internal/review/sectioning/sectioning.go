// Package sectioning splits plain document text into heading/body sections.
package sectioning

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jackzampolin/draftly/internal/types"
)

// DefaultMinChars is the body length below which a section is folded into its predecessor.
const DefaultMinChars = 40

var (
	trailingSpace  = regexp.MustCompile(`[ \t]+\n`)
	paragraphBreak = regexp.MustCompile(`\n{2,}`)

	allCapsLabel = regexp.MustCompile(`^[A-Z0-9 ()\-_,.]{3,}$`)
	numbered     = regexp.MustCompile(`^(\d+(\.\d+)*)[.)]\s+`)
	colonEnding  = regexp.MustCompile(`:\s*$`)
	headingTail  = regexp.MustCompile(`[:.]\s*$`)
)

// Options tunes the sectioner.
type Options struct {
	// MinChars is the minimum section text length (in runes); shorter sections
	// are merged into the previous one. Non-positive values mean DefaultMinChars,
	// so merging cannot be disabled.
	MinChars int
}

// ExtractSections splits text into sections using the default options.
func ExtractSections(text string) []types.Section {
	return Split(text, Options{})
}

// Split normalizes text, splits it into blank-line separated paragraphs, detects
// headings and merges undersized fragments into their predecessor.
func Split(text string, opts Options) []types.Section {
	minChars := opts.MinChars
	if minChars <= 0 {
		minChars = DefaultMinChars
	}

	normalized := Normalize(text)
	if normalized == "" {
		return []types.Section{}
	}

	var raw []types.Section
	for _, chunk := range paragraphBreak.Split(normalized, -1) {
		para := strings.TrimSpace(chunk)
		if para == "" {
			continue
		}
		raw = append(raw, parseParagraph(para))
	}

	merged := make([]types.Section, 0, len(raw))
	for _, s := range raw {
		if len(merged) > 0 && utf8.RuneCountInString(s.Text) < minChars {
			prev := &merged[len(merged)-1]
			var b strings.Builder
			b.WriteString(prev.Text)
			b.WriteString("\n\n")
			if s.Heading != "" {
				b.WriteString(s.Heading)
				b.WriteString("\n")
			}
			b.WriteString(s.Text)
			prev.Text = b.String()
			continue
		}
		merged = append(merged, s)
	}

	for i := range merged {
		merged[i].Index = i
	}
	return merged
}

// Normalize converts line endings to \n, strips trailing blanks on every line and trims the text.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingSpace.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// IsHeading reports whether a line qualifies as a section heading.
func IsHeading(line string) bool {
	line = strings.TrimSpace(line)
	if allCapsLabel.MatchString(line) && strings.ToUpper(line) == line {
		return true
	}
	return numbered.MatchString(line) || colonEnding.MatchString(line)
}

func parseParagraph(para string) types.Section {
	firstLine, rest, _ := strings.Cut(para, "\n")
	firstLine = strings.TrimSpace(firstLine)

	if !IsHeading(firstLine) {
		return types.Section{Text: para}
	}

	heading := headingTail.ReplaceAllString(firstLine, "")
	body := strings.TrimSpace(rest)
	if body == "" {
		body = firstLine
	}
	return types.Section{Heading: heading, Text: body}
}
