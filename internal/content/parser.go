package content

import (
	"regexp"
	"strings"

	"ai-content-consultant/internal/model"
)

// Section labels the model is asked to use, in reply order.
const (
	LabelIdea      = "IDEA:"
	LabelStructure = "VIDEO STRUCTURE:"
	LabelCaption   = "CAPTION:"
	LabelHashtags  = "HASHTAGS:"
)

var labels = [...]string{LabelIdea, LabelStructure, LabelCaption, LabelHashtags}

const (
	fieldIdea = iota
	fieldStructure
	fieldCaption
	fieldHashtags
)

// labelHit is one occurrence of a section label in a reply.
type labelHit struct {
	field int
	start int // offset of the label
	end   int // offset just past the colon
}

// Parse converts raw model output into a ContentIdea. It never fails:
// replies without any label become a conversational record, and absent
// sections become placeholder strings.
func Parse(raw string) model.ContentIdea {
	hits := scanLabels(raw)
	if len(hits) == 0 {
		return ParseConversational(raw)
	}

	var sections [4]string
	var found [4]bool
	var rawTags string
	for i, h := range hits {
		if found[h.field] {
			continue
		}
		stop := len(raw)
		if i+1 < len(hits) {
			stop = hits[i+1].start
		}
		if h.field == fieldHashtags {
			rawTags = raw[h.end:stop]
		} else {
			sections[h.field] = trimSection(raw[h.end:stop])
		}
		found[h.field] = true
	}

	return model.ContentIdea{
		Idea:           orPlaceholder(CleanQuoted(sections[fieldIdea]), model.NoIdea),
		VideoStructure: orPlaceholder(CleanQuoted(sections[fieldStructure]), model.NoStructure),
		Caption:        orPlaceholder(CleanQuoted(sections[fieldCaption]), model.NoCaption),
		Hashtags:       ExtractHashtags(rawTags),
	}
}

// HasLabels reports whether raw contains at least one section label.
func HasLabels(raw string) bool {
	return len(scanLabels(raw)) > 0
}

// ParseConversational records a free-form reply without looking for labels:
// the first non-empty line becomes Idea, the remaining lines VideoStructure.
func ParseConversational(raw string) model.ContentIdea {
	var first string
	var rest []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
			continue
		}
		rest = append(rest, line)
	}
	return model.ContentIdea{
		Idea:           first,
		VideoStructure: strings.Join(rest, "\n"),
		Caption:        model.ConversationalNote,
		Hashtags:       []string{},
	}
}

// scanLabels walks raw once and returns every label occurrence in order.
// Matching is ASCII case-insensitive so byte offsets stay valid for any
// UTF-8 input.
func scanLabels(raw string) []labelHit {
	var hits []labelHit
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != 'I' && c != 'i' && c != 'V' && c != 'v' && c != 'C' && c != 'c' && c != 'H' && c != 'h' {
			continue
		}
		for field, label := range labels {
			if hasPrefixFold(raw[i:], label) {
				hits = append(hits, labelHit{field: field, start: i, end: i + len(label)})
				i += len(label) - 1
				break
			}
		}
	}
	return hits
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if lowerASCII(s[i]) != lowerASCII(prefix[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// labelResidue matches a line holding only what markdown leaves in front of
// the next label: a list number ("2." or "3)"), emphasis or heading marks,
// or both ("**2.**"). Content such as "15-30" or "2024" does not match.
var labelResidue = regexp.MustCompile(`^[*_#\s]*(\d+[.)])?[*_#\s]*$|^-+$`)

// trimSection strips whitespace and markdown residue from a captured
// section, including a trailing line that only held the next label's
// decoration (e.g. "2." or "**").
func trimSection(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "*_ \t")
	for {
		s = strings.TrimSpace(s)
		idx := strings.LastIndexByte(s, '\n')
		if idx < 0 {
			break
		}
		last := strings.TrimSpace(s[idx+1:])
		if last != "" && !labelResidue.MatchString(last) {
			break
		}
		s = s[:idx]
	}
	s = strings.TrimRight(s, "*_ \t")
	if strings.Trim(s, "*#-_ \t\r\n") == "" {
		return ""
	}
	return strings.TrimSpace(s)
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// CleanQuoted returns the first non-empty quoted segment of s when s
// contains a double quote, else s unchanged. Applying it to its own output
// is a no-op.
func CleanQuoted(s string) string {
	if !strings.Contains(s, `"`) {
		return s
	}
	parts := strings.Split(s, `"`)
	if len(parts) < 2 {
		return s
	}
	for i := 1; i < len(parts); i += 2 {
		if seg := strings.TrimSpace(parts[i]); seg != "" {
			return seg
		}
	}
	return s
}

// ExtractHashtags keeps the whitespace-separated tokens of s that start with
// '#', without the '#', lowercased. Trailing list punctuation is dropped.
func ExtractHashtags(s string) []string {
	tags := []string{}
	for _, tok := range strings.Fields(s) {
		if !strings.HasPrefix(tok, "#") {
			continue
		}
		tag := strings.TrimRight(tok[1:], ",.;:!?")
		tags = append(tags, strings.ToLower(tag))
	}
	return tags
}

// SanitizeHashtags drops empty tokens and tokens holding template syntax
// ('{', '}', '`') and strips any remaining leading '#'. The result is never
// nil.
func SanitizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
		if tag == "" || strings.ContainsAny(tag, "{}`") {
			continue
		}
		out = append(out, tag)
	}
	return out
}
