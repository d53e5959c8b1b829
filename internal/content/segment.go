// Package content implements the text processing core: segmenting a raw
// document export into discrete post units, and packing a unit into
// channel-message-sized chunks.
package content

import (
	"regexp"
	"strings"
)

// strongSeparatorRe matches a line consisting solely of 3-or-more dash,
// em-dash, en-dash or underscore characters, optionally surrounded by
// whitespace. Authors use such lines as explicit unit boundaries.
var strongSeparatorRe = regexp.MustCompile(`\n\s*(?:[-\x{2013}\x{2014}]{3,}|_{3,})\s*\n`)

// blankLinesRe matches a run of two-or-more consecutive newlines, i.e. at
// least one blank line between paragraphs.
var blankLinesRe = regexp.MustCompile(`\n{2,}`)

// defaultDelimiters are delimiter configurations equivalent to the built-in
// paragraph-break fallback; they do not activate the custom-delimiter rule.
var defaultDelimiters = map[string]bool{
	"":     true,
	"\n\n": true,
	`\n\n`: true,
}

// Segment splits a raw document export into an ordered sequence of post
// units. Detection rules are layered; the first rule that yields more than
// one non-empty unit wins:
//
//  1. a configured custom delimiter (escaped-newline notation supported),
//  2. strong separator lines (--- / ___ / em-dashes),
//  3. runs of two-or-more blank lines.
//
// Units are trimmed and empty units discarded. Empty or whitespace-only
// input yields an empty slice. The layering exists because source documents
// are free-form; a multi-section document must never collapse into one
// giant unit when richer structure is detectable.
func Segment(raw, delimiter string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	text := NormalizeNewlines(raw)

	if !defaultDelimiters[strings.TrimSpace(delimiter)] {
		if parts := splitNonEmpty(text, ExpandEscapes(delimiter)); len(parts) > 1 {
			return parts
		}
	}

	if parts := trimNonEmpty(strongSeparatorRe.Split(text, -1)); len(parts) > 1 {
		return parts
	}

	return trimNonEmpty(blankLinesRe.Split(text, -1))
}

// NormalizeNewlines converts CRLF and bare CR line endings to LF.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	return strings.ReplaceAll(s, "\r", "\n")
}

// ExpandEscapes interprets backslash escape notation in a configured
// delimiter, so that a literal two-character `\n` in configuration becomes
// an actual newline before splitting.
func ExpandEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}

		i++

		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}

	return sb.String()
}

func splitNonEmpty(text, sep string) []string {
	if sep == "" {
		return nil
	}

	return trimNonEmpty(strings.Split(text, sep))
}

func trimNonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
