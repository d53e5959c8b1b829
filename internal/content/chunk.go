package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// OverlongWordPolicy controls what happens to a single word longer than the
// chunk limit. Such a word cannot be placed without either exceeding the
// limit or cutting it mid-word; both behaviors exist in the wild, so the
// choice is configuration.
type OverlongWordPolicy string

const (
	// OverlongKeep passes the word through untouched, producing one chunk
	// that exceeds the limit.
	OverlongKeep OverlongWordPolicy = "keep"
	// OverlongTruncate hard-truncates the word to the chunk limit.
	OverlongTruncate OverlongWordPolicy = "truncate"
)

// ParseOverlongWordPolicy validates a configured policy string, defaulting
// empty input to OverlongKeep.
func ParseOverlongWordPolicy(s string) (OverlongWordPolicy, bool) {
	switch OverlongWordPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return OverlongKeep, true
	case OverlongKeep:
		return OverlongKeep, true
	case OverlongTruncate:
		return OverlongTruncate, true
	default:
		return "", false
	}
}

// excessBlankRe matches three-or-more consecutive newlines, i.e. two or more
// blank lines in a row.
var excessBlankRe = regexp.MustCompile(`\n{3,}`)

// innerNewlineRe matches a newline with surrounding whitespace inside a
// paragraph.
var innerNewlineRe = regexp.MustCompile(`\s*\n\s*`)

// Pack splits text into ordered chunks of at most maxLen characters each,
// preserving reading order and paragraph structure. Paragraphs are packed
// greedily into chunks joined by blank lines; a paragraph that alone exceeds
// maxLen falls back to word-boundary packing. Characters are counted as
// runes. Joining the chunks back with blank lines reconstructs the
// normalized text losslessly (modulo the configured overlong-word policy).
func Pack(text string, maxLen int, policy OverlongWordPolicy) []string {
	text = NormalizeNewlines(text)
	text = excessBlankRe.ReplaceAllString(text, "\n\n")

	var (
		chunks []string
		cur    string
	)

	for _, para := range blankLinesRe.Split(text, -1) {
		// Paragraphs become single logical lines.
		para = strings.TrimSpace(innerNewlineRe.ReplaceAllString(para, " "))
		if para == "" {
			continue
		}

		if cur == "" {
			chunks, cur = placeParagraph(chunks, para, maxLen, policy)
			continue
		}

		if candidate := cur + "\n\n" + para; utf8.RuneCountInString(candidate) <= maxLen {
			cur = candidate
			continue
		}

		chunks = append(chunks, cur)
		chunks, cur = placeParagraph(chunks, para, maxLen, policy)
	}

	if cur != "" {
		chunks = append(chunks, cur)
	}

	return chunks
}

// placeParagraph starts a fresh buffer with para, falling back to
// word-boundary packing when the paragraph alone exceeds maxLen. It returns
// the updated completed chunks and the new open buffer.
func placeParagraph(chunks []string, para string, maxLen int, policy OverlongWordPolicy) ([]string, string) {
	if utf8.RuneCountInString(para) <= maxLen {
		return chunks, para
	}

	return packWords(chunks, para, maxLen, policy)
}

// packWords accumulates whole words into chunks of at most maxLen runes,
// flushing whenever the next word would overflow. Words are never split;
// a single word longer than maxLen is handled per the configured policy.
// The trailing buffer is returned open so a following paragraph may still
// join it.
func packWords(chunks []string, para string, maxLen int, policy OverlongWordPolicy) ([]string, string) {
	var tmp string

	for _, w := range strings.Fields(para) {
		if policy == OverlongTruncate && utf8.RuneCountInString(w) > maxLen {
			w = truncateRunes(w, maxLen)
		}

		sep := 0
		if tmp != "" {
			sep = 1
		}

		if utf8.RuneCountInString(tmp)+sep+utf8.RuneCountInString(w) <= maxLen {
			if tmp == "" {
				tmp = w
			} else {
				tmp += " " + w
			}

			continue
		}

		if tmp != "" {
			chunks = append(chunks, tmp)
		}

		tmp = w
	}

	return chunks, tmp
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
