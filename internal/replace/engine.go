package replace

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// trailingPunct is the set of punctuation marks that may terminate a
// whole-word match in addition to any non-word rune.
const trailingPunct = ",;:.!?"

// normalizedPunct is the subset of punctuation that always gets exactly
// one trailing space, whether or not a word was replaced.
const normalizedPunct = ",;:"

// Engine applies the rules of a Table to line prefixes. It is a thin
// stateless view over the table; the table itself may be swapped while
// an Engine is in use.
type Engine struct {
	table *Table
}

// NewEngine creates a substitution engine over the given table.
func NewEngine(table *Table) *Engine {
	return &Engine{table: table}
}

// Table returns the engine's rule table.
func (e *Engine) Table() *Table {
	return e.table
}

// isWordRune reports whether r is part of a word for boundary purposes.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ApplyWordReplacements rewrites the prefix by applying every rule, in
// table order, to the same string. A match must start at the beginning
// of the string or after a non-word rune, and must be followed by a
// non-word rune, the end of the string, or one of ",;:.!?".
// Matching is case-sensitive. A rule applied later sees the output of
// the rules before it.
func (e *Engine) ApplyWordReplacements(prefix string) string {
	out := prefix
	for _, rule := range e.table.Rules() {
		out = replaceWholeWord(out, rule.Wrong, rule.Correct)
	}
	return out
}

// replaceWholeWord replaces every boundary-delimited occurrence of
// wrong with correct. The scan resumes after the inserted replacement
// so a correction containing its own trigger cannot loop.
func replaceWholeWord(s, wrong, correct string) string {
	if wrong == "" {
		return s
	}

	var b strings.Builder
	rest := s
	consumed := 0 // bytes of s already written or skipped

	for {
		i := strings.Index(rest, wrong)
		if i < 0 {
			break
		}
		start := consumed + i
		end := start + len(wrong)

		if !boundaryBefore(s, start) || !boundaryAfter(s, end) {
			// Not a whole word here; move past this occurrence.
			b.WriteString(rest[:i+len(wrong)])
			consumed += i + len(wrong)
			rest = s[consumed:]
			continue
		}

		b.WriteString(rest[:i])
		b.WriteString(correct)
		consumed += i + len(wrong)
		rest = s[consumed:]
	}

	if consumed == 0 {
		return s
	}
	b.WriteString(rest)
	return b.String()
}

// boundaryBefore reports whether position i in s starts a word: either
// the string start or preceded by a non-word rune.
func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

// boundaryAfter reports whether position i in s ends a word: the string
// end, a non-word rune, or one of the trailing punctuation marks.
func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	if strings.ContainsRune(trailingPunct, r) {
		return true
	}
	return !isWordRune(r)
}

// ApplyPunctuationTrigger handles a just-typed punctuation mark at the
// end of prefix. If the word immediately before the mark matches a
// rule's Wrong (first matching rule wins), it is substituted and
// exactly one space is ensured after the mark. Independently of any
// word match, a trailing ",", ";" or ":" is normalized to have exactly
// one trailing space.
func (e *Engine) ApplyPunctuationTrigger(prefix string, punct rune) (string, bool, bool) {
	body, ok := strings.CutSuffix(prefix, string(punct))
	if !ok {
		return prefix, false, false
	}

	wordReplaced := false
	for _, rule := range e.table.Rules() {
		if !strings.HasSuffix(body, rule.Wrong) {
			continue
		}
		if !boundaryBefore(body, len(body)-len(rule.Wrong)) {
			continue
		}
		body = body[:len(body)-len(rule.Wrong)] + rule.Correct
		wordReplaced = true
		break
	}

	out := body + string(punct)
	spaceInserted := false
	if wordReplaced || strings.ContainsRune(normalizedPunct, punct) {
		normalized := out + " "
		if normalized != prefix {
			spaceInserted = true
		}
		out = normalized
	}
	return out, wordReplaced, spaceInserted
}

// ApplyPeriodTrigger handles a just-typed period. If the prefix ends,
// allowing trailing whitespace, with a rule's Wrong as a whole word,
// that word is replaced. The first matching rule wins; no further
// rules are considered.
func (e *Engine) ApplyPeriodTrigger(prefix string) (string, bool) {
	trimmed := strings.TrimRight(prefix, " \t")
	tail := prefix[len(trimmed):]

	for _, rule := range e.table.Rules() {
		if !strings.HasSuffix(trimmed, rule.Wrong) {
			continue
		}
		if !boundaryBefore(trimmed, len(trimmed)-len(rule.Wrong)) {
			continue
		}
		return trimmed[:len(trimmed)-len(rule.Wrong)] + rule.Correct + tail, true
	}
	return prefix, false
}
