package replace

import (
	"bufio"
	"os"
	"strings"
	"sync/atomic"
)

// Rule maps a wrong token to its correct replacement.
type Rule struct {
	Wrong   string
	Correct string
}

// Table is an ordered collection of replacement rules. Insertion order is
// application order. The rule set is swapped wholesale on reload; readers
// always observe either the old set or the new one, never a mix.
type Table struct {
	rules atomic.Pointer[[]Rule]
}

// NewTable creates a table holding the given rules. Duplicate Wrong
// tokens overwrite the earlier rule's Correct value in place, keeping
// the first occurrence's position in the order.
func NewTable(rules []Rule) *Table {
	t := &Table{}
	t.Replace(rules)
	return t
}

// NewEmptyTable creates a table with no rules. Substitution against an
// empty table is a no-op.
func NewEmptyTable() *Table {
	return NewTable(nil)
}

// Replace atomically swaps the rule set.
func (t *Table) Replace(rules []Rule) {
	deduped := dedupeRules(rules)
	t.rules.Store(&deduped)
}

// Rules returns the current rule set. The returned slice must not be
// modified.
func (t *Table) Rules() []Rule {
	p := t.rules.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Len returns the number of rules in the current set.
func (t *Table) Len() int {
	return len(t.Rules())
}

// dedupeRules keeps insertion order while letting a later duplicate
// Wrong overwrite the earlier rule's replacement.
func dedupeRules(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	index := make(map[string]int, len(rules))
	for _, r := range rules {
		if r.Wrong == "" {
			continue
		}
		if i, ok := index[r.Wrong]; ok {
			out[i].Correct = r.Correct
			continue
		}
		index[r.Wrong] = len(out)
		out = append(out, r)
	}
	return out
}

// LoadFile reads a line-oriented rule source: one `wrong correct` pair
// per line, whitespace separated. Blank lines and lines starting with
// '#' are skipped. Lines without at least two fields are skipped and
// counted; the count is returned so callers can log it. An unreadable
// source yields a LoadError and no rules.
func LoadFile(path string) ([]Rule, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	var rules []Rule
	skipped := 0

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			skipped++
			continue
		}
		// Everything after the first field is the replacement, so a
		// correction may expand one token into several.
		rules = append(rules, Rule{
			Wrong:   fields[0],
			Correct: strings.Join(fields[1:], " "),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, &LoadError{Path: path, Err: err}
	}

	return rules, skipped, nil
}
