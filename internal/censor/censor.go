// Package censor masks banned terms in user-submitted text before it
// reaches moderation.
package censor

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Mask replaces each banned-term occurrence.
const Mask = "***"

// Censor masks banned terms by case-insensitive substring match.
// Terms are applied in order over the accumulating result, so a term
// embedded in a longer word is masked too. Masked output contains no
// terms, which makes the operation idempotent.
type Censor struct {
	terms [][]rune
}

// New builds a censor over the default list plus any extra terms.
func New(extra ...string) *Censor {
	c := &Censor{terms: make([][]rune, 0, len(DefaultTerms)+len(extra))}
	for _, t := range DefaultTerms {
		c.add(t)
	}
	for _, t := range extra {
		c.add(t)
	}
	return c
}

func (c *Censor) add(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}
	c.terms = append(c.terms, []rune(term))
}

// Apply returns the masked text and whether any term matched.
func (c *Censor) Apply(text string) (string, bool) {
	rs := []rune(text)
	flagged := false
	for _, term := range c.terms {
		var hit bool
		rs, hit = maskTerm(rs, term)
		flagged = flagged || hit
	}
	return string(rs), flagged
}

// maskTerm replaces every case-insensitive occurrence of term in rs.
// Works on runes so folding never shifts positions.
func maskTerm(rs, term []rune) ([]rune, bool) {
	if len(term) == 0 || len(term) > len(rs) {
		return rs, false
	}
	mask := []rune(Mask)
	var out []rune
	found := false
	i := 0
	for i <= len(rs)-len(term) {
		if foldEqual(rs[i:i+len(term)], term) {
			if !found {
				out = make([]rune, 0, len(rs))
				out = append(out, rs[:i]...)
				found = true
			}
			out = append(out, mask...)
			i += len(term)
			continue
		}
		if found {
			out = append(out, rs[i])
		}
		i++
	}
	if !found {
		return rs, false
	}
	out = append(out, rs[i:]...)
	return out, true
}

func foldEqual(a, b []rune) bool {
	for i := range b {
		if unicode.ToLower(a[i]) != b[i] {
			return false
		}
	}
	return true
}

// LoadTermsFile reads extra terms from a comma-separated file.
// Blank lines and lines starting with '#' are skipped.
func LoadTermsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var terms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Split(line, ",") {
			if w = strings.TrimSpace(w); w != "" {
				terms = append(terms, strings.ToLower(w))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return terms, nil
}
