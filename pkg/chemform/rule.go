package chemform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/coregex"
)

// Matcher finds the leftmost match of a pattern in s. The returned slice
// follows the regexp convention: pairs of byte offsets for the whole match
// followed by each capture group, -1 for groups that did not participate.
// A nil slice means no match.
type Matcher interface {
	FindStringSubmatchIndex(s string) []int
}

// Rule is a single entry of the pattern table.
type Rule struct {
	Name     string
	Matcher  Matcher
	Template string
}

// NewRule compiles pattern and returns a Rule using it.
func NewRule(name, pattern, template string) (Rule, error) {
	re, err := coregex.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	return Rule{Name: name, Matcher: re, Template: template}, nil
}

// NewGuardedRule returns a Rule whose match of pattern is only accepted when
// the text after it matches follow. The text matched by follow is not part of
// the reported match, so follow acts as a lookahead. A negative lookahead is
// written as its complement, for example `[^+\-]|$` for "not followed by a
// sign".
func NewGuardedRule(name, pattern, follow, template string) (Rule, error) {
	m, err := newGuardedMatcher(pattern, follow)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	return Rule{Name: name, Matcher: m, Template: template}, nil
}

func mustRule(r Rule, err error) Rule {
	if err != nil {
		panic(err)
	}
	return r
}

type guardedMatcher struct {
	re *coregex.Regex
}

func newGuardedMatcher(pattern, follow string) (*guardedMatcher, error) {
	if _, err := coregex.Compile(follow); err != nil {
		return nil, fmt.Errorf("follow: %w", err)
	}
	// Group 1 wraps pattern; the follow text is matched but not reported.
	re, err := coregex.Compile(`(` + pattern + `)(?:` + follow + `)`)
	if err != nil {
		return nil, err
	}
	return &guardedMatcher{re: re}, nil
}

// FindStringSubmatchIndex implements Matcher.
func (m *guardedMatcher) FindStringSubmatchIndex(s string) []int {
	loc := m.re.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil
	}
	return loc[2:]
}

// expand writes template to sb, replacing $n with capture group n of s as
// located by loc and $$ with a literal dollar sign. Groups that did not
// participate expand to nothing; references past the last group are copied
// literally.
func expand(sb *strings.Builder, template, s string, loc []int) {
	groups := len(loc) / 2
	for len(template) > 0 {
		i := strings.IndexByte(template, '$')
		if i < 0 {
			sb.WriteString(template)
			return
		}
		sb.WriteString(template[:i])
		template = template[i:]
		if len(template) > 1 && template[1] == '$' {
			sb.WriteByte('$')
			template = template[2:]
			continue
		}
		j := 1
		for j < len(template) && template[j] >= '0' && template[j] <= '9' {
			j++
		}
		if j == 1 {
			sb.WriteByte('$')
			template = template[1:]
			continue
		}
		n, err := strconv.Atoi(template[1:j])
		if err != nil || n >= groups {
			sb.WriteString(template[:j])
		} else if loc[2*n] >= 0 {
			sb.WriteString(s[loc[2*n]:loc[2*n+1]])
		}
		template = template[j:]
	}
}
