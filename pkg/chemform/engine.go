package chemform

import (
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxSteps bounds the number of rewrite steps of a single Format call.
const DefaultMaxSteps = 10000

// Token is one step of a formatting pass: the rule that won, the literal
// text it consumed and the HTML it produced.
type Token struct {
	Rule string `json:"rule"`
	Text string `json:"text"`
	HTML string `json:"html"`
}

// Formatter applies an ordered rule table to input strings. A Formatter is
// immutable after construction and safe for concurrent use.
type Formatter struct {
	rules    []Rule
	maxSteps int
	logger   *slog.Logger
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithRules replaces the rule table. Earlier rules win ties.
// Default: DefaultRules()
func WithRules(rules ...Rule) Option {
	return func(f *Formatter) {
		f.rules = append([]Rule(nil), rules...)
	}
}

// WithMaxSteps sets the iteration budget. Values below 1 are ignored.
// Default: DefaultMaxSteps
func WithMaxSteps(n int) Option {
	return func(f *Formatter) {
		if n > 0 {
			f.maxSteps = n
		}
	}
}

// WithLogger sets the logger used to report an exhausted budget.
// By default, all logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFormatter creates a Formatter using the default table, which can be
// overridden by providing one or more Option functions.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		rules:    defaultRules,
		maxSteps: DefaultMaxSteps,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var std = NewFormatter()

// Format formats input with the default table.
func Format(input string) string {
	return std.Format(input)
}

// Rules returns a copy of the formatter's table.
func (f *Formatter) Rules() []Rule {
	return append([]Rule(nil), f.rules...)
}

// Format converts input into an HTML fragment. Empty input yields "" and
// whitespace-only input is returned unchanged.
func (f *Formatter) Format(input string) string {
	if strings.TrimFunc(input, isSpace) == "" {
		return input
	}
	var sb strings.Builder
	for _, tok := range f.Tokenize(input) {
		sb.WriteString(tok.HTML)
	}
	return sb.String()
}

// Tokenize runs a formatting pass and returns every step. Joining the Text
// fields reproduces the padded input unless the budget ran out; joining the
// HTML fields gives the output of Format.
func (f *Formatter) Tokenize(input string) []Token {
	if strings.TrimFunc(input, isSpace) == "" {
		return nil
	}
	remaining := " " + strings.TrimFunc(input, isSpace)

	var tokens []Token
	var sb strings.Builder
	for steps := 0; remaining != ""; steps++ {
		if steps >= f.maxSteps {
			f.logger.Warn("Formatting stopped at iteration budget",
				"max_steps", f.maxSteps, "remaining", len(remaining))
			break
		}

		rule, loc := f.match(remaining)
		if rule == nil {
			_, size := utf8.DecodeRuneInString(remaining)
			tokens = append(tokens, Token{Rule: RuleIdentity, Text: remaining[:size], HTML: remaining[:size]})
			remaining = remaining[size:]
			continue
		}

		sb.Reset()
		expand(&sb, rule.Template, remaining, loc)
		tokens = append(tokens, Token{Rule: rule.Name, Text: remaining[loc[0]:loc[1]], HTML: sb.String()})
		// The winner always starts at offset 0, so the consumed length is the match end.
		remaining = remaining[loc[1]-loc[0]:]
	}
	return tokens
}

// isSpace reports whether r is matched by the whitespace class of the rule
// table.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// match returns the rule whose leftmost match starts earliest in s, the
// first listed rule winning ties. Only a match at offset 0 can beat the
// identity passthrough, so nil is returned otherwise.
func (f *Formatter) match(s string) (*Rule, []int) {
	var best *Rule
	var bestLoc []int
	for i := range f.rules {
		loc := f.rules[i].Matcher.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < bestLoc[0] {
			best, bestLoc = &f.rules[i], loc
		}
		if loc[0] == 0 {
			break
		}
	}
	if best == nil || bestLoc[0] != 0 {
		return nil, nil
	}
	return best, bestLoc
}
