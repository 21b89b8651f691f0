package chemform

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", "   "},
		{"tabs only", "\t\n", "\t\n"},
		{"water", "H2O", " H<sub>2</sub>O"},
		{"sulfuric acid", "H2SO4", " H<sub>2</sub>SO<sub>4</sub>"},
		{"trimmed", "  H2O \n", " H<sub>2</sub>O"},
		{"nitrate bracket", "[NO3]-", " [NO<sub>3</sub>]<sup>&minus;</sup>"},
		{"ammonium bracket", "[NH4]+", " [NH<sub>4</sub>]<sup>+</sup>"},
		{"complex charge", "[Fe(CN)6]3-", " [Fe(CN)<sub>6</sub>]<sup>3&minus;</sup>"},
		{"carbonate", "CO3(2-)", " CO<sub>3</sub><sup>2&minus;</sup>"},
		{"iron three plus", "Fe(3+)", " Fe<sup>3+</sup>"},
		{"neutral charge", "NO(0)", " NO<sup>0</sup>"},
		{"single minus", "Cl(-)", " Cl<sup>&minus;</sup>"},
		{
			"balanced equation",
			"2 H2 + O2 -----> 2 H2O",
			" 2 H<sub>2</sub> &nbsp;&plus;&nbsp; O<sub>2</sub> &nbsp;&rarr;&nbsp; 2 H<sub>2</sub>O",
		},
		{"short arrow", "A -> B", " A &nbsp;&rarr;&nbsp; B"},
		{"escaped arrow", "A --&gt; B", " A &nbsp;&rarr;&nbsp; B"},
		{"equilibrium", "A <---> B", " A &nbsp;&rlhar;&nbsp; B"},
		{"equilibrium equals", "A <=> B", " A &nbsp;&rlhar;&nbsp; B"},
		{"equilibrium escaped", "A &lt;-&gt; B", " A &nbsp;&rlhar;&nbsp; B"},
		{"aqueous", "NaCl (aq)", " NaCl <small><em>&nbsp;(aq)&nbsp;</em></small>"},
		{"gas", "CO2(g)", " CO<sub>2</sub><small><em>&nbsp;(g)&nbsp;</em></small>"},
		{"lowercase group passthrough", "(x)", " (x)"},
		{"rs notation", "(2R,3S)-tartaric acid", " <em>(2R,3S)</em>-tartaric acid"},
		{"locants", "2,3-dimethylbutane", " 2,3-dimethylbutane"},
		{"decimal coefficient", "0.5 O2", " 0.5 O<sub>2</sub>"},
		{"html tag", "<b>H2O</b>", " <b>H<sub>2</sub>O</b>"},
		{"words", "sodium chloride", " sodium chloride"},
		{"multi digit subscript", "C12H22O11", " C<sub>12</sub>H<sub>22</sub>O<sub>11</sub>"},
		{"dotted number stays literal", "CuSO4.5H2O", " CuSO4.5H<sub>2</sub>O"},
		{"vertical tab before coefficient", "H2O\v2 O2", " H<sub>2</sub>O\v2 O<sub>2</sub>"},
		{"no-break space before coefficient", "A\u00a02 B", " A\u00a02 B"},
		{"ideographic space before coefficient", "O\u30002 O", " O\u30002 O"},
		{"unicode spaces trimmed", "\u3000\ufeffH2O\u00a0", " H<sub>2</sub>O"},
		{"no-break space only", "\u00a0", "\u00a0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Format(tt.input))
		})
	}
}

func TestTokenizeAccountsForEveryCharacter(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"H2SO4",
		"[Fe(CN)6]4- + 2 Cl2 --> [Fe(CN)6]3- + 2 Cl(-)",
		"Ca(OH)2 (s) <==> Ca(2+) (aq) + 2 OH(-) (aq)",
		"(x) {y} ~ 10% of ÅngströmΩ",
		"&lt;b&gt; 1,2,3 ---",
		"  padded\tinput  ",
		"2R,3S (2R,3S)",
		"a]b[c)d(e",
	}

	f := NewFormatter()
	for _, input := range inputs {
		var text strings.Builder
		for _, tok := range f.Tokenize(input) {
			require.NotEmpty(t, tok.Text, "rule %s consumed nothing", tok.Rule)
			text.WriteString(tok.Text)
		}
		assert.Equal(t, " "+strings.TrimSpace(input), text.String())
	}
}

func TestTokenizeRuleSelection(t *testing.T) {
	t.Parallel()

	var rules []string
	for _, tok := range NewFormatter().Tokenize("[NO3]- (x)") {
		rules = append(rules, tok.Rule)
	}
	assert.Equal(t, []string{
		RuleWhitespace,
		RuleOpenBracket,
		RuleElement,
		RuleElement,
		RuleSubscript,
		RuleCloseBracketWithChargeMinus,
		RuleWhitespace,
		RuleIdentity,
		RuleNormalWord,
		RuleCloseBracket,
	}, rules)
}

func TestTokenizeBlank(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewFormatter().Tokenize(""))
	assert.Nil(t, NewFormatter().Tokenize(" \t "))
}

// fixedMatcher reports the same match for any non-empty input.
type fixedMatcher struct {
	loc []int
}

func (m fixedMatcher) FindStringSubmatchIndex(s string) []int {
	if s == "" || m.loc == nil {
		return nil
	}
	return append([]int(nil), m.loc...)
}

func TestFormatTieGoesToFirstRule(t *testing.T) {
	t.Parallel()

	first := Rule{Name: "first", Matcher: fixedMatcher{loc: []int{0, 1}}, Template: "A"}
	second := Rule{Name: "second", Matcher: fixedMatcher{loc: []int{0, 1}}, Template: "B"}

	assert.Equal(t, "AAA", NewFormatter(WithRules(first, second)).Format("xy"))
	assert.Equal(t, "BBB", NewFormatter(WithRules(second, first)).Format("xy"))
}

func TestFormatLaterMatchLosesToIdentity(t *testing.T) {
	t.Parallel()

	later := Rule{Name: "later", Matcher: fixedMatcher{loc: []int{1, 2}}, Template: "!"}
	f := NewFormatter(WithRules(later))

	assert.Equal(t, " abc", f.Format("abc"))
}

func TestFormatNeverMatchingRules(t *testing.T) {
	t.Parallel()

	never := Rule{Name: "never", Matcher: fixedMatcher{}, Template: "!"}
	f := NewFormatter(WithRules(never))

	assert.Equal(t, " H2SO4 -> x", f.Format("H2SO4 -> x"))
}

func TestFormatRunawayRuleStopsAtBudget(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	empty := Rule{Name: "empty", Matcher: fixedMatcher{loc: []int{0, 0}}, Template: "."}
	f := NewFormatter(WithRules(empty), WithMaxSteps(25), WithLogger(logger))

	out := f.Format("H2O")

	assert.Equal(t, strings.Repeat(".", 25), out)
	assert.Contains(t, logs.String(), "iteration budget")
}

func TestFormatLongWhitespaceRunBeforeCharge(t *testing.T) {
	t.Parallel()

	input := "A" + strings.Repeat(" ", 4000) + "5+"
	start := time.Now()
	out := Format(input)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, " A"+strings.Repeat(" ", 4000)+"5&nbsp;&plus;&nbsp;", out)
}

func TestFormatDefaultBudgetCoversLongInput(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("H2O ", 600)
	out := Format(input)

	assert.Equal(t, 600, strings.Count(out, "<sub>2</sub>"))
	assert.True(t, strings.HasSuffix(out, "H<sub>2</sub>O"))
}

func TestWithMaxStepsIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	f := NewFormatter(WithMaxSteps(0), WithMaxSteps(-3))
	assert.Equal(t, DefaultMaxSteps, f.maxSteps)
}

func TestFormatConcurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, " H<sub>2</sub>SO<sub>4</sub>", Format("H2SO4"))
			}
		}()
	}
	wg.Wait()
}

func TestDefaultRulesIsACopy(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	require.Len(t, rules, 18)
	rules[0].Template = "changed"

	assert.Equal(t, RuleNumberPunctuation, DefaultRules()[0].Name)
	assert.Equal(t, "$1", DefaultRules()[0].Template)
	assert.Equal(t, RuleWhitespace, DefaultRules()[17].Name)
}

func BenchmarkFormat(b *testing.B) {
	input := "Ca(OH)2 (s) <==> Ca(2+) (aq) + 2 OH(-) (aq)"
	for i := 0; i < b.N; i++ {
		_ = Format(input)
	}
}
