package chemform

// Rule names of the default table.
const (
	RuleNumberPunctuation           = "numberpunctuation"
	RuleRSNotation                  = "rsnotation"
	RuleElement                     = "element"
	RuleCoefficient                 = "coefficient"
	RuleSubscript                   = "subscript"
	RuleCloseBracketWithCharge      = "closebracketwithcharge"
	RuleCloseBracketWithChargeMinus = "closebracketwithchargeminus"
	RuleBracketedCharge             = "bracketedcharge"
	RuleBracketedChargeMinus        = "bracketedchargeminus"
	RuleArrow                       = "arrow"
	RuleEquilibrium                 = "equilibrium"
	RuleReactionPlus                = "reactionplus"
	RulePhase                       = "phase"
	RuleOpenBracket                 = "openbracket"
	RuleCloseBracket                = "closebracket"
	RuleHTMLTag                     = "htmltag"
	RuleNormalWord                  = "normalword"
	RuleWhitespace                  = "whitespace"

	// RuleIdentity names the implicit one-character passthrough.
	RuleIdentity = "identity"
)

// space matches the same characters as \s in an ECMAScript pattern, which is
// wider than the RE2 \s.
const space = `[\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

var defaultRules = []Rule{
	// 2,3-dimethyl or 1.5 must not be split into subscripts.
	mustRule(NewRule(RuleNumberPunctuation, `([0-9]+[,.\-][0-9]+)`, `$1`)),
	mustRule(NewRule(RuleRSNotation, `(\((?:\d+(?:R|S),?)+\))`, `<em>$1</em>`)),
	mustRule(NewGuardedRule(RuleElement, `([A-Z][a-z]?)`, `[^a-z]|$`, `$1`)),
	mustRule(NewGuardedRule(RuleCoefficient, `(`+space+`+[0-9]+[,.]?[0-9]*)`, `[^+\-]|$`, `$1`)),
	mustRule(NewGuardedRule(RuleSubscript, `([1-9][0-9]*)`, `[^+\-]|$`, `<sub>$1</sub>`)),

	mustRule(NewRule(RuleCloseBracketWithCharge, `\]([1-9]*[+])`, `]<sup>$1</sup>`)),
	mustRule(NewRule(RuleCloseBracketWithChargeMinus, `\]([1-9]*)[\-]`, `]<sup>$1&minus;</sup>`)),
	mustRule(NewRule(RuleBracketedCharge, `[(\[](0|[1-9]*[+])[)\]]`, `<sup>$1</sup>`)),
	mustRule(NewRule(RuleBracketedChargeMinus, `[(\[]([1-9]*)[\-][)\]]`, `<sup>$1&minus;</sup>`)),

	mustRule(NewRule(RuleArrow, `\-+(?:>|&gt;)`, `&nbsp;&rarr;&nbsp;`)),
	mustRule(NewRule(RuleEquilibrium, `(?:<|&lt;)(\-|=)+(?:>|&gt;)`, `&nbsp;&rlhar;&nbsp;`)),
	mustRule(NewRule(RuleReactionPlus, `\+`, `&nbsp;&plus;&nbsp;`)),
	mustRule(NewRule(RulePhase, `\((aq|l|s|g)\)`, `<small><em>&nbsp;($1)&nbsp;</em></small>`)),

	// A bracket opening a charge or a lowercase group is left to the rules above.
	mustRule(NewGuardedRule(RuleOpenBracket, `([\[(])`, `$|[^a-z0-9+\-]|[1-9]+(?:$|[^1-9+\-])`, `$1`)),
	mustRule(NewRule(RuleCloseBracket, `([\])])`, `$1`)),
	mustRule(NewRule(RuleHTMLTag, `(</?[A-Za-z]+[^>]*>)`, `$1`)),
	mustRule(NewRule(RuleNormalWord, `\b(\w+)\b`, `$1`)),
	mustRule(NewRule(RuleWhitespace, `(`+space+`+)`, `$1`)),
}

// DefaultRules returns a copy of the built-in table in priority order.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}
