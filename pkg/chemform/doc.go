/*
Package chemform converts plain-ASCII chemical formulas and equations into
HTML fragments with subscripts, superscripts and symbol substitutions.

The conversion is a single greedy pass over the input. At every step each
rule of an ordered table reports its leftmost match in the unconsumed text;
a rule matching at the very front wins, with ties going to the rule listed
first. When no rule matches at the front, a single character is copied to
the output unchanged. The winning rule's template is expanded and appended,
and the matched text is consumed.

	chemform.Format("H2SO4")    // " H<sub>2</sub>SO<sub>4</sub>"
	chemform.Format("[NO3]-")   // " [NO<sub>3</sub>]<sup>&minus;</sup>"
	chemform.Format("NaCl (aq)") // " NaCl <small><em>&nbsp;(aq)&nbsp;</em></small>"

Non-blank input is trimmed and prefixed with a single space before
processing, and that space is kept in the output. Formatting never fails;
a pathological rule set is stopped by an iteration budget and the partial
output is returned.
*/
package chemform
