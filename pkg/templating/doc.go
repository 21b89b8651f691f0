/*
Package templating provides a filesystem-based Go template engine for
chemistry pages.

Templates are loaded from *.tmpl.html files, with shared fragments in
*.part.html files, and can be reloaded at runtime. The function map exposes
the formula formatter, periodic tables, Lewis atom drawings, property trend
charts and Markdown with \ce{...} spans, next to a small set of arithmetic
and logic helpers. Every function honours the size limits of TemplateConfig
so that a template or a preview request cannot produce unbounded output.

For example:

	<p>{{chemform "2 H2 + O2 -> 2 H2O"}}</p>
	{{periodicTable "main-table" "size=main" "info=symbol,number"}}
	{{with element "Fe"}}{{.DisplayName}} is element {{ordinal .Number}}{{end}}
*/
package templating
