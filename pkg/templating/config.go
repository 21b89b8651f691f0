package templating

import "github.com/jreel/js-chem/pkg/periodic"

// TemplateConfig holds all configuration options for the templating engine.
type TemplateConfig struct {
	// MaxFormulaLength is the longest input chemform will format. Longer
	// input is escaped and returned as plain text.
	MaxFormulaLength int

	// MaxFormatSteps bounds the rewrite steps of a single chemform call.
	MaxFormatSteps int

	// MaxAtoms sets the maximum number of atoms drawn by a single lewis call.
	MaxAtoms int

	// MaxCanvasSize caps the width and height of lewis drawings in pixels.
	MaxCanvasSize int

	// MaxMarkdownSize is the largest source, in bytes, accepted by markdown.
	MaxMarkdownSize int

	// Table holds the defaults periodicTable starts from. Its ID is replaced
	// by the id passed in the template.
	Table periodic.Options
}

// DefaultConfig returns a TemplateConfig with safe default values.
func DefaultConfig() *TemplateConfig {
	return &TemplateConfig{
		MaxFormulaLength: 2048,
		MaxFormatSteps:   10000,
		MaxAtoms:         32,
		MaxCanvasSize:    2000,
		MaxMarkdownSize:  262144, // 256KB
		Table:            periodic.DefaultOptions(),
	}
}
