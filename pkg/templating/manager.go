package templating

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/jreel/js-chem/pkg/chemform"
	"github.com/jreel/js-chem/pkg/elements"
	"github.com/jreel/js-chem/pkg/markdown"
	"github.com/yuin/goldmark"
)

// ElementSource supplies the element data used by the template functions.
// *elements.Store implements it.
type ElementSource interface {
	Dataset(ctx context.Context) (*elements.Dataset, error)
}

// TemplateManager is the central controller for the templating engine.
// It manages the template set, configuration, function map, and the element
// data the chemistry functions read from. It is responsible for loading,
// parsing, and executing templates in a concurrent-safe manner.
// All methods are concurrent-safe.
type TemplateManager struct {
	logger         *slog.Logger
	config         *TemplateConfig
	source         ElementSource
	dataset        *elements.Dataset
	formatter      *chemform.Formatter
	md             goldmark.Markdown
	templates      *template.Template
	cleanTemplates *template.Template
	templateNames  []string
	funcMap        template.FuncMap
	templateDir    string
	mu             sync.RWMutex
}

// NewTemplateManager creates, initializes, and returns a new TemplateManager.
// source may be nil, in which case the embedded element dataset is used.
// dataDir must contain a "templates" subdirectory. It performs an initial
// Refresh to load all templates and element data.
func NewTemplateManager(logger *slog.Logger, source ElementSource, config *TemplateConfig, dataDir string) (*TemplateManager, error) {
	if config == nil {
		config = DefaultConfig()
	}

	tm := &TemplateManager{
		logger:      logger,
		source:      source,
		templateDir: filepath.Join(dataDir, "templates"),
	}
	tm.applyConfig(config)
	tm.funcMap = tm.makeFuncMap()

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("Template manager initialized")
	return tm, nil
}

func (tm *TemplateManager) makeFuncMap() template.FuncMap {
	return template.FuncMap{
		// Chemistry (from funcs_chem.go)
		"chemform":      tm.chemform,
		"periodicTable": tm.periodicTable,
		"atom":          tm.atom,
		"lewis":         tm.lewis,
		"element":       tm.element,
		"elements":      tm.elements,
		"elementsWhere": tm.elementsWhere,
		"trend":         tm.trend,
		"markdown":      tm.markdown,
		"formatMass":    formatMass,
		"comma":         comma,
		"ordinal":       ordinal,

		// Logic & Control (from funcs_logic.go)
		"repeat":       repeat,
		"list":         list,
		"dict":         dict,
		"randomChoice": randomChoice,
		"randomInt":    randomInt,

		// Simple (from funcs_simple.go)
		"add":   add,
		"sub":   sub,
		"div":   div,
		"mult":  mult,
		"max":   max,
		"min":   min,
		"mod":   mod,
		"inc":   inc,
		"dec":   dec,
		"addf":  addf,
		"mulf":  mulf,
		"divf":  divf,
		"round": round,
		"and":   and,
		"or":    or,
		"not":   not,
		"isSet": isSet,
	}
}

// SetConfig applies a new configuration to the TemplateManager. This allows
// the safety limits and table defaults to change without restarting the
// application.
func (tm *TemplateManager) SetConfig(config *TemplateConfig) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.applyConfig(config)
}

// applyConfig must be called with mu held or before tm is shared.
func (tm *TemplateManager) applyConfig(config *TemplateConfig) {
	tm.config = config
	tm.formatter = chemform.NewFormatter(
		chemform.WithMaxSteps(config.MaxFormatSteps),
		chemform.WithLogger(tm.logger),
	)
	tm.md = markdown.New(tm.formatter)
}

// Refresh reloads all templates from the filesystem and the element data from
// the source. This allows updates to templates and element corrections to
// show up without restarting the application.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	filePattern := filepath.Join(tm.templateDir, "*.tmpl.html")
	tm.logger.Info("Loading template files...")

	parsedFiles, err := template.New("").Funcs(tm.funcMap).ParseGlob(filePattern)
	var names []string
	if err != nil {
		if !strings.Contains(err.Error(), "pattern matches no files") {
			tm.logger.Error("failed to parse template files", "error", err)
			return err
		}
		parsedFiles = template.New("").Funcs(tm.funcMap)
		names = []string{}
	} else {
		for _, t := range parsedFiles.Templates() {
			// The root template has no name and is never executed.
			if strings.HasSuffix(t.Name(), ".tmpl.html") {
				names = append(names, t.Name())
			}
		}
	}

	partPattern := filepath.Join(tm.templateDir, "*.part.html")
	tm.logger.Info("Loading partial files...")

	withParts, err := parsedFiles.ParseGlob(partPattern)
	if err != nil {
		if !strings.Contains(err.Error(), "pattern matches no files") {
			tm.logger.Error("failed to parse partial files", "error", err)
			return err
		}
		withParts = parsedFiles
	}

	if len(names) == 0 {
		tm.logger.Warn("No template files found matching pattern", "pattern", filePattern)
	}
	slices.Sort(names)

	clean, err := withParts.Clone()
	if err != nil {
		tm.logger.Error("failed to create a clean clone of templates", "error", err)
		return err
	}

	dataset, err := tm.loadDataset()
	if err != nil {
		tm.logger.Error("failed to load element data", "error", err)
		return err
	}

	tm.templates = withParts
	tm.cleanTemplates = clean
	tm.templateNames = names
	tm.dataset = dataset
	tm.logger.Info("Loaded template and partial files", "count", len(withParts.Templates())-1, "elements", dataset.Len())
	return nil
}

func (tm *TemplateManager) loadDataset() (*elements.Dataset, error) {
	if tm.source == nil {
		return elements.Load()
	}
	return tm.source.Dataset(context.Background())
}

// Execute renders a specific template by name, writing the output to the provided io.Writer.
// The `data` argument is passed to the template and can be used to provide context or
// dynamic values.
func (tm *TemplateManager) Execute(w io.Writer, name string, data any) error {
	if name == "" {
		return nil
	}
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.ExecuteTemplate(w, name, data)
}

// HasTemplate reports whether name is a loaded full template.
func (tm *TemplateManager) HasTemplate(name string) bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	_, found := slices.BinarySearch(tm.templateNames, name)
	return found
}

// GetConfig returns a copy of the current configuration.
// This mainly exists for concurrency-safety reasons.
func (tm *TemplateManager) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return *tm.config
}

// GetTemplateNames returns a slice of the loaded template names, partials
// included.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	var names []string
	for _, t := range tm.templates.Templates() {
		if strings.HasSuffix(t.Name(), ".html") {
			names = append(names, t.Name())
		}
	}
	slices.Sort(names)
	return names
}

// GetTemplateDir returns the template dir that the TemplateManager uses.
func (tm *TemplateManager) GetTemplateDir() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templateDir
}

// ExecuteTemplateString parses and executes a raw template string using the manager's function map.
// This is ideal for previewing templates without saving them to disk.
func (tm *TemplateManager) ExecuteTemplateString(w io.Writer, content string, data any) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	// Clone the clean, unexecuted template set; an executed set cannot be parsed into.
	tempSet, err := tm.cleanTemplates.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone clean templates for string execution: %w", err)
	}

	t, err := tempSet.Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse string template: %w", err)
	}

	return t.Execute(w, data)
}
