package templating

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jreel/js-chem/pkg/elements"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestManager creates a TemplateManager for a single test's scope,
// backed by the embedded element data.
func setupTestManager(tb testing.TB) *TemplateManager {
	tb.Helper()
	return setupTestManagerWith(tb, nil)
}

func setupTestManagerWith(tb testing.TB, source ElementSource) *TemplateManager {
	tb.Helper()

	dataDir := tb.TempDir()
	templatesPath := filepath.Join(dataDir, "templates")
	require.NoError(tb, os.Mkdir(templatesPath, 0755))

	dummyTmplPath := filepath.Join(templatesPath, "dummy.tmpl.html")
	require.NoError(tb, os.WriteFile(dummyTmplPath, []byte(`{{define "dummy.tmpl.html"}}Hello{{end}}`), 0644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm, err := NewTemplateManager(logger, source, DefaultConfig(), dataDir)
	require.NoError(tb, err)
	return tm
}

func TestNewTemplateManager(t *testing.T) {
	t.Parallel()

	tm := setupTestManager(t)
	assert.Equal(t, []string{"dummy.tmpl.html"}, tm.templateNames)
	assert.Equal(t, 118, tm.dataset.Len())
	assert.True(t, tm.HasTemplate("dummy.tmpl.html"))
	assert.False(t, tm.HasTemplate("missing.tmpl.html"))
}

func TestNewTemplateManagerEmptyDir(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dataDir, "templates"), 0755))

	tm, err := NewTemplateManager(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil, dataDir)
	require.NoError(t, err)
	assert.Empty(t, tm.templateNames)
	assert.Equal(t, DefaultConfig().MaxAtoms, tm.GetConfig().MaxAtoms)
}

func TestManager_Refresh(t *testing.T) {
	t.Parallel()

	tm := setupTestManager(t)
	initialCount := len(tm.templateNames)

	newTmplPath := filepath.Join(tm.GetTemplateDir(), "new.tmpl.html")
	require.NoError(t, os.WriteFile(newTmplPath, []byte(`New Content`), 0644))
	partPath := filepath.Join(tm.GetTemplateDir(), "footer.part.html")
	require.NoError(t, os.WriteFile(partPath, []byte(`{{define "footer.part.html"}}fin{{end}}`), 0644))

	require.NoError(t, tm.Refresh())

	assert.Len(t, tm.templateNames, initialCount+1)
	assert.Equal(t, []string{"dummy.tmpl.html", "footer.part.html", "new.tmpl.html"}, tm.GetTemplateNames())
}

func TestManager_RefreshRejectsBrokenTemplate(t *testing.T) {
	t.Parallel()

	tm := setupTestManager(t)
	brokenPath := filepath.Join(tm.GetTemplateDir(), "broken.tmpl.html")
	require.NoError(t, os.WriteFile(brokenPath, []byte(`{{if}}`), 0644))

	assert.Error(t, tm.Refresh())

	// The previous set stays usable.
	var buf bytes.Buffer
	require.NoError(t, tm.Execute(&buf, "dummy.tmpl.html", nil))
	assert.Equal(t, "Hello", buf.String())
}

func TestManager_Execute(t *testing.T) {
	t.Parallel()

	tm := setupTestManager(t)
	var buf bytes.Buffer
	require.NoError(t, tm.Execute(&buf, "dummy.tmpl.html", nil))
	assert.Equal(t, "Hello", buf.String())

	err := tm.Execute(&buf, "nonexistent.tmpl.html", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `html/template: "nonexistent.tmpl.html" is undefined`)

	assert.NoError(t, tm.Execute(&buf, "", nil))
}

func TestManager_ExecuteTemplateString(t *testing.T) {
	t.Parallel()

	tm := setupTestManager(t)
	var buf bytes.Buffer
	require.NoError(t, tm.ExecuteTemplateString(&buf, `{{template "dummy.tmpl.html"}} {{chemform .}}`, "H2O"))
	assert.Equal(t, "Hello H<sub>2</sub>O", buf.String())

	// A preview must not leak into the loaded set.
	assert.False(t, tm.HasTemplate(""))
	assert.Equal(t, []string{"dummy.tmpl.html"}, tm.GetTemplateNames())

	err := tm.ExecuteTemplateString(&buf, `{{chemform}`, nil)
	assert.ErrorContains(t, err, "failed to parse string template")
}

func TestManager_SetConfig(t *testing.T) {
	t.Parallel()

	tm := setupTestManager(t)
	newConfig := DefaultConfig()
	newConfig.MaxAtoms = 99
	newConfig.MaxFormulaLength = 3
	tm.SetConfig(newConfig)

	assert.Equal(t, 99, tm.GetConfig().MaxAtoms)

	var buf bytes.Buffer
	require.NoError(t, tm.ExecuteTemplateString(&buf, `{{chemform "H2SO4"}}`, nil))
	assert.Equal(t, "H2SO4", buf.String())
}

func TestManager_RefreshReloadsStore(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, elements.SetupSchema(db))

	store, err := elements.NewStore(db)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	ctx := context.Background()
	_, err = store.Seed(ctx, elements.MustLoad().All())
	require.NoError(t, err)

	tm := setupTestManagerWith(t, store)
	render := func() string {
		var buf bytes.Buffer
		require.NoError(t, tm.ExecuteTemplateString(&buf, `{{(element "Fe").DisplayName}}`, nil))
		return buf.String()
	}
	assert.Equal(t, "Iron", render())

	fe, err := store.Get(ctx, "Fe")
	require.NoError(t, err)
	fe.Name = "ferrum"
	require.NoError(t, store.Update(ctx, fe))

	assert.Equal(t, "Iron", render(), "data is only reloaded on Refresh")
	require.NoError(t, tm.Refresh())
	assert.Equal(t, "Ferrum", render())
}

// setupBenchmarkTemplate is a helper to create and load a specific template for a benchmark.
func setupBenchmarkTemplate(b *testing.B, tm *TemplateManager, name, content string) {
	b.Helper()
	templatePath := filepath.Join(tm.GetTemplateDir(), name)
	require.NoError(b, os.WriteFile(templatePath, []byte(content), 0644))
	require.NoError(b, tm.Refresh())
}

// BenchmarkExecute_Formulas measures a page of formatted equations.
func BenchmarkExecute_Formulas(b *testing.B) {
	tm := setupTestManager(b)
	content := `{{range repeat 20}}<p>{{chemform "Ca(OH)2 (s) <==> Ca(2+) (aq) + 2 OH(-) (aq)"}}</p>{{end}}`
	setupBenchmarkTemplate(b, tm, "formulas.tmpl.html", content)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.Execute(io.Discard, "formulas.tmpl.html", nil)
	}
}

// BenchmarkExecute_Table measures rendering a full table with several info fields.
func BenchmarkExecute_Table(b *testing.B) {
	tm := setupTestManager(b)
	content := `{{periodicTable "pt" "size=long" "info=symbol,number,mass" "shade=electroneg"}}`
	setupBenchmarkTemplate(b, tm, "table.tmpl.html", content)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.Execute(io.Discard, "table.tmpl.html", nil)
	}
}

// BenchmarkExecute_Trend measures the cost of drawing a chart server side.
func BenchmarkExecute_Trend(b *testing.B) {
	tm := setupTestManager(b)
	setupBenchmarkTemplate(b, tm, "trend.tmpl.html", `{{trend "electroneg"}}`)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.Execute(io.Discard, "trend.tmpl.html", nil)
	}
}
