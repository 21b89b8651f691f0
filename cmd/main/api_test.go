package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jreel/js-chem/pkg/elements"
	"github.com/jreel/js-chem/pkg/trends"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthKeys(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	// The first key is always a master key.
	rec := do(t, h, http.MethodPost, "/api/auth/keys", `{"scopes":["format:use"],"description":"admin"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	master := decode[CreateKeyResponse](t, rec)
	assert.Equal(t, []string{"*"}, master.Scopes)
	assert.True(t, strings.HasPrefix(master.RawKey, "chem_"))

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/elements", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/elements", "", "chem-auth", "chem_wrong").Code)

	rec = do(t, h, http.MethodPost, "/api/auth/keys", `{"scopes":["format:use"],"description":"formatter"}`, "chem-auth", master.RawKey)
	require.Equal(t, http.StatusCreated, rec.Code)
	limited := decode[CreateKeyResponse](t, rec)
	assert.Equal(t, []string{"format:use"}, limited.Scopes)

	rec = do(t, h, http.MethodPost, "/api/auth/keys", `{"scopes":["everything"]}`, "chem-auth", master.RawKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK,
		do(t, h, http.MethodPost, "/api/format", `{"input":"H2O"}`, "chem-auth", limited.RawKey).Code)
	assert.Equal(t, http.StatusForbidden,
		do(t, h, http.MethodGet, "/api/elements", "", "chem-auth", limited.RawKey).Code)
	assert.Equal(t, http.StatusForbidden,
		do(t, h, http.MethodPost, "/api/auth/keys", `{}`, "chem-auth", limited.RawKey).Code)

	rec = do(t, h, http.MethodGet, "/api/auth/keys", "", "chem-auth", master.RawKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]APIKeyInfo](t, rec), 2)

	assert.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodDelete, "/api/auth/keys/1", "", "chem-auth", master.RawKey).Code)
	assert.Equal(t, http.StatusNoContent,
		do(t, h, http.MethodDelete, fmt.Sprintf("/api/auth/keys/%d", limited.ID), "", "chem-auth", master.RawKey).Code)
	assert.Equal(t, http.StatusUnauthorized,
		do(t, h, http.MethodPost, "/api/format", `{"input":"H2O"}`, "chem-auth", limited.RawKey).Code)
}

func TestFormatAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	rec := do(t, h, http.MethodPost, "/api/format", `{"input":"H2SO4"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, FormatResponse{Results: []FormatResult{
		{Input: "H2SO4", HTML: " H<sub>2</sub>SO<sub>4</sub>"},
	}}, decode[FormatResponse](t, rec))

	rec = do(t, h, http.MethodPost, "/api/format", `{"inputs":["[NO3]-","H2SO4"],"tokens":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[FormatResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, " [NO<sub>3</sub>]<sup>&minus;</sup>", resp.Results[0].HTML)
	assert.NotEmpty(t, resp.Results[0].Tokens)
	assert.Equal(t, "whitespace", resp.Results[0].Tokens[0].Rule)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/format", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/format", `not json`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/format", "").Code)

	many := `{"inputs":[` + strings.TrimSuffix(strings.Repeat(`"H2",`, 101), ",") + `]}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(t, h, http.MethodPost, "/api/format", many).Code)
	long := `{"input":"` + strings.Repeat("C", 5000) + `"}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(t, h, http.MethodPost, "/api/format", long).Code)

	rec = do(t, h, http.MethodGet, "/api/format/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decode[[]RuleInfo](t, rec)
	require.Len(t, rules, 18)
	assert.Equal(t, RuleInfo{Priority: 1, Name: "numberpunctuation", Template: "$1"}, rules[0])
}

func TestStatsAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	for _, body := range []string{`{"input":"H2O"}`, `{"inputs":["H2O","CO2"," "]}`} {
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/format", body).Code)
	}
	require.Equal(t, http.StatusOK, do(t, env.server.PageHandler(), http.MethodGet, "/", "").Code)

	rec := do(t, h, http.MethodGet, "/api/stats/top_formulas", "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[[]FormulaStat](t, rec)
	require.Len(t, top, 2)
	assert.Equal(t, "H2O", top[0].Formula)
	assert.Equal(t, 2, top[0].TotalUses)
	assert.NotEmpty(t, top[0].LastSeenHuman)
	assert.Equal(t, "CO2", top[1].Formula)

	rec = do(t, h, http.MethodGet, "/api/stats/top_formulas?limit=1", "")
	assert.Len(t, decode[[]FormulaStat](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/stats/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[GlobalStatsSummary](t, rec)
	assert.Equal(t, int64(3), summary.TotalFormatted)
	assert.Equal(t, int64(2), summary.UniqueFormulas)
	assert.Equal(t, int64(1), summary.Endpoints["index.tmpl.html"])
}

func TestStatsAPIStoresWholeRunes(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	formula := "H" + strings.Repeat("é", 150)
	body, err := json.Marshal(map[string]string{"input": formula})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/format", string(body)).Code)

	rec := do(t, h, http.MethodGet, "/api/stats/top_formulas", "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[[]FormulaStat](t, rec)
	require.Len(t, top, 1)
	assert.True(t, utf8.ValidString(top[0].Formula))
	assert.Equal(t, formula[:255], top[0].Formula)
}

func TestTruncateFormula(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "H2O", truncateFormula("H2O", 256))
	assert.Equal(t, "ab", truncateFormula("abc", 2))
	assert.Equal(t, "a", truncateFormula("aé", 2))
	assert.Equal(t, "", truncateFormula("€", 2))
}

func TestElementsAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	rec := do(t, h, http.MethodGet, "/api/elements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]elements.Element](t, rec), 118)

	rec = do(t, h, http.MethodGet, "/api/elements?type=noble-gas", "")
	assert.Len(t, decode[[]elements.Element](t, rec), 7)
	rec = do(t, h, http.MethodGet, "/api/elements?block=s&period=3", "")
	assert.Len(t, decode[[]elements.Element](t, rec), 2)

	rec = do(t, h, http.MethodGet, "/api/elements/fe", "")
	require.Equal(t, http.StatusOK, rec.Code)
	fe := decode[elements.Element](t, rec)
	assert.Equal(t, 26, fe.Number)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/elements/Zz", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodDelete, "/api/elements/Fe", "").Code)
}

func TestElementsAPIUpdate(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	fe := decode[elements.Element](t, do(t, h, http.MethodGet, "/api/elements/Fe", ""))
	fe.Color = "B7410E"
	put := func(el elements.Element) string {
		b, err := json.Marshal(el)
		require.NoError(t, err)
		return string(b)
	}
	body := put(fe)

	rec := do(t, h, http.MethodPut, "/api/elements/Fe", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, fe, decode[elements.Element](t, rec))
	assert.Equal(t, "B7410E", decode[elements.Element](t, do(t, h, http.MethodGet, "/api/elements/Fe", "")).Color)

	// Templates see the correction.
	rec = do(t, h, http.MethodPost, "/api/templates/test", `{{(element "Fe").HexColor}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#b7410e", rec.Body.String())

	renumbered := fe
	renumbered.Number = 27
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/api/elements/Fe", put(renumbered)).Code)
	badColor := fe
	badColor.Color = "rust"
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/api/elements/Fe", put(badColor)).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/api/elements/Zz", body).Code)
}

func TestTableAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	rec := do(t, h, http.MethodGet, "/api/table?id=t1&size=main&info=symbol,number&shade=block&border=", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<table id="t1" class="periodic-table size-main">`))
	assert.Contains(t, body, `<span class="info-number">11</span>`)
	assert.NotContains(t, body, `data-symbol="Fe"`)

	rec = do(t, h, http.MethodGet, "/api/table", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<table id="ptable" class="periodic-table size-typical">`)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/table?size=huge", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/table?info=colour", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/table?id=1st", "").Code)
}

func TestAtomAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	rec := do(t, h, http.MethodGet, "/api/atom/O?x=40&y=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `width="72" height="82"`)
	assert.Contains(t, body, `<g id="O1"`)
	assert.Contains(t, body, "function startMove")

	rec = do(t, h, http.MethodGet, "/api/atom/N?fragment=1&id=nitrogen", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nitrogen", rec.Header().Get("X-Atom-Id"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<g id="nitrogen"`))

	rec = do(t, h, http.MethodGet, "/api/atom/N?fragment=1", "")
	assert.True(t, strings.HasPrefix(rec.Header().Get("X-Atom-Id"), "N-"))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/atom/Zz", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/atom/O?x=left", "").Code)
}

func TestAtomMoveAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	rec := do(t, h, http.MethodPost, "/api/atom/move", `{"transform":"translate(10 20)","start_x":100,"start_y":100,"x":105,"y":95}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"transform": "translate(15 15)"}, decode[map[string]string](t, rec))

	rec = do(t, h, http.MethodPost, "/api/atom/move", `{"x":3,"y":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "translate(3 4)", decode[map[string]string](t, rec)["transform"])

	assert.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPost, "/api/atom/move", `{"transform":"rotate(45)","x":1,"y":1}`).Code)
}

func TestTrendAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	rec := do(t, h, http.MethodGet, "/api/trend/electroneg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = do(t, h, http.MethodGet, "/api/trend/melting?format=png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = do(t, h, http.MethodGet, "/api/trend/mass/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[trends.Summary](t, rec)
	assert.Equal(t, 118, summary.Count)
	assert.Greater(t, summary.Correlation, 0.99)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/trend/colour", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/trend/mass/other", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/trend/mass?format=gif", "").Code)
}

func TestTemplateAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	rec := do(t, h, http.MethodGet, "/api/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"index.tmpl.html", "lesson.tmpl.html"}, decode[[]string](t, rec))

	rec = do(t, h, http.MethodPost, "/api/templates/test?formula=CO2", `{{chemform (.Query.Get "formula")}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CO<sub>2</sub>", rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/templates/test", `{{element "Zz"}}`).Code)

	rec = do(t, h, http.MethodPut, "/api/templates/salt.tmpl.html", `<p>{{chemform "NaCl (aq)"}}</p>`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, env.server.PageHandler(), http.MethodGet, "/salt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>NaCl <small><em>&nbsp;(aq)&nbsp;</em></small></p>", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/templates/preview?name=salt.tmpl.html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/templates/preview?name=gone.tmpl.html", "").Code)

	rec = do(t, h, http.MethodGet, "/api/templates/salt.tmpl.html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<p>{{chemform "NaCl (aq)"}}</p>`, rec.Body.String())

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodPut, "/api/templates/broken.tmpl.html", `{{if}}`).Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/templates/broken.tmpl.html", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/templates/config.json", "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/templates/salt.tmpl.html", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, env.server.PageHandler(), http.MethodGet, "/salt", "").Code)
}

func TestServerAPI(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t)
	h := env.server.APIHandler()

	rec := do(t, h, http.MethodGet, "/api/server/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, VersionInfo{Version: "dev", Commit: "none", BuildDate: "unknown"}, decode[VersionInfo](t, rec))

	rec = do(t, h, http.MethodGet, "/api/server/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"format_config"`)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/api/server/config", `{"server_config":null}`).Code)

	rec = do(t, h, http.MethodPost, "/api/server/restart", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, actionRestart, <-env.actions)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/server/shutdown", "").Code)
}
