package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a class="box__title" href="/recipe/1">one</a>
			<a class="box__title" href="/recipe/2">two</a>
			<a class="box__title" href="/recipe/missing">gone</a>
		</body></html>`)
	})
	mux.HandleFunc("/recipe/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>აჭარული ხაჭაპური</h1><div class="list__item">ფქვილი</div></body></html>`)
	})
	mux.HandleFunc("/recipe/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>ჩაქაფული</h1></body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestHarvestCommand_WritesJSONExport(t *testing.T) {
	t.Chdir(t.TempDir())
	server := newSiteServer(t)

	out := filepath.Join("out", "recipes.json")
	_, stderr, err := runRoot(t, "harvest",
		"--store", "none",
		"--out", out,
		"--catalog-url", server.URL+"/catalog",
		"--base-url", server.URL,
		"--log-level", "error",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Harvested 2 recipes, 1 failed")

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var recipes []map[string]any
	require.NoError(t, json.Unmarshal(data, &recipes))
	require.Len(t, recipes, 2)
	assert.Equal(t, "აჭარული ხაჭაპური", recipes[0]["title"])
	assert.Equal(t, server.URL+"/recipe/1", recipes[0]["link"])
	assert.Equal(t, "ჩაქაფული", recipes[1]["title"])
	assert.NotEmpty(t, recipes[0]["run_id"])
	assert.Equal(t, recipes[0]["run_id"], recipes[1]["run_id"])
}

func TestHarvestCommand_PrintsJSONWithoutStore(t *testing.T) {
	t.Chdir(t.TempDir())
	server := newSiteServer(t)

	stdout, _, err := runRoot(t, "harvest",
		"--store", "none",
		"--engine", "colly",
		"--concurrency", "2",
		"--catalog-url", server.URL+"/catalog",
		"--base-url", server.URL,
		"--log-level", "error",
	)
	require.NoError(t, err)

	var recipes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &recipes))
	assert.Len(t, recipes, 2)
}

func TestHarvestCommand_RejectsUnknownStore(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runRoot(t, "harvest", "--store", "redis", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runRoot(t, "harvest", "--store", "none", "--log-level", "loud")
	require.Error(t, err)
}

func TestHarvestCommand_CatalogUnreachable(t *testing.T) {
	t.Chdir(t.TempDir())
	server := newSiteServer(t)

	_, _, err := runRoot(t, "harvest",
		"--store", "none",
		"--catalog-url", server.URL+"/nope",
		"--base-url", server.URL,
		"--log-level", "error",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch catalog")
}
