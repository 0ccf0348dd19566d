package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Fetch.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "http", cfg.Fetch.Engine)
	assert.Equal(t, "recipes", cfg.Mongo.Collection)
	assert.Equal(t, "https://kulinaria.ge", cfg.Catalog.BaseURL)
	assert.Equal(t, "html", cfg.Catalog.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvester.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fetch:
  concurrency: 8
  timeout: 5s
  engine: colly
mongo:
  collection: kulinaria
`), 0o644))
	t.Setenv("HARVESTER_FETCH_CONCURRENCY", "3")
	t.Setenv("HARVESTER_LOGGING_LEVEL", "debug")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Fetch.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "colly", cfg.Fetch.Engine)
	assert.Equal(t, "kulinaria", cfg.Mongo.Collection)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsZeroConcurrency(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HARVESTER_FETCH_CONCURRENCY", "0")

	_, err := Load(NewViper(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Concurrency")
}

func TestValidate_RejectsUnknownEngine(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	cfg.Fetch.Engine = "chrome"
	assert.Error(t, cfg.Validate())

	cfg.Fetch.Engine = "colly"
	cfg.Catalog.Format = "sitemap"
	assert.Error(t, cfg.Validate())
}
