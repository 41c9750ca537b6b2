package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
codegen:
  workers: 8
  mapping: host-path
fetch:
  max_attempts: 5
`)

	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
schemas:
  - path: schema/*.ttl
output:
  dir: model
codegen:
  mapping: flat
`)
	nested := filepath.Join(project, "cmd", "tool")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := NewLoader(nil).LoadFrom(nested)
	require.NoError(t, err)

	// project overrides user, user overrides defaults
	assert.Equal(t, "flat", string(cfg.Codegen.Mapping))
	assert.Equal(t, 8, cfg.Codegen.Workers)
	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)

	// relative paths resolve against the project file
	require.Len(t, cfg.Schemas, 1)
	assert.Equal(t, filepath.Join(project, "schema", "*.ttl"), cfg.Schemas[0].Path)
	assert.Equal(t, filepath.Join(project, "model"), cfg.Output.Dir)
}

func TestLoaderDefaultsOnly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := NewLoader(nil).LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Codegen, cfg.Codegen)
	assert.Equal(t, "gen", cfg.Output.Dir)
}

func TestLoaderRejectsInvalidProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), "codegen:\n  mapping: sideways\n")

	_, err := NewLoader(nil).LoadFrom(project)
	assert.Error(t, err)
}

func TestLoaderRejectsMalformedProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), "schemas: [unterminated\n")

	_, err := NewLoader(nil).LoadFrom(project)
	assert.Error(t, err)
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	l := NewLoader(nil)

	require.NoError(t, l.EnsureUserConfig())
	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Fetch, loaded.Fetch)

	// existing files are left alone
	writeFile(t, path, "output:\n  dir: custom\n")
	require.NoError(t, l.EnsureUserConfig())
	loaded, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", loaded.Output.Dir)
}
