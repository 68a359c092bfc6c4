package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/esgraph/internal/compiler"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, FormatGo, cfg.Source.Format)
	assert.Equal(t, dir, cfg.Source.Dir)
	assert.Equal(t, []string{"./..."}, cfg.Source.Patterns)
	assert.Equal(t, "Q", cfg.Output.Prefix)
	assert.Equal(t, "", cfg.Output.Package)
	assert.False(t, cfg.Policy.IncludeUnexported)
	assert.Equal(t, "fallback", cfg.Policy.Overrides)
	assert.Equal(t, "first", cfg.Policy.Duplicates)
}

func TestLoadWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "esgraph.yml", `
source:
  format: hcl
  dir: schema
output:
  prefix: Es
  package: esmeta
  file: build/graph.json
policy:
  include_unexported: true
  overrides: strict
  duplicates: last
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, FormatHCL, cfg.Source.Format)
	assert.Equal(t, filepath.Join(dir, "schema"), cfg.Source.Dir)
	assert.Equal(t, "Es", cfg.Output.Prefix)
	assert.Equal(t, "esmeta", cfg.Output.Package)
	assert.Equal(t, "build/graph.json", cfg.Output.File)
	assert.True(t, cfg.Policy.IncludeUnexported)
	assert.Equal(t, []string{".hcl"}, cfg.WatchExtensions())

	opts, err := cfg.CompilerOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, "Es", opts.Prefix)
	assert.Equal(t, "esmeta", opts.Package)
	assert.Equal(t, compiler.OverrideStrict, opts.Policy.Overrides)
	assert.Equal(t, compiler.LastWins, opts.Policy.Duplicates)
	assert.True(t, opts.Policy.IncludeUnexported)
}

func TestLoadYamlExtension(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "esgraph.yaml", "output:\n  prefix: X\n")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "X", cfg.Output.Prefix)
	assert.True(t, InProject(dir))
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "esgraph.yml", "output:\n  prefix: Q\n")
	t.Setenv("ESGRAPH_OUTPUT_PREFIX", "Doc")
	t.Setenv("ESGRAPH_POLICY_DUPLICATES", "last")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "Doc", cfg.Output.Prefix)
	assert.Equal(t, "last", cfg.Policy.Duplicates)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"format", "source:\n  format: java\n"},
		{"prefix", "output:\n  prefix: \"1x\"\n"},
		{"package", "output:\n  package: my-pkg\n"},
		{"overrides", "policy:\n  overrides: lenient\n"},
		{"duplicates", "policy:\n  duplicates: random\n"},
		{"yaml", "source: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "esgraph.yml", tt.content)
			_, err := LoadFrom(dir)
			assert.Error(t, err)
		})
	}
}

func TestWriteAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Source.Format = FormatHCL
	cfg.Source.Dir = "schema"
	cfg.Output.Package = "esmeta"
	cfg.Policy.Overrides = "strict"

	require.NoError(t, Write(filepath.Join(dir, FileName), cfg))

	loaded, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, FormatHCL, loaded.Source.Format)
	assert.Equal(t, filepath.Join(dir, "schema"), loaded.Source.Dir)
	assert.Equal(t, "esmeta", loaded.Output.Package)
	assert.Equal(t, "strict", loaded.Policy.Overrides)

	cfg.Source.Format = "java"
	assert.Error(t, Write(filepath.Join(dir, "bad.yml"), cfg))
}

func TestGetProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, FileName, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(oldWd)

	found, err := GetProjectRoot()
	require.NoError(t, err)

	// macOS temp dirs are reached through a symlink
	expected, _ := filepath.EvalSymlinks(root)
	actual, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, expected, actual)
}

func TestInProject(t *testing.T) {
	assert.False(t, InProject(t.TempDir()))
}
