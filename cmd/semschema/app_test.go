package main

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/semschema/config"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaDoc = `@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

ex:Person a owl:Class ;
    rdfs:label "Person" .
ex:name a owl:DatatypeProperty ;
    rdfs:domain ex:Person ;
    rdfs:range xsd:string .
`

const inconsistentDoc = `@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .

ex:Dog owl:disjointWith ex:Cat .
ex:rex a ex:Dog .
ex:rex a ex:Cat .
`

// workspace writes a schema and an empty config file and returns their
// paths.
func workspace(t *testing.T, doc string) (dir, schemaPath, configPath string) {
	t.Helper()
	dir = t.TempDir()
	schemaPath = filepath.Join(dir, "schema.ttl")
	require.NoError(t, os.WriteFile(schemaPath, []byte(doc), 0644))
	configPath = filepath.Join(dir, "semschema.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output:\n  dir: "+filepath.Join(dir, "gen")+"\n"), 0644))
	return dir, schemaPath, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func findFiles(t *testing.T, root string) []string {
	t.Helper()
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, d.Name())
		}
		return nil
	})
	require.NoError(t, err)
	return names
}

func TestGenerateCommand(t *testing.T) {
	dir, schemaPath, configPath := workspace(t, schemaDoc)
	out := filepath.Join(dir, "model")

	stdout, err := execute(t, "generate",
		"--config", configPath,
		"--out", out,
		"--namespace", "example.com/app/model",
		"--mapping", "flat",
		schemaPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Generated 1 classes (2 files)")
	assert.Contains(t, stdout, "Package base: example.com/app/model")
	assert.ElementsMatch(t, []string{"person.go", "person_support.go"}, findFiles(t, out))
}

func TestGenerateUsesConfiguredSchemas(t *testing.T) {
	dir, schemaPath, _ := workspace(t, schemaDoc)
	configPath := filepath.Join(dir, "custom.yaml")
	out := filepath.Join(dir, "gen")
	cfg := config.DefaultConfig()
	cfg.Schemas = []config.SchemaSource{{Path: filepath.Join(dir, "*.ttl")}}
	cfg.Output.Dir = out
	cfg.Codegen.BaseNamespace = "example.com/gen"
	cfg.Codegen.Mapping = "flat"
	require.NoError(t, cfg.SaveToFile(configPath))

	_, err := execute(t, "generate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, findFiles(t, out), "person.go")
	assert.FileExists(t, schemaPath)
}

func TestGenerateWithoutSchemas(t *testing.T) {
	_, _, configPath := workspace(t, schemaDoc)

	_, err := execute(t, "generate", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema sources")
}

func TestGenerateRejectsInvalidFlags(t *testing.T) {
	_, schemaPath, configPath := workspace(t, schemaDoc)

	_, err := execute(t, "generate", "--config", configPath, "--mapping", "sideways", schemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidateCommand(t *testing.T) {
	_, schemaPath, configPath := workspace(t, schemaDoc)

	stdout, err := execute(t, "validate", "--config", configPath, schemaPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"valid": true`)
}

func TestValidateCommandInconsistent(t *testing.T) {
	_, schemaPath, configPath := workspace(t, inconsistentDoc)

	stdout, err := execute(t, "validate", "--config", configPath, schemaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inconsistent")
	assert.Contains(t, stdout, `"valid": false`)

	// the check can be skipped
	_, err = execute(t, "validate", "--config", configPath, "--no-reasoner", schemaPath)
	assert.NoError(t, err)
}

func TestClosureCommand(t *testing.T) {
	dir, schemaPath, configPath := workspace(t, schemaDoc)

	stdout, err := execute(t, "closure", "--config", configPath, "--format", "ntriples", schemaPath)
	require.NoError(t, err)
	assert.Contains(t, stdout,
		"<http://example.org/onto#Person> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://www.w3.org/2002/07/owl#Thing>")

	outFile := filepath.Join(dir, "closure.ttl")
	_, err = execute(t, "closure", "--config", configPath, "--out", outFile, schemaPath)
	require.NoError(t, err)
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .")
}

func TestClosureCommandUnknownFormat(t *testing.T) {
	_, schemaPath, configPath := workspace(t, schemaDoc)

	_, err := execute(t, "closure", "--config", configPath, "--format", "csv", schemaPath)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "semschema version "+Version))
}

func TestSourcesFromArgs(t *testing.T) {
	sources := sourcesFromArgs([]string{"onto/*.ttl", "https://example.org/v.owl"}, "http://example.org/", "turtle")

	require.Len(t, sources, 2)
	assert.Equal(t, config.SchemaSource{Path: "onto/*.ttl", Base: "http://example.org/", Format: "turtle"}, sources[0])
	assert.Equal(t, "https://example.org/v.owl", sources[1].URL)
	assert.Empty(t, sources[1].Path)
}

func TestWatchDirs(t *testing.T) {
	dirs := watchDirs([]config.SchemaSource{
		{Path: "/schemas/core/a.ttl"},
		{Path: "/schemas/core/b.ttl"},
		{Path: "/schemas/ext/**/*.ttl"},
		{URL: "https://example.org/v.owl"},
	})

	assert.Equal(t, []string{filepath.FromSlash("/schemas/core"), filepath.FromSlash("/schemas/ext")}, dirs)
}

func TestSchemaWatcherFlush(t *testing.T) {
	dir := t.TempDir()
	w, err := NewSchemaWatcher([]config.SchemaSource{{Path: filepath.Join(dir, "*.ttl")}}, 0, nil)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "schema.ttl")
	require.NoError(t, os.WriteFile(path, []byte(schemaDoc), 0644))

	w.handleFSEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	w.handleFSEvent(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write})
	assert.Equal(t, []string{path}, w.flushPending())

	// unchanged content is not reported again
	w.handleFSEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.Empty(t, w.flushPending())

	w.handleFSEvent(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	assert.Equal(t, []string{path}, w.flushPending())
}
