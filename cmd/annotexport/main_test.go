package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/go-annotations/artifact"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpusJSON = `[
  {"id": "d1", "title": "Platelets", "text": "Aspirin inhibits COX-1.",
   "annotations": [
     {"id": "a1", "start": 0, "end": 7, "text": "Aspirin", "label": "CHEMICAL", "confidence": 0.9,
      "annotator": {"id": "u1", "name": "Alice"}},
     {"id": "a2", "start": 17, "end": 22, "text": "COX-1", "label": "GENE"}
   ]}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the command line and returns its standard output and error.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestExportToStdout(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "corpus.json", corpusJSON)
	out, _, err := run(t, "export", "--format", "conll", corpusPath)
	require.NoError(t, err)
	assert.Contains(t, out, "# doc_id = d1\n")
	assert.Contains(t, out, "1\tAspirin\tB-CHEMICAL\n")
	assert.Contains(t, out, "3\tCOX\tB-GENE\n")

	_, _, err = run(t, "export", corpusPath)
	assert.Error(t, err, "a format is required")

	artifactPath := writeFile(t, dir, "train.conll", out)
	out, _, err = run(t, "validate", artifactPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "1 documents, 6 tokens, tagged tokens: CHEMICAL=1 GENE=3")
}

func TestExportToFileAndValidate(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "corpus.json", corpusJSON)
	outPath := filepath.Join(dir, "out", "train.json")

	_, stderr, err := run(t, "export", "-f", "json", "--validate", "-o", outPath, corpusPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "is valid")

	var exported map[string]any
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Contains(t, exported, "export_info")

	_, _, err = run(t, "export", "-f", "json", "-o", outPath, corpusPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifact.ErrExists))
	_, _, err = run(t, "export", "-f", "json", "-o", outPath, "--force", corpusPath)
	require.NoError(t, err)

	out, _, err := run(t, "validate", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	broken := writeFile(t, dir, "broken.json", `{"documents": []}`)
	out, _, err = run(t, "validate", broken)
	assert.True(t, errors.Is(err, errInvalidArtifact))
	assert.Contains(t, out, "Missing export_info")
}

func TestExportWithProfile(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "corpus.json", corpusJSON)
	profile := writeFile(t, dir, "profile.yaml", "format: csv\nvalidate: true\ncsv:\n  separator: \";\"\n")
	outPath := filepath.Join(dir, "train.csv")

	_, stderr, err := run(t, "export", "--profile", profile, "-o", outPath, corpusPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "is valid")
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "d1;Platelets;a1;Aspirin;CHEMICAL;0;7;7;0.9")

	// The profile supplies the separator when validating.
	out, _, err := run(t, "validate", "--profile", profile, outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	// Parquet artifacts are validated from disk too.
	parquetPath := filepath.Join(dir, "train.parquet")
	_, _, err = run(t, "export", "--profile", profile, "--format", "parquet", "--validate", "-o", parquetPath, corpusPath)
	require.NoError(t, err)
	out, _, err = run(t, "validate", "--format", "parquet", parquetPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeFile(t, dir, "corpus.json", corpusJSON)

	out, _, err := run(t, "stats", "--json", corpusPath)
	require.NoError(t, err)
	var s corpusStatistics
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 1, s.Global.TotalDocuments)
	assert.Equal(t, 2, s.Global.TotalAnnotations)
	assert.Equal(t, 6, s.Tokens.TotalTokens)
	require.Len(t, s.Labels, 2)
	assert.Equal(t, "CHEMICAL", s.Labels[0].Label)

	out, _, err = run(t, "stats", corpusPath)
	require.NoError(t, err)
	assert.Contains(t, out, "CHEMICAL")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Annotators")

	_, _, err = run(t, "stats", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
