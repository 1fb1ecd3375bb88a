package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/jsonexport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCorpusJSON = []byte(`[
  {
    "id": "doc-1",
    "title": "First",
    "text": "Aspirin inhibits COX-1.",
    "language": "en",
    "created_at": "2024-01-02T03:04:05Z",
    "tokens": [{"id": 0, "text": "Aspirin", "start": 0, "end": 7}],
    "annotations": [
      {"id": "a1", "start": 0, "end": 7, "text": "Aspirin", "label": "CHEMICAL", "confidence": 0.9,
       "annotator": {"id": "u1", "name": "Alice"}, "created_at": "2024-01-02T03:04:05Z"}
    ]
  },
  {"id": "doc-2", "title": "Second", "text": "Nothing here.", "annotations": []}
]`)

func TestDecodeLayouts(t *testing.T) {
	docs, err := Decode(testCorpusJSON)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	require.Len(t, docs[0].Annotations, 1)
	ann := docs[0].Annotations[0]
	assert.Equal(t, 0.9, *ann.Confidence)
	assert.Equal(t, "Alice", ann.AnnotatorName())
	assert.Len(t, docs[0].Tokens, 1)

	docs, err = Decode([]byte(`{"id": "single", "title": "t", "text": "x", "annotations": []}`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "single", docs[0].ID)

	jsonl := []byte(`{"id": "l1", "title": "a", "text": "a", "annotations": []}
{"id": "l2", "title": "b", "text": "b", "annotations": []}
[{"id": "l3", "title": "c", "text": "c", "annotations": []}]
`)
	docs, err = Decode(jsonl)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "l3", docs[2].ID)
}

func TestDecodeJSONExport(t *testing.T) {
	original, err := Decode(testCorpusJSON)
	require.NoError(t, err)
	out, err := jsonexport.New(jsonexport.DefaultOptions()).ExportDocuments(original)
	require.NoError(t, err)

	docs, err := Decode([]byte(out))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, original[0].Annotations, docs[0].Annotations)
	assert.Empty(t, docs[0].Tokens, "JSON exports carry no tokens")
}

func TestDecodeErrors(t *testing.T) {
	for _, input := range []string{"", "  \n", "42", `{"id": `, `[{"id": 1}]`} {
		_, err := Decode([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")
	require.NoError(t, os.WriteFile(path, testCorpusJSON, 0o644))
	docs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, []document.Token{{ID: 0, Text: "Aspirin", Start: 0, End: 7}}, docs[0].Tokens)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Load(empty)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
