// Package corpus loads annotated documents from JSON files.
//
// A corpus file may hold a JSON array of documents, a single document, a JSON export
// artifact (its "documents" are used), or JSON Lines with one of those per line.
package corpus

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/gomlx/go-annotations/document"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Load memory-maps the file at path and decodes its documents.
func Load(path string) ([]document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open corpus %q", path)
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat corpus %q", path)
	}
	if info.Size() == 0 {
		return nil, errors.Errorf("corpus %q is empty", path)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to mmap corpus %q", path)
	}
	defer func() { _ = data.Unmap() }()

	docs, err := Decode(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "corpus %q", path)
	}
	klog.V(1).Infof("corpus: loaded %d documents from %s (%d bytes)", len(docs), path, len(data))
	return docs, nil
}

// Decode parses documents from JSON data; see the package documentation for the
// accepted layouts. The result never references data.
func Decode(data []byte) ([]document.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("no documents: input is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var docs []document.Document
	for value := 0; ; value++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "failed to parse JSON value #%d", value)
		}
		decoded, err := decodeValue(raw)
		if err != nil {
			return nil, errors.WithMessagef(err, "JSON value #%d", value)
		}
		docs = append(docs, decoded...)
	}
	return docs, nil
}

// decodeValue decodes one top-level JSON value: an array of documents, an export
// artifact or a single document.
func decodeValue(raw json.RawMessage) ([]document.Document, error) {
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '[':
		var docs []document.Document
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, errors.Wrap(err, "failed to decode document array")
		}
		return docs, nil
	case '{':
		var probe struct {
			Documents json.RawMessage `json:"documents"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, errors.Wrap(err, "failed to decode object")
		}
		if probe.Documents != nil {
			return decodeValue(probe.Documents)
		}
		var doc document.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode document")
		}
		return []document.Document{doc}, nil
	}
	return nil, errors.Errorf("expected a document object or array, got %.20s", raw)
}
