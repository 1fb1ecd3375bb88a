// Package jsonexport exports annotated documents as a single JSON document with
// export metadata, optional statistics and an optional JSON-Schema description, and
// validates such artifacts.
package jsonexport

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gomlx/go-annotations/document"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"k8s.io/klog/v2"
)

// Format and Version are written to export_info.
const (
	Format  = "json"
	Version = "1.0.0"
)

// Options configures an Exporter. They are echoed in export_info.export_options.
type Options struct {
	IncludeMetadata          bool `json:"include_metadata"`
	IncludeComments          bool `json:"include_comments"`
	IncludeAnnotationHistory bool `json:"include_annotation_history"`
	IncludeStatistics        bool `json:"include_statistics"`
	PrettyFormat             bool `json:"pretty_format"`
	IncludeSchema            bool `json:"include_schema"`

	// CreatedBy, if set, is written to export_info.created_by.
	CreatedBy string `json:"-"`
}

// DefaultOptions includes metadata, comments and statistics, pretty-printed; history
// and schema are left out.
func DefaultOptions() Options {
	return Options{
		IncludeMetadata:   true,
		IncludeComments:   true,
		IncludeStatistics: true,
		PrettyFormat:      true,
	}
}

// ExportInfo is the export_info section.
type ExportInfo struct {
	Format           string  `json:"format"`
	Version          string  `json:"version"`
	CreatedAt        string  `json:"created_at"`
	CreatedBy        string  `json:"created_by,omitempty"`
	ExportID         string  `json:"export_id"`
	TotalDocuments   int     `json:"total_documents"`
	TotalAnnotations int     `json:"total_annotations"`
	ExportOptions    Options `json:"export_options"`
}

// Document is one exported document, filtered by the export options.
type Document struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Text        string                `json:"text"`
	Language    string                `json:"language,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   *time.Time            `json:"updated_at,omitempty"`
	Metadata    map[string]any        `json:"metadata,omitempty"`
	Annotations []document.Annotation `json:"annotations"`
	Statistics  *DocumentStatistics   `json:"statistics,omitempty"`
	Schema      *document.LabelSchema `json:"schema,omitempty"`
}

// Export is the top-level JSON artifact.
type Export struct {
	ExportInfo       ExportInfo        `json:"export_info"`
	Documents        []Document        `json:"documents"`
	GlobalStatistics *GlobalStatistics `json:"global_statistics,omitempty"`
	Schema           map[string]any    `json:"schema,omitempty"`
}

// Exporter renders and validates JSON artifacts. Its options are fixed at
// construction, so it is safe for concurrent use.
type Exporter struct {
	options Options
	now     func() time.Time
	newID   func() string
}

// New returns an Exporter with the given options.
func New(options Options) *Exporter {
	return &Exporter{
		options: options,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Options returns the exporter's options.
func (e *Exporter) Options() Options {
	return e.options
}

// Build assembles the export structure without serializing it.
func (e *Exporter) Build(docs []document.Document) *Export {
	result := &Export{
		ExportInfo: ExportInfo{
			Format:         Format,
			Version:        Version,
			CreatedAt:      e.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			CreatedBy:      e.options.CreatedBy,
			ExportID:       e.newID(),
			TotalDocuments: len(docs),
			ExportOptions:  e.options,
		},
		Documents: make([]Document, len(docs)),
	}
	for i := range docs {
		result.ExportInfo.TotalAnnotations += len(docs[i].Annotations)
		result.Documents[i] = e.processDocument(&docs[i])
	}
	if e.options.IncludeStatistics {
		stats := GenerateGlobalStatistics(docs)
		result.GlobalStatistics = &stats
	}
	if e.options.IncludeSchema {
		result.Schema = Schema()
	}
	return result
}

// ExportDocuments renders docs as one JSON artifact.
func (e *Exporter) ExportDocuments(docs []document.Document) (string, error) {
	out, err := e.marshal(e.Build(docs))
	if err != nil {
		return "", err
	}
	klog.V(1).Infof("jsonexport: exported %d documents (%d bytes)", len(docs), len(out))
	return out, nil
}

// ExportDocument renders a single processed document, without export_info.
func (e *Exporter) ExportDocument(doc *document.Document) (string, error) {
	return e.marshal(e.processDocument(doc))
}

func (e *Exporter) marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if e.options.PrettyFormat {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "jsonexport: failed to encode export")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (e *Exporter) processDocument(doc *document.Document) Document {
	out := Document{
		ID:          doc.ID,
		Title:       doc.Title,
		Text:        doc.Text,
		Language:    CanonicalLanguage(doc.Language),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		Annotations: make([]document.Annotation, len(doc.Annotations)),
		Schema:      doc.Schema,
	}
	if e.options.IncludeMetadata && len(doc.Metadata) > 0 {
		out.Metadata = doc.Metadata
	}
	if e.options.IncludeStatistics {
		stats := GenerateDocumentStatistics(doc)
		out.Statistics = &stats
	}
	for i, ann := range doc.Annotations {
		if !e.options.IncludeComments {
			ann.Comments = nil
		}
		if !e.options.IncludeAnnotationHistory {
			ann.History = nil
		}
		if _, ok := finiteConfidence(&ann); !ok {
			ann.Confidence = nil
		}
		out.Annotations[i] = ann
	}
	return out
}

// CanonicalLanguage returns the canonical BCP 47 form of tag ("en-us" becomes
// "en-US"). Tags that do not parse are returned unchanged.
func CanonicalLanguage(tag string) string {
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	return parsed.String()
}
