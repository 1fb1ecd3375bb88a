// Package tabular flattens documents and annotations into the row records shared by
// the tabular exporters (CSV and Parquet).
package tabular

import (
	"time"

	"github.com/gomlx/go-annotations/document"
)

// AnnotationRecord is one annotation flattened together with its document.
type AnnotationRecord struct {
	DocumentID     string
	DocumentTitle  string
	AnnotationID   string
	Text           string
	Label          string
	StartPosition  int
	EndPosition    int
	Length         int
	Confidence     *float64
	AnnotatorName  string
	AnnotatorEmail string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	CommentCount   int
	HasRelations   bool
	RelationCount  int
}

// DocumentRecord is the per-document summary row.
type DocumentRecord struct {
	DocumentID        string
	Title             string
	TextLength        int
	AnnotationCount   int
	UniqueLabels      int
	AnnotationDensity float64
	CreatedAt         time.Time
	UpdatedAt         *time.Time
	Language          string
}

// Annotations flattens the annotations of docs, in document then annotation order.
func Annotations(docs []document.Document) []AnnotationRecord {
	var records []AnnotationRecord
	for _, doc := range docs {
		for _, ann := range doc.Annotations {
			records = append(records, AnnotationRecord{
				DocumentID:     doc.ID,
				DocumentTitle:  doc.Title,
				AnnotationID:   ann.ID,
				Text:           ann.Text,
				Label:          ann.Label,
				StartPosition:  ann.Start,
				EndPosition:    ann.End,
				Length:         ann.Length(),
				Confidence:     ann.Confidence,
				AnnotatorName:  ann.AnnotatorName(),
				AnnotatorEmail: annotatorEmail(&ann),
				CreatedAt:      ann.CreatedAt,
				UpdatedAt:      ann.UpdatedAt,
				CommentCount:   len(ann.Comments),
				HasRelations:   len(ann.Relations) > 0,
				RelationCount:  len(ann.Relations),
			})
		}
	}
	return records
}

func annotatorEmail(ann *document.Annotation) string {
	if ann.Annotator == nil {
		return ""
	}
	return ann.Annotator.Email
}

// Documents summarizes each document. The annotation density of an empty text is 0.
func Documents(docs []document.Document) []DocumentRecord {
	records := make([]DocumentRecord, len(docs))
	for i := range docs {
		doc := &docs[i]
		records[i] = DocumentRecord{
			DocumentID:        doc.ID,
			Title:             doc.Title,
			TextLength:        doc.TextLength(),
			AnnotationCount:   len(doc.Annotations),
			UniqueLabels:      len(doc.UniqueLabels()),
			AnnotationDensity: doc.AnnotationDensity(),
			CreatedAt:         doc.CreatedAt,
			UpdatedAt:         doc.UpdatedAt,
			Language:          doc.Language,
		}
	}
	return records
}

// Timestamp formats t as RFC 3339 (with sub-second precision when present), or ""
// for the zero time.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// OptionalTimestamp is Timestamp for optional times.
func OptionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Timestamp(*t)
}
