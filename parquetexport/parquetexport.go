// Package parquetexport writes the flattened annotation table as a Parquet file, for
// analysis in dataframe and columnar-query tools, and validates such files.
package parquetexport

import (
	"bytes"
	"io"

	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/tabular"
	"github.com/gomlx/go-annotations/validation"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Row is the Parquet schema of one annotation. Timestamps are RFC 3339 strings, ""
// when absent.
type Row struct {
	DocumentID     string   `parquet:"document_id"`
	DocumentTitle  string   `parquet:"document_title"`
	AnnotationID   string   `parquet:"annotation_id"`
	Text           string   `parquet:"text"`
	Label          string   `parquet:"label,dict"`
	StartPosition  int64    `parquet:"start_position"`
	EndPosition    int64    `parquet:"end_position"`
	Length         int64    `parquet:"length"`
	Confidence     *float64 `parquet:"confidence,optional"`
	AnnotatorName  string   `parquet:"annotator_name,dict"`
	AnnotatorEmail string   `parquet:"annotator_email"`
	CreatedAt      string   `parquet:"created_at"`
	UpdatedAt      string   `parquet:"updated_at"`
	CommentCount   int64    `parquet:"comment_count"`
	HasRelations   bool     `parquet:"has_relations"`
	RelationCount  int64    `parquet:"relation_count"`
}

// NewRow converts a flat annotation record.
func NewRow(r *tabular.AnnotationRecord) Row {
	return Row{
		DocumentID:     r.DocumentID,
		DocumentTitle:  r.DocumentTitle,
		AnnotationID:   r.AnnotationID,
		Text:           r.Text,
		Label:          r.Label,
		StartPosition:  int64(r.StartPosition),
		EndPosition:    int64(r.EndPosition),
		Length:         int64(r.Length),
		Confidence:     r.Confidence,
		AnnotatorName:  r.AnnotatorName,
		AnnotatorEmail: r.AnnotatorEmail,
		CreatedAt:      tabular.Timestamp(r.CreatedAt),
		UpdatedAt:      tabular.OptionalTimestamp(r.UpdatedAt),
		CommentCount:   int64(r.CommentCount),
		HasRelations:   r.HasRelations,
		RelationCount:  int64(r.RelationCount),
	}
}

// Write writes records to w as one Parquet file.
func Write(w io.Writer, records []tabular.AnnotationRecord) error {
	rows := make([]Row, len(records))
	for i := range records {
		rows[i] = NewRow(&records[i])
	}
	if err := parquet.Write(w, rows); err != nil {
		return errors.Wrapf(err, "parquetexport: failed to write %d rows", len(rows))
	}
	return nil
}

// Export flattens the annotations of docs and returns them as a Parquet file.
func Export(docs []document.Document) ([]byte, error) {
	var buf bytes.Buffer
	records := tabular.Annotations(docs)
	if err := Write(&buf, records); err != nil {
		return nil, err
	}
	klog.V(1).Infof("parquetexport: exported %d annotations from %d documents (%d bytes)",
		len(records), len(docs), buf.Len())
	return buf.Bytes(), nil
}

// Read returns all rows of a Parquet file written by Write.
func Read(r io.ReaderAt, size int64) ([]Row, error) {
	rows, err := parquet.Read[Row](r, size)
	if err != nil {
		return nil, errors.Wrap(err, "parquetexport: failed to read rows")
	}
	return rows, nil
}

// Validate reads a Parquet artifact and checks every row. An unreadable file, a
// missing annotation_id or label, and an empty span are errors; an out-of-range
// confidence and a file without rows are warnings.
func Validate(r io.ReaderAt, size int64) validation.Report {
	var c validation.Collector
	rows, err := Read(r, size)
	if err != nil {
		c.Errorf("Invalid Parquet file: %v", err)
		return c.Report()
	}
	if len(rows) == 0 {
		c.Warnf("Parquet file contains no rows")
	}
	for i, row := range rows {
		if row.AnnotationID == "" || row.Label == "" {
			c.Errorf("Row %d: Missing annotation_id or label", i)
		}
		if row.StartPosition >= row.EndPosition {
			c.Errorf("Row %d: Invalid span (start_position >= end_position)", i)
		}
		if row.Confidence != nil && (*row.Confidence < 0 || *row.Confidence > 1) {
			c.Warnf("Row %d: Confidence should be between 0 and 1", i)
		}
	}
	return c.Report()
}

// ValidateBytes is Validate for an in-memory file.
func ValidateBytes(data []byte) validation.Report {
	return Validate(bytes.NewReader(data), int64(len(data)))
}
