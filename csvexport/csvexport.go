// Package csvexport renders annotation records, document summaries and aggregate
// statistics as delimiter-separated tables for spreadsheet analysis.
package csvexport

import (
	"strconv"
	"strings"

	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/tabular"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Encoding of the bytes returned by EncodeOutput.
type Encoding string

const (
	UTF8  Encoding = "utf-8"
	UTF16 Encoding = "utf-16"
	ASCII Encoding = "ascii"
)

// ParseEncoding maps a (case-insensitive) encoding name to an Encoding. Empty means
// UTF8.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "utf-16", "utf16":
		return UTF16, nil
	case "ascii", "us-ascii":
		return ASCII, nil
	}
	return "", errors.Errorf("csvexport: unknown encoding %q, valid values are utf-8, utf-16 and ascii", name)
}

// Options configures an Exporter.
type Options struct {
	IncludeHeaders bool
	Separator      rune
	Encoding       Encoding
}

// DefaultOptions writes headers, separates with commas and encodes as UTF-8.
func DefaultOptions() Options {
	return Options{IncludeHeaders: true, Separator: ',', Encoding: UTF8}
}

// Column orders of the four tables.
var (
	AnnotationColumns = []string{
		"document_id", "document_title", "annotation_id", "text", "label",
		"start_position", "end_position", "length", "confidence",
		"annotator_name", "annotator_email", "created_at", "updated_at",
		"comment_count", "has_relations", "relation_count",
	}
	DocumentColumns = []string{
		"document_id", "title", "text_length", "annotation_count", "unique_labels",
		"annotation_density", "created_at", "updated_at", "language",
	}
	LabelStatisticsColumns = []string{
		"label", "total_count", "document_count", "average_confidence",
		"average_length", "frequency_percentage",
	}
	AnnotatorStatisticsColumns = []string{
		"annotator_name", "annotator_email", "annotation_count", "document_count",
		"average_confidence", "unique_labels", "productivity_score",
	}
)

// Exporter renders CSV tables. Its options are fixed at construction, so it is safe
// for concurrent use.
type Exporter struct {
	options Options
}

// New returns an Exporter. A zero Separator means ',' and an empty Encoding UTF8.
func New(options Options) *Exporter {
	if options.Separator == 0 {
		options.Separator = ','
	}
	if options.Encoding == "" {
		options.Encoding = UTF8
	}
	return &Exporter{options: options}
}

// Options returns the exporter's options, with defaults filled in.
func (e *Exporter) Options() Options {
	return e.options
}

// Escape quotes field if it contains the separator, a double quote or a line break,
// or if it starts with "#" (which would read as a section banner). Embedded double
// quotes are doubled.
func (e *Exporter) Escape(field string) string {
	if !strings.ContainsRune(field, e.options.Separator) && !strings.ContainsAny(field, "\"\n\r") &&
		!strings.HasPrefix(field, "#") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func (e *Exporter) table(headers []string, rows [][]string) string {
	sep := string(e.options.Separator)
	lines := make([]string, 0, len(rows)+1)
	if e.options.IncludeHeaders {
		lines = append(lines, e.joinRow(headers, sep))
	}
	for _, row := range rows {
		lines = append(lines, e.joinRow(row, sep))
	}
	return strings.Join(lines, "\n")
}

func (e *Exporter) joinRow(fields []string, sep string) string {
	escaped := make([]string, len(fields))
	for i, field := range fields {
		escaped[i] = e.Escape(field)
	}
	return strings.Join(escaped, sep)
}

// ExportAnnotations renders one row per annotation record.
func (e *Exporter) ExportAnnotations(records []tabular.AnnotationRecord) string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.DocumentID,
			r.DocumentTitle,
			r.AnnotationID,
			r.Text,
			r.Label,
			strconv.Itoa(r.StartPosition),
			strconv.Itoa(r.EndPosition),
			strconv.Itoa(r.Length),
			formatOptional(r.Confidence, -1),
			r.AnnotatorName,
			r.AnnotatorEmail,
			tabular.Timestamp(r.CreatedAt),
			tabular.OptionalTimestamp(r.UpdatedAt),
			strconv.Itoa(r.CommentCount),
			strconv.FormatBool(r.HasRelations),
			strconv.Itoa(r.RelationCount),
		}
	}
	return e.table(AnnotationColumns, rows)
}

// ExportDocuments renders one row per document record.
func (e *Exporter) ExportDocuments(records []tabular.DocumentRecord) string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.DocumentID,
			r.Title,
			strconv.Itoa(r.TextLength),
			strconv.Itoa(r.AnnotationCount),
			strconv.Itoa(r.UniqueLabels),
			strconv.FormatFloat(r.AnnotationDensity, 'f', 6, 64),
			tabular.Timestamp(r.CreatedAt),
			tabular.OptionalTimestamp(r.UpdatedAt),
			r.Language,
		}
	}
	return e.table(DocumentColumns, rows)
}

// ExportLabelStatistics renders label statistics.
func (e *Exporter) ExportLabelStatistics(stats []LabelStatistics) string {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			s.Label,
			strconv.Itoa(s.TotalCount),
			strconv.Itoa(s.DocumentCount),
			formatOptional(s.AverageConfidence, 3),
			strconv.FormatFloat(s.AverageLength, 'f', 2, 64),
			strconv.FormatFloat(s.FrequencyPercentage, 'f', 2, 64),
		}
	}
	return e.table(LabelStatisticsColumns, rows)
}

// ExportAnnotatorStatistics renders annotator statistics.
func (e *Exporter) ExportAnnotatorStatistics(stats []AnnotatorStatistics) string {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			s.AnnotatorName,
			s.AnnotatorEmail,
			strconv.Itoa(s.AnnotationCount),
			strconv.Itoa(s.DocumentCount),
			formatOptional(s.AverageConfidence, 3),
			strconv.Itoa(s.UniqueLabels),
			strconv.FormatFloat(s.ProductivityScore, 'f', 3, 64),
		}
	}
	return e.table(AnnotatorStatisticsColumns, rows)
}

// formatOptional formats v with the given precision (-1 for the shortest exact
// form), or returns "" for nil.
func formatOptional(v *float64, precision int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}

// Dataset bundles the four tables of a combined export.
type Dataset struct {
	Annotations         []tabular.AnnotationRecord
	Documents           []tabular.DocumentRecord
	LabelStatistics     []LabelStatistics
	AnnotatorStatistics []AnnotatorStatistics
}

// NewDataset flattens docs and computes both statistics tables.
func NewDataset(docs []document.Document) Dataset {
	annotations := tabular.Annotations(docs)
	return Dataset{
		Annotations:         annotations,
		Documents:           tabular.Documents(docs),
		LabelStatistics:     GenerateLabelStatistics(annotations),
		AnnotatorStatistics: GenerateAnnotatorStatistics(annotations),
	}
}

// Section banners of ExportDataset.
const (
	AnnotationsBanner         = "# ANNOTATIONS"
	DocumentsBanner           = "# DOCUMENTS"
	LabelStatisticsBanner     = "# LABEL_STATISTICS"
	AnnotatorStatisticsBanner = "# ANNOTATOR_STATISTICS"
)

// ExportDataset renders the four tables, each after its banner line, with a blank
// line between sections.
func (e *Exporter) ExportDataset(data Dataset) string {
	sections := []string{
		AnnotationsBanner, e.ExportAnnotations(data.Annotations), "",
		DocumentsBanner, e.ExportDocuments(data.Documents), "",
		LabelStatisticsBanner, e.ExportLabelStatistics(data.LabelStatistics), "",
		AnnotatorStatisticsBanner, e.ExportAnnotatorStatistics(data.AnnotatorStatistics),
	}
	out := strings.Join(sections, "\n")
	klog.V(1).Infof("csvexport: exported dataset with %d annotations and %d documents",
		len(data.Annotations), len(data.Documents))
	return out
}
