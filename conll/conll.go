// Package conll exports annotated documents as CoNLL-style token-per-line text and
// validates such artifacts.
//
// A document renders as:
//
//	# doc_id = <id>
//	# doc_title = <title>
//
//	1<sep>token<sep>[pos<sep>][lemma<sep>]tag[<sep>confidence]
//	...
//
// Documents are separated by one blank line. Optional columns are uniform across the
// artifact: once enabled, a token or tag without the value gets the "_" placeholder.
package conll

import (
	"strconv"
	"strings"

	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/tagging"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Placeholder is written in enabled optional columns that have no value.
const Placeholder = "_"

// Options configures an Exporter.
type Options struct {
	IncludePOS        bool
	IncludeLemma      bool
	IncludeConfidence bool

	// Encoding is the tagging scheme, BIO by default.
	Encoding tagging.Scheme

	// Separator between columns, a tab by default.
	Separator string

	OnDroppedAnnotation tagging.DropPolicy
	OnOverlap           tagging.OverlapPolicy
}

// DefaultOptions returns the default CoNLL options: tag column only, BIO, tab
// separated, dropped annotations ignored and last writer wins on overlaps.
func DefaultOptions() Options {
	return Options{
		Encoding:            tagging.BIO,
		Separator:           "\t",
		OnDroppedAnnotation: tagging.DropIgnore,
		OnOverlap:           tagging.OverlapLastWins,
	}
}

// Exporter renders and validates CoNLL artifacts. Its options are fixed at
// construction, so it is safe for concurrent use.
type Exporter struct {
	options Options
}

// New returns an Exporter. Empty Encoding and Separator take their defaults.
func New(options Options) *Exporter {
	if options.Encoding == "" {
		options.Encoding = tagging.BIO
	}
	if options.Separator == "" {
		options.Separator = "\t"
	}
	return &Exporter{options: options}
}

// Options returns the exporter's options.
func (e *Exporter) Options() Options {
	return e.options
}

// Encode returns the token tags of doc under the exporter's scheme and policies.
func (e *Exporter) Encode(doc *document.Document) (*tagging.Result, error) {
	return tagging.Encode(doc, tagging.Options{
		Scheme:              e.options.Encoding,
		OnDroppedAnnotation: e.options.OnDroppedAnnotation,
		OnOverlap:           e.options.OnOverlap,
	})
}

// ExportDocument renders one document.
func (e *Exporter) ExportDocument(doc *document.Document) (string, error) {
	var sb strings.Builder
	if err := e.writeDocument(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ExportDocuments renders documents one after the other, separated by a blank line.
func (e *Exporter) ExportDocuments(docs []document.Document) (string, error) {
	var sb strings.Builder
	for i := range docs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if err := e.writeDocument(&sb, &docs[i]); err != nil {
			return "", err
		}
	}
	klog.V(1).Infof("conll: exported %d documents (%s)", len(docs), e.options.Encoding)
	return sb.String(), nil
}

func (e *Exporter) writeDocument(sb *strings.Builder, doc *document.Document) error {
	res, err := e.Encode(doc)
	if err != nil {
		return errors.WithMessage(err, "conll export")
	}

	sb.WriteString("# doc_id = ")
	sb.WriteString(doc.ID)
	sb.WriteString("\n# doc_title = ")
	sb.WriteString(doc.Title)
	sb.WriteString("\n\n")

	sep := e.options.Separator
	columns := make([]string, 0, 6)
	for i, tok := range doc.Tokens {
		tag := res.Tags[i]
		columns = append(columns[:0], strconv.Itoa(i+1), tok.Text)
		if e.options.IncludePOS {
			columns = append(columns, orPlaceholder(tok.POS))
		}
		if e.options.IncludeLemma {
			columns = append(columns, orPlaceholder(tok.Lemma))
		}
		columns = append(columns, tag.Tag)
		if e.options.IncludeConfidence {
			if tag.Confidence != nil {
				columns = append(columns, strconv.FormatFloat(*tag.Confidence, 'f', 3, 64))
			} else {
				columns = append(columns, Placeholder)
			}
		}
		sb.WriteString(strings.Join(columns, sep))
		sb.WriteByte('\n')
	}
	return nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
