// Package document defines the annotated-document model consumed by the exporters.
//
// All Start/End offsets are character (rune) offsets into Document.Text, describing
// half-open intervals [Start, End). Tokenizers in this module produce byte spans, and
// tokenizers.Tokenize converts them into this unit.
//
// Exporters treat a Document as read-only: nothing in this module mutates the
// documents it is given.
package document

import (
	"time"
	"unicode/utf8"
)

// Token is one pre-computed token of a document.
//
// Tokens of a document are expected to be ordered by Start, non-overlapping and to
// cover the text contiguously (modulo whitespace).
type Token struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Whitespace string `json:"whitespace,omitempty"`
	POS        string `json:"pos,omitempty"`
	Lemma      string `json:"lemma,omitempty"`
}

// Annotator identifies who created an annotation.
type Annotator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Relation directions.
const (
	DirectionOutgoing      = "outgoing"
	DirectionIncoming      = "incoming"
	DirectionBidirectional = "bidirectional"
)

// Relation links an annotation to another annotation (Target is its ID).
type Relation struct {
	Type      string `json:"type"`
	Target    string `json:"target"`
	Direction string `json:"direction,omitempty"`
}

// Change records one field change in a HistoryEntry.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// HistoryEntry is one step in the edit history of an annotation.
// Action is one of "created", "updated" or "deleted".
type HistoryEntry struct {
	Action    string            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	User      string            `json:"user"`
	Changes   map[string]Change `json:"changes,omitempty"`
}

// Annotation is a labeled character span.
//
// Invariant: Start < End. Confidence, when set, is expected in [0, 1].
type Annotation struct {
	ID         string         `json:"id"`
	Start      int            `json:"start"`
	End        int            `json:"end"`
	Text       string         `json:"text"`
	Label      string         `json:"label"`
	Confidence *float64       `json:"confidence,omitempty"`
	Annotator  *Annotator     `json:"annotator,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty"`
	Comments   []string       `json:"comments,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Relations  []Relation     `json:"relations,omitempty"`
	History    []HistoryEntry `json:"history,omitempty"`
}

// Length returns the span length End-Start.
func (a *Annotation) Length() int {
	return a.End - a.Start
}

// HasConfidence reports whether the annotation carries a confidence value.
func (a *Annotation) HasConfidence() bool {
	return a.Confidence != nil
}

// AnnotatorName returns the annotator's name, or "" if there is no annotator.
func (a *Annotation) AnnotatorName() string {
	if a.Annotator == nil {
		return ""
	}
	return a.Annotator.Name
}

// LabelDef describes one label of a tag set.
type LabelDef struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	Hotkey      string `json:"hotkey,omitempty"`
}

// RelationDef describes one relation type of a tag set.
type RelationDef struct {
	Name         string   `json:"name"`
	SourceLabels []string `json:"source_labels"`
	TargetLabels []string `json:"target_labels"`
	Symmetric    bool     `json:"symmetric"`
}

// LabelSchema is the tag set a document was annotated with.
type LabelSchema struct {
	Labels    []LabelDef    `json:"labels"`
	Relations []RelationDef `json:"relations,omitempty"`
}

// Document is a text together with its tokens and annotations.
type Document struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Text        string         `json:"text"`
	Language    string         `json:"language,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Tokens      []Token        `json:"tokens,omitempty"`
	Annotations []Annotation   `json:"annotations"`
	Schema      *LabelSchema   `json:"schema,omitempty"`
}

// TextLength returns the length of the text in characters (runes).
func (d *Document) TextLength() int {
	return utf8.RuneCountInString(d.Text)
}

// AnnotationDensity returns annotations per character, or 0 for an empty text.
func (d *Document) AnnotationDensity() float64 {
	n := d.TextLength()
	if n == 0 {
		return 0
	}
	return float64(len(d.Annotations)) / float64(n)
}

// UniqueLabels returns the distinct labels of the document's annotations, in
// first-seen order.
func (d *Document) UniqueLabels() []string {
	seen := make(map[string]bool, len(d.Annotations))
	var labels []string
	for _, ann := range d.Annotations {
		if !seen[ann.Label] {
			seen[ann.Label] = true
			labels = append(labels, ann.Label)
		}
	}
	return labels
}

// Float returns a pointer to v. Handy for literal confidences.
func Float(v float64) *float64 {
	return &v
}

// Time returns a pointer to t.
func Time(t time.Time) *time.Time {
	return &t
}
