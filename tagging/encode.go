package tagging

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gomlx/go-annotations/document"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// TokenTag is the encoded tag of one token. Confidence is the confidence of the
// annotation that wrote the tag, nil for "O" tokens or annotations without one.
type TokenTag struct {
	Tag        string
	Confidence *float64
}

// Overlap records a token whose tag was overwritten by a later annotation.
type Overlap struct {
	Token    int    // token index
	Previous string // ID of the annotation whose tag was overwritten
	Winner   string // ID of the annotation that wrote the final tag
}

// Result of encoding one document.
type Result struct {
	// Tags has one entry per document token.
	Tags []TokenTag

	// Dropped lists the IDs of annotations that overlap no token, in processing order.
	Dropped []string

	// Overlaps lists every overwritten token tag, in processing order.
	Overlaps []Overlap

	// Warnings holds a message per dropped annotation or overlap, when the matching
	// policy is "warn".
	Warnings []string
}

// Encode tags the tokens of doc with its annotations.
//
// The document is not modified. It fails if the tokens are not ordered and
// non-overlapping (see CheckTokens), or if a policy set to "error" triggers.
func Encode(doc *document.Document, opts Options) (*Result, error) {
	if opts.Scheme == "" {
		opts.Scheme = BIO
	}
	switch opts.Scheme {
	case BIO, BILOU, IO:
	default:
		return nil, errors.Wrapf(ErrUnknownScheme, "%q", opts.Scheme)
	}
	if err := CheckTokens(doc.Tokens); err != nil {
		return nil, errors.WithMessagef(err, "document %q", doc.ID)
	}

	res := &Result{Tags: make([]TokenTag, len(doc.Tokens))}
	for i := range res.Tags {
		res.Tags[i].Tag = Outside
	}
	// writer[i] is the index (into sorted) of the annotation that last wrote token i.
	writer := make([]int, len(doc.Tokens))
	for i := range writer {
		writer[i] = -1
	}

	sorted := slices.Clone(doc.Annotations)
	slices.SortStableFunc(sorted, func(a, b document.Annotation) int {
		return cmp.Compare(a.Start, b.Start)
	})

	for annIdx, ann := range sorted {
		var indices []int
		if ann.Start < ann.End {
			indices = overlapping(doc.Tokens, ann)
		}
		if len(indices) == 0 {
			res.Dropped = append(res.Dropped, ann.ID)
			switch opts.OnDroppedAnnotation {
			case DropError:
				return nil, errors.Wrapf(ErrDroppedAnnotation, "document %q, annotation %q [%d, %d)",
					doc.ID, ann.ID, ann.Start, ann.End)
			case DropWarn:
				msg := fmt.Sprintf("document %q: annotation %q [%d, %d) %s overlaps no token and was dropped",
					doc.ID, ann.ID, ann.Start, ann.End, ann.Label)
				res.Warnings = append(res.Warnings, msg)
				klog.Warning(msg)
			}
			continue
		}

		for _, tokIdx := range indices {
			prev := writer[tokIdx]
			if prev < 0 {
				continue
			}
			ov := Overlap{Token: tokIdx, Previous: sorted[prev].ID, Winner: ann.ID}
			res.Overlaps = append(res.Overlaps, ov)
			switch opts.OnOverlap {
			case OverlapError:
				return nil, errors.Wrapf(ErrOverlappingAnnotations, "document %q, token %d: annotation %q overlaps %q",
					doc.ID, tokIdx, ann.ID, ov.Previous)
			case OverlapWarn:
				msg := fmt.Sprintf("document %q: token %d tagged by annotation %q is overwritten by annotation %q",
					doc.ID, tokIdx, ov.Previous, ann.ID)
				res.Warnings = append(res.Warnings, msg)
				klog.Warning(msg)
			}
		}

		applyScheme(res.Tags, indices, ann, opts.Scheme)
		for _, tokIdx := range indices {
			writer[tokIdx] = annIdx
		}
	}
	return res, nil
}

// applyScheme writes the tags of one annotation over the given token indices.
func applyScheme(tags []TokenTag, indices []int, ann document.Annotation, scheme Scheme) {
	var conf *float64
	if ann.Confidence != nil {
		c := *ann.Confidence
		conf = &c
	}
	set := func(i int, prefix string) {
		tags[i] = TokenTag{Tag: prefix + "-" + ann.Label, Confidence: conf}
	}
	last := len(indices) - 1
	switch scheme {
	case BILOU:
		if last == 0 {
			set(indices[0], "U")
			return
		}
		set(indices[0], "B")
		for _, i := range indices[1:last] {
			set(i, "I")
		}
		set(indices[last], "L")
	case IO:
		for _, i := range indices {
			set(i, "I")
		}
	default:
		set(indices[0], "B")
		for _, i := range indices[1:] {
			set(i, "I")
		}
	}
}

// TagStrings returns just the tag strings of a result, one per token.
func (r *Result) TagStrings() []string {
	tags := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = t.Tag
	}
	return tags
}
