package jsonexport

import (
	"math"

	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/internal/stats"
)

// DocumentStatistics is the per-document statistics block.
type DocumentStatistics struct {
	TotalAnnotations       int            `json:"total_annotations"`
	AnnotationsByLabel     map[string]int `json:"annotations_by_label"`
	AnnotationsByAnnotator map[string]int `json:"annotations_by_annotator"`
	AverageConfidence      float64        `json:"average_confidence"`
	TextLength             int            `json:"text_length"`
	AnnotationDensity      float64        `json:"annotation_density"`
}

// ConfidenceDistribution summarizes the confidences of all annotations that carry
// one. Mean, Median and StdDev are rounded to 3 decimals; Min and Max are exact.
type ConfidenceDistribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// GlobalStatistics is the cross-document statistics block.
type GlobalStatistics struct {
	TotalDocuments         int                    `json:"total_documents"`
	TotalAnnotations       int                    `json:"total_annotations"`
	UniqueLabels           []string               `json:"unique_labels"`
	UniqueAnnotators       []string               `json:"unique_annotators"`
	LabelDistribution      map[string]int         `json:"label_distribution"`
	AnnotatorContribution  map[string]int         `json:"annotator_contribution"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`
}

// GenerateDocumentStatistics counts the annotations of one document by label and by
// annotator name, and averages their confidences (0 if none has one).
func GenerateDocumentStatistics(doc *document.Document) DocumentStatistics {
	s := DocumentStatistics{
		TotalAnnotations:       len(doc.Annotations),
		AnnotationsByLabel:     make(map[string]int),
		AnnotationsByAnnotator: make(map[string]int),
		TextLength:             doc.TextLength(),
		AnnotationDensity:      doc.AnnotationDensity(),
	}
	var confidences []float64
	for _, ann := range doc.Annotations {
		s.AnnotationsByLabel[ann.Label]++
		if ann.Annotator != nil {
			s.AnnotationsByAnnotator[ann.Annotator.Name]++
		}
		if conf, ok := finiteConfidence(&ann); ok {
			confidences = append(confidences, conf)
		}
	}
	s.AverageConfidence = stats.Mean(confidences)
	return s
}

// GenerateGlobalStatistics aggregates over all annotations of docs. Unique labels
// and annotators are listed in first-seen order.
func GenerateGlobalStatistics(docs []document.Document) GlobalStatistics {
	s := GlobalStatistics{
		TotalDocuments:        len(docs),
		UniqueLabels:          []string{},
		UniqueAnnotators:      []string{},
		LabelDistribution:     make(map[string]int),
		AnnotatorContribution: make(map[string]int),
	}
	var confidences []float64
	for _, doc := range docs {
		for _, ann := range doc.Annotations {
			s.TotalAnnotations++
			if s.LabelDistribution[ann.Label] == 0 {
				s.UniqueLabels = append(s.UniqueLabels, ann.Label)
			}
			s.LabelDistribution[ann.Label]++
			if ann.Annotator != nil {
				name := ann.Annotator.Name
				if s.AnnotatorContribution[name] == 0 {
					s.UniqueAnnotators = append(s.UniqueAnnotators, name)
				}
				s.AnnotatorContribution[name]++
			}
			if conf, ok := finiteConfidence(&ann); ok {
				confidences = append(confidences, conf)
			}
		}
	}
	s.ConfidenceDistribution = ConfidenceStatistics(confidences)
	return s
}

// finiteConfidence returns the confidence of ann, if it has one that JSON can hold.
func finiteConfidence(ann *document.Annotation) (float64, bool) {
	if ann.Confidence == nil || math.IsNaN(*ann.Confidence) || math.IsInf(*ann.Confidence, 0) {
		return 0, false
	}
	return *ann.Confidence, true
}

// ConfidenceStatistics computes the distribution of values with population
// formulas. All fields are 0 for no values.
func ConfidenceStatistics(values []float64) ConfidenceDistribution {
	if len(values) == 0 {
		return ConfidenceDistribution{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return ConfidenceDistribution{
		Mean:   stats.Round(stats.Mean(values), 3),
		Median: stats.Round(stats.Median(values), 3),
		StdDev: stats.Round(stats.PopulationStdDev(values), 3),
		Min:    lo,
		Max:    hi,
	}
}
