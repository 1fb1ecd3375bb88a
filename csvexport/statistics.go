package csvexport

import (
	"cmp"
	"slices"

	"github.com/gomlx/go-annotations/internal/stats"
	"github.com/gomlx/go-annotations/tabular"
)

// UnknownAnnotator groups records without an annotator name.
const UnknownAnnotator = "Unknown"

// LabelStatistics aggregates the records of one label.
type LabelStatistics struct {
	Label               string
	TotalCount          int
	DocumentCount       int
	AverageConfidence   *float64 // nil when no record carries a confidence
	AverageLength       float64
	FrequencyPercentage float64
}

// AnnotatorStatistics aggregates the records of one annotator.
type AnnotatorStatistics struct {
	AnnotatorName     string
	AnnotatorEmail    string // from the first record of the annotator
	AnnotationCount   int
	DocumentCount     int
	AverageConfidence *float64
	UniqueLabels      int
	ProductivityScore float64 // annotations per distinct document
}

// group collects records by key, keeping the first-seen order of keys.
func group(records []tabular.AnnotationRecord, key func(*tabular.AnnotationRecord) string) (keys []string, groups map[string][]*tabular.AnnotationRecord) {
	groups = make(map[string][]*tabular.AnnotationRecord)
	for i := range records {
		k := key(&records[i])
		if _, found := groups[k]; !found {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], &records[i])
	}
	return keys, groups
}

func averageConfidence(records []*tabular.AnnotationRecord) *float64 {
	var values []float64
	for _, r := range records {
		if r.Confidence != nil {
			values = append(values, *r.Confidence)
		}
	}
	if len(values) == 0 {
		return nil
	}
	mean := stats.Mean(values)
	return &mean
}

func countDistinct(records []*tabular.AnnotationRecord, field func(*tabular.AnnotationRecord) string) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[field(r)] = struct{}{}
	}
	return len(seen)
}

func documentID(r *tabular.AnnotationRecord) string { return r.DocumentID }
func label(r *tabular.AnnotationRecord) string      { return r.Label }

// GenerateLabelStatistics groups records by label. The result is sorted by
// descending count; labels with equal counts keep their first-seen order.
func GenerateLabelStatistics(records []tabular.AnnotationRecord) []LabelStatistics {
	keys, groups := group(records, label)
	result := make([]LabelStatistics, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		var totalLength int
		for _, r := range g {
			totalLength += r.Length
		}
		result = append(result, LabelStatistics{
			Label:               k,
			TotalCount:          len(g),
			DocumentCount:       countDistinct(g, documentID),
			AverageConfidence:   averageConfidence(g),
			AverageLength:       stats.Ratio(float64(totalLength), float64(len(g))),
			FrequencyPercentage: stats.Ratio(float64(len(g)), float64(len(records))) * 100,
		})
	}
	slices.SortStableFunc(result, func(a, b LabelStatistics) int { return cmp.Compare(b.TotalCount, a.TotalCount) })
	return result
}

// GenerateAnnotatorStatistics groups records by annotator name, UnknownAnnotator
// for records without one. Sorted like GenerateLabelStatistics.
func GenerateAnnotatorStatistics(records []tabular.AnnotationRecord) []AnnotatorStatistics {
	keys, groups := group(records, func(r *tabular.AnnotationRecord) string {
		if r.AnnotatorName == "" {
			return UnknownAnnotator
		}
		return r.AnnotatorName
	})
	result := make([]AnnotatorStatistics, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		documents := countDistinct(g, documentID)
		result = append(result, AnnotatorStatistics{
			AnnotatorName:     k,
			AnnotatorEmail:    g[0].AnnotatorEmail,
			AnnotationCount:   len(g),
			DocumentCount:     documents,
			AverageConfidence: averageConfidence(g),
			UniqueLabels:      countDistinct(g, label),
			ProductivityScore: stats.Ratio(float64(len(g)), float64(documents)),
		})
	}
	slices.SortStableFunc(result, func(a, b AnnotatorStatistics) int { return cmp.Compare(b.AnnotationCount, a.AnnotationCount) })
	return result
}
