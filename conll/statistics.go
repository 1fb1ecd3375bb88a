package conll

import (
	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/internal/stats"
)

// Statistics summarizes a set of documents for display next to a CoNLL export.
type Statistics struct {
	TotalDocuments                int            `json:"total_documents"`
	TotalTokens                   int            `json:"total_tokens"`
	TotalAnnotations              int            `json:"total_annotations"`
	LabelCounts                   map[string]int `json:"label_counts"`
	AverageTokensPerDocument      float64        `json:"average_tokens_per_document"`
	AverageAnnotationsPerDocument float64        `json:"average_annotations_per_document"`
}

// GenerateStatistics counts tokens, annotations and labels over docs. Averages are 0
// when docs is empty.
func GenerateStatistics(docs []document.Document) Statistics {
	s := Statistics{
		TotalDocuments: len(docs),
		LabelCounts:    make(map[string]int),
	}
	for _, doc := range docs {
		s.TotalTokens += len(doc.Tokens)
		s.TotalAnnotations += len(doc.Annotations)
		for _, ann := range doc.Annotations {
			s.LabelCounts[ann.Label]++
		}
	}
	s.AverageTokensPerDocument = stats.Ratio(float64(s.TotalTokens), float64(len(docs)))
	s.AverageAnnotationsPerDocument = stats.Ratio(float64(s.TotalAnnotations), float64(len(docs)))
	return s
}
