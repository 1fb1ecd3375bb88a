package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gomlx/go-annotations/validation"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	validStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderReport formats a validation report of the artifact called name.
func renderReport(name string, r validation.Report) string {
	var sb strings.Builder
	if r.IsValid {
		sb.WriteString(validStyle.Render("✓ " + name + " is valid"))
	} else {
		sb.WriteString(errorStyle.Bold(true).Render("✗ " + name + " is invalid"))
	}
	fmt.Fprintf(&sb, " (%d errors, %d warnings)", len(r.Errors), len(r.Warnings))
	for _, msg := range r.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(errorStyle.Render("error: " + msg))
	}
	for _, msg := range r.Warnings {
		sb.WriteString("\n  ")
		sb.WriteString(warnStyle.Render("warning: " + msg))
	}
	return sb.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func optional(v *float64, precision int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}

// renderStatistics formats corpus statistics as a summary followed by label and
// annotator tables.
func renderStatistics(s *corpusStatistics) string {
	g := &s.Global
	summary := newTable("Statistic", "Value").Rows(
		[]string{"Documents", strconv.Itoa(g.TotalDocuments)},
		[]string{"Tokens", strconv.Itoa(s.Tokens.TotalTokens)},
		[]string{"Annotations", strconv.Itoa(g.TotalAnnotations)},
		[]string{"Unique labels", strconv.Itoa(len(g.UniqueLabels))},
		[]string{"Unique annotators", strconv.Itoa(len(g.UniqueAnnotators))},
		[]string{"Tokens per document", strconv.FormatFloat(s.Tokens.AverageTokensPerDocument, 'f', 2, 64)},
		[]string{"Annotations per document", strconv.FormatFloat(s.Tokens.AverageAnnotationsPerDocument, 'f', 2, 64)},
		[]string{"Confidence mean / median", fmt.Sprintf("%.3f / %.3f", g.ConfidenceDistribution.Mean, g.ConfidenceDistribution.Median)},
		[]string{"Confidence min / max", fmt.Sprintf("%.3f / %.3f", g.ConfidenceDistribution.Min, g.ConfidenceDistribution.Max)},
	)

	labels := newTable("Label", "Count", "Documents", "Avg. confidence", "Avg. length", "Frequency %")
	for _, l := range s.Labels {
		labels.Row(l.Label, strconv.Itoa(l.TotalCount), strconv.Itoa(l.DocumentCount),
			optional(l.AverageConfidence, 3), strconv.FormatFloat(l.AverageLength, 'f', 2, 64),
			strconv.FormatFloat(l.FrequencyPercentage, 'f', 2, 64))
	}

	annotators := newTable("Annotator", "Annotations", "Documents", "Avg. confidence", "Labels", "Per document")
	for _, a := range s.Annotators {
		annotators.Row(a.AnnotatorName, strconv.Itoa(a.AnnotationCount), strconv.Itoa(a.DocumentCount),
			optional(a.AverageConfidence, 3), strconv.Itoa(a.UniqueLabels),
			strconv.FormatFloat(a.ProductivityScore, 'f', 2, 64))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Corpus"), summary.Render(),
		titleStyle.Render("Labels"), labels.Render(),
		titleStyle.Render("Annotators"), annotators.Render(),
	)
}
