package csvexport

import (
	"encoding/csv"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func sampleDocuments() []document.Document {
	ann := &document.Annotator{ID: "u1", Name: "Ann", Email: "ann@example.com"}
	return []document.Document{
		{ID: "d1", Title: "One", Text: "abc def", Language: "en", CreatedAt: created, Annotations: []document.Annotation{
			{ID: "a1", Start: 0, End: 3, Text: "abc", Label: "X", Confidence: document.Float(0.5), Annotator: ann,
				CreatedAt: created, Comments: []string{"c1", "c2"}, Relations: []document.Relation{{Type: "r", Target: "a2"}}},
			{ID: "a2", Start: 4, End: 7, Text: "def", Label: "X", Confidence: document.Float(0.7), Annotator: ann, CreatedAt: created},
		}},
		{ID: "d2", Title: "Two, again", Text: "ghij", CreatedAt: created, Annotations: []document.Annotation{
			{ID: "b1", Start: 0, End: 4, Text: "ghij", Label: "Y", CreatedAt: created},
		}},
	}
}

func TestExportAnnotations(t *testing.T) {
	out := New(DefaultOptions()).ExportAnnotations(tabular.Annotations(sampleDocuments()))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(AnnotationColumns, ","), lines[0])
	assert.Equal(t, "d1,One,a1,abc,X,0,3,3,0.5,Ann,ann@example.com,2024-05-06T07:08:09Z,,2,true,1", lines[1])
	assert.Equal(t, `d2,"Two, again",b1,ghij,Y,0,4,4,,,,2024-05-06T07:08:09Z,,0,false,0`, lines[3])
}

func TestExportDocuments(t *testing.T) {
	e := New(Options{Separator: ';'})
	out := e.ExportDocuments(tabular.Documents(sampleDocuments()))
	assert.Equal(t,
		"d1;One;7;2;1;0.285714;2024-05-06T07:08:09Z;;en\n"+
			"d2;Two, again;4;1;1;0.250000;2024-05-06T07:08:09Z;;",
		out)
}

func TestLabelStatistics(t *testing.T) {
	records := tabular.Annotations(sampleDocuments())
	stats := GenerateLabelStatistics(records)
	require.Len(t, stats, 2)
	assert.Equal(t, "X", stats[0].Label)
	assert.Equal(t, 2, stats[0].TotalCount)
	assert.Equal(t, 1, stats[0].DocumentCount)
	require.NotNil(t, stats[0].AverageConfidence)
	assert.InDelta(t, 0.6, *stats[0].AverageConfidence, 1e-9)
	assert.Equal(t, 3.0, stats[0].AverageLength)
	assert.Nil(t, stats[1].AverageConfidence)

	out := New(Options{}).ExportLabelStatistics(stats)
	assert.Equal(t, "X,2,1,0.600,3.00,66.67\nY,1,1,,4.00,33.33", out)
	assert.Empty(t, GenerateLabelStatistics(nil))
}

// labelRecords returns one record per (document, label) occurrence.
func labelRecords(counts map[string]map[string]int) []tabular.AnnotationRecord {
	var records []tabular.AnnotationRecord
	for _, docID := range slices.Sorted(maps.Keys(counts)) {
		for _, label := range slices.Sorted(maps.Keys(counts[docID])) {
			for range counts[docID][label] {
				records = append(records, tabular.AnnotationRecord{DocumentID: docID, Label: label, Length: 2})
			}
		}
	}
	return records
}

func TestLabelFrequencies(t *testing.T) {
	cases := []struct {
		name   string
		counts map[string]map[string]int
		want   string
	}{
		{
			name:   "single document",
			counts: map[string]map[string]int{"d1": {"X": 2, "Y": 1}},
			want:   "X,2,1,,2.00,66.67\nY,1,1,,2.00,33.33",
		},
		{
			name: "three documents",
			counts: map[string]map[string]int{
				"d1": {"X": 4, "Y": 2},
				"d2": {"X": 3},
				"d3": {"X": 3, "Y": 3},
			},
			want: "X,10,3,,2.00,66.67\nY,5,2,,2.00,33.33",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stats := GenerateLabelStatistics(labelRecords(tc.counts))
			assert.Equal(t, tc.want, New(Options{}).ExportLabelStatistics(stats))
		})
	}
}

func TestLabelStatisticsOrder(t *testing.T) {
	records := []tabular.AnnotationRecord{
		{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "B"}, {Label: "C"},
	}
	var labels []string
	for _, s := range GenerateLabelStatistics(records) {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"B", "C", "A"}, labels)
}

func TestAnnotatorStatistics(t *testing.T) {
	stats := GenerateAnnotatorStatistics(tabular.Annotations(sampleDocuments()))
	require.Len(t, stats, 2)
	assert.Equal(t, AnnotatorStatistics{
		AnnotatorName:     "Ann",
		AnnotatorEmail:    "ann@example.com",
		AnnotationCount:   2,
		DocumentCount:     1,
		AverageConfidence: stats[0].AverageConfidence,
		UniqueLabels:      1,
		ProductivityScore: 2,
	}, stats[0])
	assert.Equal(t, UnknownAnnotator, stats[1].AnnotatorName)

	out := New(Options{}).ExportAnnotatorStatistics(stats)
	assert.Equal(t, "Ann,ann@example.com,2,1,0.600,1,2.000\nUnknown,,1,1,,1,1.000", out)
}

func TestEscape(t *testing.T) {
	e := New(DefaultOptions())
	assert.Equal(t, "plain", e.Escape("plain"))
	assert.Equal(t, `"a,b"`, e.Escape("a,b"))
	assert.Equal(t, `"say ""hi"""`, e.Escape(`say "hi"`))
	assert.Equal(t, "\"line\nbreak\"", e.Escape("line\nbreak"))
	assert.Equal(t, "\"carriage\rreturn\"", e.Escape("carriage\rreturn"))
	assert.Equal(t, "a;b", e.Escape("a;b"))
	assert.Equal(t, `"a;b"`, New(Options{Separator: ';'}).Escape("a;b"))
	assert.Equal(t, `"#tag"`, e.Escape("#tag"))
	assert.Equal(t, "a#b", e.Escape("a#b"))
}

func TestEscapingRoundTrip(t *testing.T) {
	texts := []string{`comma, inside`, `"quoted"`, "multi\nline", `mixed "a, b"` + "\nc", "ünïcode"}
	var records []tabular.AnnotationRecord
	for _, text := range texts {
		records = append(records, tabular.AnnotationRecord{DocumentID: "d", Text: text, Label: "X"})
	}
	for _, sep := range []rune{',', ';', '\t'} {
		out := New(Options{IncludeHeaders: true, Separator: sep}).ExportAnnotations(records)
		r := csv.NewReader(strings.NewReader(out))
		r.Comma = sep
		rows, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, len(texts)+1)
		for i, text := range texts {
			assert.Equal(t, text, rows[i+1][3])
			assert.Len(t, rows[i+1], len(AnnotationColumns))
		}
	}
}

func TestExportDataset(t *testing.T) {
	e := New(DefaultOptions())
	data := NewDataset(sampleDocuments())
	out := e.ExportDataset(data)
	assert.True(t, strings.HasPrefix(out, AnnotationsBanner+"\n"+strings.Join(AnnotationColumns, ",")+"\n"))
	assert.Contains(t, out, "\n\n"+DocumentsBanner+"\n")
	assert.Contains(t, out, "\n\n"+LabelStatisticsBanner+"\n")
	assert.Contains(t, out, "\n\n"+AnnotatorStatisticsBanner+"\n")
	assert.Equal(t, out, e.ExportDataset(NewDataset(sampleDocuments())), "export must be idempotent")

	report := e.Validate(out)
	assert.True(t, report.IsValid, "errors: %v", report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 3+2+2+2, report.RowCount)
	assert.Equal(t, len(AnnotationColumns), report.ColumnCount)
}

func TestExportDatasetHashPrefixedFields(t *testing.T) {
	bot := &document.Annotator{Name: "#bot"}
	docs := []document.Document{{ID: "#42", Title: "Hashes", Text: "ab cd ef", Annotations: []document.Annotation{
		{ID: "a1", Start: 0, End: 2, Text: "ab", Label: "#tag", Annotator: bot},
		{ID: "a2", Start: 3, End: 5, Text: "cd", Label: "#tag", Annotator: bot},
		{ID: "a3", Start: 6, End: 8, Text: "ef", Label: "GENE", Annotator: bot},
	}}}
	e := New(DefaultOptions())
	report := e.Validate(e.ExportDataset(NewDataset(docs)))
	assert.True(t, report.IsValid, "errors: %v", report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 3+1+2+1, report.RowCount)
}

func TestExporterConcurrentUse(t *testing.T) {
	e := New(DefaultOptions())
	want := e.ExportDataset(NewDataset(sampleDocuments()))
	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.ExportDataset(NewDataset(sampleDocuments()))
		}()
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestValidate(t *testing.T) {
	e := New(DefaultOptions())

	report := e.Validate("")
	assert.False(t, report.IsValid)
	assert.Equal(t, []string{"Empty CSV content"}, report.Errors)

	report = e.Validate("a,b,c\n")
	assert.True(t, report.IsValid)
	assert.Equal(t, []string{"CSV contains only headers, no data rows"}, report.Warnings)
	assert.Equal(t, 3, report.ColumnCount)

	report = e.Validate("a,b,c\n1,2,3\n1,2\n\"x,y\",2,3\n1,2,3,4")
	assert.False(t, report.IsValid)
	assert.Equal(t, []string{
		"Row 3: Expected 3 columns, got 2",
		"Row 5: Expected 3 columns, got 4",
	}, report.Errors)
	assert.Equal(t, 4, report.RowCount)

	report = e.Validate("# ONE\na,b\n1,2\n\n# TWO\nc,d,e\n")
	assert.True(t, report.IsValid)
	assert.Equal(t, []string{"Section TWO contains only headers, no data rows"}, report.Warnings)
	assert.Equal(t, 2, report.ColumnCount)
	assert.Equal(t, 1, report.RowCount)

	report = e.Validate("a,b\n\"#quoted\",2\n")
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 1, report.RowCount)

	report = e.Validate("a,b\n\"unterminated,2\n")
	assert.False(t, report.IsValid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Malformed CSV")
}

func TestEncodeOutput(t *testing.T) {
	text := "label,text\nX,héllo"

	out, err := New(DefaultOptions()).EncodeOutput(text)
	require.NoError(t, err)
	assert.Equal(t, []byte(text), out)

	e := New(Options{Encoding: UTF16})
	out, err = e.EncodeOutput(text)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE, 'l', 0}, out[:4])
	decoded, err := e.DecodeInput(out)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)

	out, err = New(Options{Encoding: ASCII}).EncodeOutput(text)
	require.NoError(t, err)
	assert.Equal(t, "label,text\nX,h?llo", string(out))

	_, err = New(Options{Encoding: "latin-1"}).EncodeOutput(text)
	assert.Error(t, err)
}

func TestParseEncoding(t *testing.T) {
	for name, want := range map[string]Encoding{"": UTF8, "UTF-8": UTF8, "utf16": UTF16, "ASCII": ASCII} {
		got, err := ParseEncoding(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEncoding("ebcdic")
	assert.Error(t, err)
}
