// Package export runs one of the exporters by format name and validates the bytes it
// produced. It is the entry point used by the command line tool.
package export

import (
	"os"
	"strings"

	"github.com/gomlx/go-annotations/conll"
	"github.com/gomlx/go-annotations/csvexport"
	"github.com/gomlx/go-annotations/document"
	"github.com/gomlx/go-annotations/jsonexport"
	"github.com/gomlx/go-annotations/parquetexport"
	"github.com/gomlx/go-annotations/validation"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
	"k8s.io/klog/v2"
)

// Format of an export artifact.
type Format string

const (
	CoNLL   Format = "conll"
	JSON    Format = "json"
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

// Formats lists the supported formats.
var Formats = []Format{CoNLL, JSON, CSV, Parquet}

// ParseFormat parses a (case-insensitive) format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown export format %q (want conll, json, csv or parquet)", name)
}

// Extension returns the conventional file extension, with the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Request selects a format and the options of every exporter; only the options of
// the selected format are used.
type Request struct {
	Format   Format
	CoNLL    conll.Options
	JSON     jsonexport.Options
	CSV      csvexport.Options
	Validate bool
}

// DefaultRequest returns a request for format with every exporter's default options.
func DefaultRequest(format Format) Request {
	return Request{
		Format: format,
		CoNLL:  conll.DefaultOptions(),
		JSON:   jsonexport.DefaultOptions(),
		CSV:    csvexport.DefaultOptions(),
	}
}

// CSVStatistics are the statistics tables of a CSV dataset.
type CSVStatistics struct {
	Labels     []csvexport.LabelStatistics
	Annotators []csvexport.AnnotatorStatistics
}

// Artifact is the result of Run.
type Artifact struct {
	Format  Format
	Content []byte

	// Statistics is conll.Statistics, jsonexport.GlobalStatistics or CSVStatistics,
	// depending on the format.
	Statistics any

	// Report is set when validation was requested.
	Report *validation.Report
}

// Run exports docs in the requested format. With req.Validate, the produced bytes are
// re-parsed by the format's validator and the report attached.
func Run(docs []document.Document, req Request) (*Artifact, error) {
	artifact := &Artifact{Format: req.Format}
	switch req.Format {
	case CoNLL:
		text, err := conll.New(req.CoNLL).ExportDocuments(docs)
		if err != nil {
			return nil, err
		}
		artifact.Content = []byte(text)
		artifact.Statistics = conll.GenerateStatistics(docs)
	case JSON:
		text, err := jsonexport.New(req.JSON).ExportDocuments(docs)
		if err != nil {
			return nil, err
		}
		artifact.Content = []byte(text)
		artifact.Statistics = jsonexport.GenerateGlobalStatistics(docs)
	case CSV:
		e := csvexport.New(req.CSV)
		data := csvexport.NewDataset(docs)
		content, err := e.EncodeOutput(e.ExportDataset(data))
		if err != nil {
			return nil, err
		}
		artifact.Content = content
		artifact.Statistics = CSVStatistics{Labels: data.LabelStatistics, Annotators: data.AnnotatorStatistics}
	case Parquet:
		content, err := parquetexport.Export(docs)
		if err != nil {
			return nil, err
		}
		artifact.Content = content
		artifact.Statistics = jsonexport.GenerateGlobalStatistics(docs)
	default:
		return nil, errors.Errorf("unknown export format %q", req.Format)
	}
	if req.Validate {
		report, err := Validate(req.Format, artifact.Content, req)
		if err != nil {
			return nil, err
		}
		artifact.Report = &report
		if !report.IsValid {
			klog.Warningf("export: %s artifact failed validation with %d errors", req.Format, len(report.Errors))
		}
	}
	return artifact, nil
}

// Validate checks an existing artifact with the validator of format. The options in
// req that shape the artifact (separator, columns, scheme, encoding) must match the
// ones it was exported with. An error is returned only if content can't be decoded
// for validation at all.
func Validate(format Format, content []byte, req Request) (validation.Report, error) {
	switch format {
	case CoNLL:
		return conll.New(req.CoNLL).ValidateExport(string(content)), nil
	case JSON:
		return jsonexport.Validate(string(content)), nil
	case CSV:
		e := csvexport.New(req.CSV)
		text, err := e.DecodeInput(content)
		if err != nil {
			return validation.Report{}, err
		}
		return e.Validate(text).Report, nil
	case Parquet:
		return parquetexport.ValidateBytes(content), nil
	}
	return validation.Report{}, errors.Errorf("unknown export format %q", format)
}

// ValidateFile validates the artifact stored at path. Parquet files are memory-mapped
// rather than read.
func ValidateFile(format Format, path string, req Request) (validation.Report, error) {
	if format == Parquet {
		r, err := mmap.Open(path)
		if err != nil {
			return validation.Report{}, errors.Wrapf(err, "failed to mmap %s", path)
		}
		defer func() { _ = r.Close() }()
		return parquetexport.Validate(r, int64(r.Len())), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return validation.Report{}, errors.Wrapf(err, "failed to read artifact %q", path)
	}
	return Validate(format, content, req)
}
