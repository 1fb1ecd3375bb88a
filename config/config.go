// Package config loads export profiles: YAML or TOML files selecting an export format
// and the options of its exporter.
//
// Example profile (YAML):
//
//	format: conll
//	validate: true
//	tokenizer: ./tokenizer.json
//	conll:
//	  encoding: BILOU
//	  include_confidence: true
//	  on_overlap: warn
//
// Keys left out keep the exporter's default value.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gomlx/go-annotations/csvexport"
	"github.com/gomlx/go-annotations/export"
	"github.com/gomlx/go-annotations/tagging"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// Profile is the file schema of an export profile.
type Profile struct {
	Format           string `yaml:"format" toml:"format"`
	ValidateArtifact *bool  `yaml:"validate" toml:"validate"`
	Tokenizer        string `yaml:"tokenizer" toml:"tokenizer"`

	CoNLL *CoNLLProfile `yaml:"conll" toml:"conll"`
	JSON  *JSONProfile  `yaml:"json" toml:"json"`
	CSV   *CSVProfile   `yaml:"csv" toml:"csv"`
}

// CoNLLProfile overrides conll.Options.
type CoNLLProfile struct {
	IncludePOS          *bool  `yaml:"include_pos" toml:"include_pos"`
	IncludeLemma        *bool  `yaml:"include_lemma" toml:"include_lemma"`
	IncludeConfidence   *bool  `yaml:"include_confidence" toml:"include_confidence"`
	Encoding            string `yaml:"encoding" toml:"encoding"`
	Separator           string `yaml:"separator" toml:"separator"`
	OnDroppedAnnotation string `yaml:"on_dropped_annotation" toml:"on_dropped_annotation"`
	OnOverlap           string `yaml:"on_overlap" toml:"on_overlap"`
}

// JSONProfile overrides jsonexport.Options.
type JSONProfile struct {
	IncludeMetadata          *bool  `yaml:"include_metadata" toml:"include_metadata"`
	IncludeComments          *bool  `yaml:"include_comments" toml:"include_comments"`
	IncludeAnnotationHistory *bool  `yaml:"include_annotation_history" toml:"include_annotation_history"`
	IncludeStatistics        *bool  `yaml:"include_statistics" toml:"include_statistics"`
	PrettyFormat             *bool  `yaml:"pretty_format" toml:"pretty_format"`
	IncludeSchema            *bool  `yaml:"include_schema" toml:"include_schema"`
	CreatedBy                string `yaml:"created_by" toml:"created_by"`
}

// CSVProfile overrides csvexport.Options.
type CSVProfile struct {
	IncludeHeaders *bool  `yaml:"include_headers" toml:"include_headers"`
	Separator      string `yaml:"separator" toml:"separator"`
	Encoding       string `yaml:"encoding" toml:"encoding"`
}

// Load reads the profile at path; the decoder is chosen by the extension (.yaml,
// .yml or .toml). Unknown keys are an error.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read profile %q", path)
	}
	var p *Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		p, err = ParseYAML(data)
	case ".toml":
		p, err = ParseTOML(data)
	default:
		return nil, errors.Errorf("profile %q: unsupported extension %q (want .yaml, .yml or .toml)", path, ext)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "profile %q", path)
	}
	klog.V(1).Infof("config: loaded profile %s (format %q)", path, p.Format)
	return p, nil
}

// ParseYAML decodes a YAML profile. An empty document is an empty profile.
func ParseYAML(data []byte) (*Profile, error) {
	p := &Profile{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode YAML profile")
	}
	return p, nil
}

// ParseTOML decodes a TOML profile.
func ParseTOML(data []byte) (*Profile, error) {
	p := &Profile{}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, errors.Wrap(err, "failed to decode TOML profile")
	}
	return p, nil
}

// Validate checks the names used in the profile. An empty format is accepted, since
// it may be given separately (see Request).
func (p *Profile) Validate() error {
	if p.Format != "" {
		if _, err := export.ParseFormat(p.Format); err != nil {
			return err
		}
	}
	if c := p.CoNLL; c != nil {
		if _, err := tagging.ParseScheme(c.Encoding); err != nil {
			return errors.WithMessage(err, "conll.encoding")
		}
		if _, err := tagging.ParseDropPolicy(c.OnDroppedAnnotation); err != nil {
			return errors.WithMessage(err, "conll.on_dropped_annotation")
		}
		if _, err := tagging.ParseOverlapPolicy(c.OnOverlap); err != nil {
			return errors.WithMessage(err, "conll.on_overlap")
		}
	}
	if c := p.CSV; c != nil {
		if c.Separator != "" && utf8.RuneCountInString(c.Separator) != 1 {
			return errors.Errorf("csv.separator must be a single character, got %q", c.Separator)
		}
		if _, err := csvexport.ParseEncoding(c.Encoding); err != nil {
			return errors.WithMessage(err, "csv.encoding")
		}
	}
	return nil
}

// Request converts the profile into an export request. A non-empty format overrides
// the profile's format; one of the two must be set.
func (p *Profile) Request(format string) (export.Request, error) {
	if err := p.Validate(); err != nil {
		return export.Request{}, err
	}
	if format == "" {
		format = p.Format
	}
	if format == "" {
		return export.Request{}, errors.New("no export format given")
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return export.Request{}, err
	}

	req := export.DefaultRequest(f)
	setBool(&req.Validate, p.ValidateArtifact)
	if c := p.CoNLL; c != nil {
		opts := &req.CoNLL
		setBool(&opts.IncludePOS, c.IncludePOS)
		setBool(&opts.IncludeLemma, c.IncludeLemma)
		setBool(&opts.IncludeConfidence, c.IncludeConfidence)
		if c.Encoding != "" {
			opts.Encoding, _ = tagging.ParseScheme(c.Encoding)
		}
		if c.Separator != "" {
			opts.Separator = c.Separator
		}
		if c.OnDroppedAnnotation != "" {
			opts.OnDroppedAnnotation, _ = tagging.ParseDropPolicy(c.OnDroppedAnnotation)
		}
		if c.OnOverlap != "" {
			opts.OnOverlap, _ = tagging.ParseOverlapPolicy(c.OnOverlap)
		}
	}
	if j := p.JSON; j != nil {
		opts := &req.JSON
		setBool(&opts.IncludeMetadata, j.IncludeMetadata)
		setBool(&opts.IncludeComments, j.IncludeComments)
		setBool(&opts.IncludeAnnotationHistory, j.IncludeAnnotationHistory)
		setBool(&opts.IncludeStatistics, j.IncludeStatistics)
		setBool(&opts.PrettyFormat, j.PrettyFormat)
		setBool(&opts.IncludeSchema, j.IncludeSchema)
		if j.CreatedBy != "" {
			opts.CreatedBy = j.CreatedBy
		}
	}
	if c := p.CSV; c != nil {
		opts := &req.CSV
		setBool(&opts.IncludeHeaders, c.IncludeHeaders)
		if c.Separator != "" {
			opts.Separator, _ = utf8.DecodeRuneInString(c.Separator)
		}
		if c.Encoding != "" {
			opts.Encoding, _ = csvexport.ParseEncoding(c.Encoding)
		}
	}
	return req, nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
