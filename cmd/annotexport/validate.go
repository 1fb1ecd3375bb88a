package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gomlx/go-annotations/conll"
	"github.com/gomlx/go-annotations/export"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var profilePath, format string
	cmd := &cobra.Command{
		Use:   "validate [flags] ARTIFACT",
		Short: "Validate an exported artifact",
		Long: `Validate ARTIFACT with the validator of its format. The format is taken from
--format, the profile, or the file extension, in this order. Options that shape the
artifact (CoNLL columns and separator, CSV separator and encoding) come from the
profile and must match those used to export it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			if format == "" && profile.Format == "" {
				format = strings.TrimPrefix(filepath.Ext(path), ".")
				if format == "" {
					return errors.Errorf("can't tell the format of %q, use --format", path)
				}
			}
			req, err := profile.Request(format)
			if err != nil {
				return err
			}
			report, err := export.ValidateFile(req.Format, path, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderReport(path, report))
			if !report.IsValid {
				return errInvalidArtifact
			}
			if req.Format == export.CoNLL {
				summary, err := summarizeCoNLL(path, req.CoNLL)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), summary)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "profile the artifact was exported with")
	cmd.Flags().StringVarP(&format, "format", "f", "", "artifact format: conll, json, csv or parquet")
	return cmd
}

// summarizeCoNLL re-reads a CoNLL artifact and counts its documents, tokens and
// tagged tokens per label.
func summarizeCoNLL(path string, opts conll.Options) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read artifact %q", path)
	}
	opts = conll.New(opts).Options()
	blocks, err := conll.ParseExport(string(content), opts.Separator)
	if err != nil {
		return "", err
	}
	tagColumn := 1
	if opts.IncludeConfidence {
		tagColumn = 2
	}
	var tokens int
	labels := make(map[string]int)
	for i := range blocks {
		tokens += len(blocks[i].Rows)
		for _, tag := range blocks[i].Tags(tagColumn) {
			if _, label, found := strings.Cut(tag, "-"); found {
				labels[label]++
			}
		}
	}
	parts := make([]string, 0, len(labels))
	for _, label := range slices.Sorted(maps.Keys(labels)) {
		parts = append(parts, fmt.Sprintf("%s=%d", label, labels[label]))
	}
	return fmt.Sprintf("%d documents, %d tokens, tagged tokens: %s",
		len(blocks), tokens, strings.Join(parts, " ")), nil
}
