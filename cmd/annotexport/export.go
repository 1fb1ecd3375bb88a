package main

import (
	"github.com/gomlx/go-annotations/artifact"
	"github.com/gomlx/go-annotations/config"
	"github.com/gomlx/go-annotations/corpus"
	"github.com/gomlx/go-annotations/export"
	"github.com/gomlx/go-annotations/tokenizers"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// errInvalidArtifact makes the command exit with an error after the report was printed.
var errInvalidArtifact = errors.New("artifact failed validation")

type exportFlags struct {
	profile   string
	format    string
	out       string
	tokenizer string
	force     bool
	validate  bool
}

func newExportCmd() *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export [flags] CORPUS",
		Short: "Export a corpus to a training artifact",
		Long: `Export the documents of CORPUS in the given format. Without --out the artifact
is written to the standard output.

Options of the exporters are read from a YAML or TOML --profile; --format and
--validate override the profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(flags.profile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("validate") {
				profile.ValidateArtifact = &flags.validate
			}
			if flags.tokenizer != "" {
				profile.Tokenizer = flags.tokenizer
			}
			req, err := profile.Request(flags.format)
			if err != nil {
				return err
			}

			docs, err := corpus.Load(args[0])
			if err != nil {
				return err
			}
			tok, err := tokenizers.Load(profile.Tokenizer)
			if err != nil {
				return err
			}
			docs = tokenizers.Ensure(docs, tok)

			result, err := export.Run(docs, req)
			if err != nil {
				return err
			}
			if flags.out == "" {
				if _, err := cmd.OutOrStdout().Write(result.Content); err != nil {
					return errors.Wrap(err, "failed to write artifact to output")
				}
			} else {
				if err := artifact.Write(cmd.Context(), flags.out, result.Content, flags.force); err != nil {
					return err
				}
				klog.Infof("wrote %s artifact with %d documents to %s", req.Format, len(docs), flags.out)
			}
			if result.Report != nil {
				cmd.PrintErrln(renderReport(string(req.Format), *result.Report))
				if !result.Report.IsValid {
					return errInvalidArtifact
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.profile, "profile", "", "YAML (.yaml, .yml) or TOML (.toml) export profile")
	f.StringVarP(&flags.format, "format", "f", "", "export format: conll, json, csv or parquet")
	f.StringVarP(&flags.out, "out", "o", "", "artifact path; standard output if empty")
	f.StringVar(&flags.tokenizer, "tokenizer", "", "tokenizer.json or SentencePiece .model used for documents without tokens")
	f.BoolVar(&flags.force, "force", false, "overwrite an existing artifact")
	f.BoolVar(&flags.validate, "validate", false, "validate the produced artifact")
	return cmd
}

// loadProfile returns the profile at path, or an empty profile if path is empty.
func loadProfile(path string) (*config.Profile, error) {
	if path == "" {
		return &config.Profile{}, nil
	}
	return config.Load(path)
}
