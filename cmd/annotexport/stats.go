package main

import (
	"encoding/json"
	"fmt"

	"github.com/gomlx/go-annotations/conll"
	"github.com/gomlx/go-annotations/corpus"
	"github.com/gomlx/go-annotations/csvexport"
	"github.com/gomlx/go-annotations/jsonexport"
	"github.com/gomlx/go-annotations/tabular"
	"github.com/gomlx/go-annotations/tokenizers"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// corpusStatistics is what the stats command reports.
type corpusStatistics struct {
	Global     jsonexport.GlobalStatistics     `json:"global"`
	Tokens     conll.Statistics                `json:"tokens"`
	Labels     []csvexport.LabelStatistics     `json:"labels"`
	Annotators []csvexport.AnnotatorStatistics `json:"annotators"`
}

func newStatsCmd() *cobra.Command {
	var tokenizerPath string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats [flags] CORPUS",
		Short: "Print statistics of a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := corpus.Load(args[0])
			if err != nil {
				return err
			}
			tok, err := tokenizers.Load(tokenizerPath)
			if err != nil {
				return err
			}
			docs = tokenizers.Ensure(docs, tok)
			records := tabular.Annotations(docs)
			s := corpusStatistics{
				Global:     jsonexport.GenerateGlobalStatistics(docs),
				Tokens:     conll.GenerateStatistics(docs),
				Labels:     csvexport.GenerateLabelStatistics(records),
				Annotators: csvexport.GenerateAnnotatorStatistics(records),
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return errors.Wrap(enc.Encode(s), "failed to encode statistics")
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatistics(&s))
			return nil
		},
	}
	cmd.Flags().StringVar(&tokenizerPath, "tokenizer", "", "tokenizer.json or SentencePiece .model used for documents without tokens")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}
