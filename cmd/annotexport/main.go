// annotexport converts annotated document corpora into NER training artifacts
// (CoNLL, JSON, CSV or Parquet), validates existing artifacts and prints corpus
// statistics.
//
// Usage:
//
//	annotexport export --format conll --out train.conll corpus.jsonl
//	annotexport export --profile profile.yaml --out train.conll corpus.json
//	annotexport validate train.conll
//	annotexport stats corpus.jsonl
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "annotexport",
		Short: "Export annotated documents to NER training formats",
		Long: `annotexport converts annotated documents into CoNLL, JSON, CSV or Parquet
artifacts and validates them.

Corpora are JSON files holding a document, an array of documents or a previous JSON
export, or JSON Lines files with one of those per line. Documents without tokens are
tokenized first (see --tokenizer).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// klog flags (-v, --logtostderr, ...).
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	root.AddCommand(newExportCmd(), newValidateCmd(), newStatsCmd())
	return root
}

func main() {
	defer klog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		klog.Flush()
		os.Exit(1)
	}
}
