package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
)

type rootOptions struct {
	phrasebook string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "trialmatch",
		Short: "Extract eligibility facts and match patients against a trial corpus",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries JSON results, so logs go to stderr
			logger.Log.SetOutput(cmd.ErrOrStderr())
			level, err := logrus.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logger.Log.SetLevel(level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.phrasebook, "phrasebook", os.Getenv("PHRASEBOOK_PATH"), "YAML phrasebook overriding the built-in phrase tables")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newExtractCommand(opts), newMatchCommand(opts))
	return cmd
}

func (o *rootOptions) extractor() (*criteria.Extractor, error) {
	book, err := criteria.LoadPhrasebook(o.phrasebook)
	if err != nil {
		return nil, err
	}
	return criteria.NewExtractor(book), nil
}

// readInput reads the named file, or stdin when the name is empty or "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
