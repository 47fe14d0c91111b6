package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

func newExtractCommand(root *rootOptions) *cobra.Command {
	var asTrial bool

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Print the eligibility facts found in criteria text",
		Long: "Reads eligibility criteria text from a file or stdin and prints the extracted facts as JSON.\n" +
			"With --trial the input is one trial record and the full eligibility profile is printed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			input, err := readInput(cmd, name)
			if err != nil {
				return err
			}
			extractor, err := root.extractor()
			if err != nil {
				return fmt.Errorf("load phrasebook: %w", err)
			}

			if !asTrial {
				return printJSON(cmd, extractor.Extract(string(input)))
			}

			var trial models.RawTrial
			if err := json.Unmarshal(input, &trial); err != nil {
				return fmt.Errorf("decode trial: %w", err)
			}
			p, ok := profile.NewBuilder(extractor, 1).Build(trial)
			if !ok {
				return errors.New("trial record has no trial_id")
			}
			return printJSON(cmd, p)
		},
	}

	cmd.Flags().BoolVar(&asTrial, "trial", false, "treat input as a JSON trial record")
	return cmd
}
