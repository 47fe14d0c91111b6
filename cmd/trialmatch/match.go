package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/matching"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

type matchOptions struct {
	corpus         string
	patient        string
	recruitingOnly bool
	phases         []string
	radius         float64
	sort           string
	page           int
	pageSize       int
	workers        int
}

func newMatchCommand(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank the trials of a corpus for one patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.corpus, "corpus", "", "JSON corpus file: an array of trials or {\"trials\": [...]} (required)")
	f.StringVar(&opts.patient, "patient", "-", "JSON patient form file, - for stdin")
	f.BoolVar(&opts.recruitingOnly, "recruiting-only", false, "only consider recruiting trials")
	f.StringSliceVar(&opts.phases, "phase", nil, "allowed phases, e.g. --phase 2 --phase 3")
	f.Float64Var(&opts.radius, "radius", 0, "maximum distance to the nearest recruiting site in miles, 0 for any")
	f.StringVar(&opts.sort, "sort", string(matching.SortByScore), "result order: score or distance")
	f.IntVar(&opts.page, "page", 0, "zero-based results page")
	f.IntVar(&opts.pageSize, "page-size", matching.DefaultPageSize, "results per page")
	f.IntVar(&opts.workers, "workers", 4, "profile build workers")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}

func runMatch(cmd *cobra.Command, root *rootOptions, opts *matchOptions) error {
	raw, err := os.ReadFile(opts.corpus)
	if err != nil {
		return err
	}
	trials, err := decodeCorpus(raw)
	if err != nil {
		return err
	}

	input, err := readInput(cmd, opts.patient)
	if err != nil {
		return err
	}
	var form patient.Form
	if err := json.Unmarshal(input, &form); err != nil {
		return fmt.Errorf("decode patient: %w", err)
	}
	p, err := patient.NewValidator(0).Validate(form)
	if err != nil {
		return fmt.Errorf("invalid patient: %w", err)
	}

	extractor, err := root.extractor()
	if err != nil {
		return fmt.Errorf("load phrasebook: %w", err)
	}
	catalog, err := profile.NewBuilder(extractor, opts.workers).BuildAll(cmd.Context(), trials)
	if err != nil {
		return err
	}
	store := profile.NewStore()
	store.Swap(catalog)

	page := matching.NewEngine(store, opts.pageSize).Match(matching.Request{
		Patient:        p,
		RecruitingOnly: opts.recruitingOnly,
		Phases:         opts.phases,
		RadiusMiles:    opts.radius,
		Sort:           matching.ParseSortMode(opts.sort),
		Page:           opts.page,
	})
	return printJSON(cmd, page)
}

// decodeCorpus accepts a bare array of trials or a corpus event payload.
func decodeCorpus(raw []byte) ([]models.RawTrial, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("corpus file is empty")
	}
	if raw[0] == '[' {
		var trials []models.RawTrial
		if err := json.Unmarshal(raw, &trials); err != nil {
			return nil, fmt.Errorf("decode corpus: %w", err)
		}
		return trials, nil
	}
	var payload profile.CorpusPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	return payload.Trials, nil
}
