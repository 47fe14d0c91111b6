package profile

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
)

type Builder struct {
	extractor *criteria.Extractor
	workers   int
}

func NewBuilder(extractor *criteria.Extractor, workers int) *Builder {
	if extractor == nil {
		extractor = criteria.Default()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{extractor: extractor, workers: workers}
}

// Build derives the profile of one trial. Trials without an identifier are
// skipped and report ok=false.
func (b *Builder) Build(trial models.RawTrial) (Profile, bool) {
	if trial.TrialID == "" {
		return Profile{}, false
	}
	text := trial.EligibilityText
	return Profile{
		TrialID:        trial.TrialID,
		AgeMin:         ParseAge(trial.MinimumAge),
		AgeMax:         ParseAge(trial.MaximumAge),
		Sex:            trial.Sex,
		Facts:          b.extractor.Extract(text),
		DoseEscalation: b.extractor.DoseEscalation(descriptive(trial)),
		Randomization:  criteria.ParseRandomization(trial.Allocation, trial.Masking, trial.Description),
		Crossover:      b.extractor.Crossover(text, trial.BriefSummary, trial.Description),
	}, true
}

// BuildAll profiles the whole corpus on a bounded worker pool. Each worker
// writes only its own slot, so the catalog keeps corpus order regardless of
// completion order.
func (b *Builder) BuildAll(ctx context.Context, trials []models.RawTrial) (*Catalog, error) {
	start := time.Now()
	slots := make([]*Entry, len(trials))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range trials {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if p, ok := b.Build(trials[i]); ok {
				slots[i] = &Entry{Trial: trials[i], Profile: p}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(trials))
	for _, slot := range slots {
		if slot != nil {
			entries = append(entries, *slot)
		}
	}
	catalog := NewCatalog(entries)

	logger.Log.WithFields(map[string]interface{}{
		"trials":   len(trials),
		"profiles": catalog.Len(),
		"skipped":  len(trials) - len(entries),
		"workers":  b.workers,
		"duration": time.Since(start).Milliseconds(),
	}).Info("Built eligibility profiles")
	return catalog, nil
}
