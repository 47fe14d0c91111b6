package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
)

const egfrCriteria = "Inclusion Criteria:\n- Age 18 years or older\n- EGFR exon 19 deletion\n- ECOG 0-1\nExclusion Criteria:\n- Untreated brain metastases\n- More than 2 prior regimens"

func sampleTrial(id string) models.RawTrial {
	return models.RawTrial{
		TrialID:         id,
		Title:           "Osimertinib dose escalation in EGFR-mutant NSCLC",
		BriefSummary:    "Phase 1a study; patients may crossover at progression.",
		Description:     "Patients are randomized in a 2:1 ratio.",
		Conditions:      []string{"Non-small Cell Lung Cancer"},
		Phase:           "PHASE1",
		Status:          "RECRUITING",
		Allocation:      "RANDOMIZED",
		EligibilityText: egfrCriteria,
		MinimumAge:      "18 Years",
		MaximumAge:      "N/A",
		Sex:             "ALL",
	}
}

func TestParseAge(t *testing.T) {
	cases := map[string]any{
		"18 Years": 18.0,
		"6 Months": 0.5,
		"26 Weeks": 0.5,
		"73 Days":  0.2,
		"65":       65.0,
		"N/A":      nil,
		"":         nil,
		"unknown":  nil,
	}
	for input, want := range cases {
		got := ParseAge(input)
		if want == nil {
			assert.Nil(t, got, input)
			continue
		}
		require.NotNil(t, got, input)
		assert.InDelta(t, want.(float64), *got, 1e-9, input)
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder(nil, 2)

	p, ok := b.Build(sampleTrial("NCT00000001"))
	require.True(t, ok)
	assert.Equal(t, "NCT00000001", p.TrialID)
	require.NotNil(t, p.AgeMin)
	assert.Equal(t, 18.0, *p.AgeMin)
	assert.Nil(t, p.AgeMax)
	assert.Equal(t, "ALL", p.Sex)

	assert.True(t, p.Biomarkers.EGFRMutation)
	assert.Equal(t, "Exon 19 deletion", p.Biomarkers.EGFRVariant)
	assert.Equal(t, criteria.FlagExcluded, p.Exclusions.Get(criteria.ConditionBrainMets))
	require.NotNil(t, p.EcogMax)
	assert.Equal(t, 1, *p.EcogMax)
	require.NotNil(t, p.PriorLinesLimit)
	assert.Equal(t, 2, *p.PriorLinesLimit)
	assert.Equal(t, []string{"Age 18 years or older", "EGFR exon 19 deletion"}, p.InclusionTerms)

	assert.True(t, p.DoseEscalation.IsDoseEscalation)
	assert.Equal(t, "2:1", p.Randomization.Ratio)
	require.NotNil(t, p.Crossover.Allowed)
	assert.True(t, *p.Crossover.Allowed)

	_, ok = b.Build(models.RawTrial{Title: "no id"})
	assert.False(t, ok)
}

func TestBuildAllKeepsCorpusOrder(t *testing.T) {
	trials := make([]models.RawTrial, 0, 50)
	for i := 0; i < 50; i++ {
		trials = append(trials, sampleTrial(fmt.Sprintf("NCT%08d", i)))
	}
	trials = append(trials, models.RawTrial{Title: "missing id"}, sampleTrial("NCT00000003"))

	catalog, err := NewBuilder(nil, 4).BuildAll(context.Background(), trials)
	require.NoError(t, err)
	assert.Equal(t, 50, catalog.Len())
	for i, e := range catalog.Entries() {
		assert.Equal(t, fmt.Sprintf("NCT%08d", i), e.Profile.TrialID)
	}

	again, err := NewBuilder(nil, 1).BuildAll(context.Background(), trials)
	require.NoError(t, err)
	assert.Equal(t, catalog.Entries(), again.Entries())
}

func TestBuildAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder(nil, 2).BuildAll(ctx, []models.RawTrial{sampleTrial("NCT00000001")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreSwap(t *testing.T) {
	store := NewStore()
	assert.Equal(t, 0, store.Catalog().Len())

	next := NewCatalog([]Entry{{Profile: Profile{TrialID: "NCT00000001"}}})
	prev := store.Swap(next)
	assert.Equal(t, 0, prev.Len())
	_, ok := store.Catalog().Get("NCT00000001")
	assert.True(t, ok)

	store.Swap(nil)
	assert.Equal(t, 0, store.Catalog().Len())
}

func TestRecordRoundTrip(t *testing.T) {
	p, ok := NewBuilder(nil, 1).Build(sampleTrial("NCT00000009"))
	require.True(t, ok)
	entry := Entry{Trial: sampleTrial("NCT00000009"), Profile: p}

	rec, err := toRecord(entry, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "NCT00000009", rec.TrialID)
	assert.Equal(t, "RECRUITING", rec.Status)

	back, err := rec.entry()
	require.NoError(t, err)
	assert.Equal(t, entry, back)
}
