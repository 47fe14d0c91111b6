package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

const egfrCriteria = "Inclusion Criteria:\n- Age 18 years or older\n- EGFR exon 19 deletion\nExclusion Criteria:\n- Untreated brain metastases\n- Prior EGFR TKI therapy"

func intp(v int) *int { return &v }

func TestExcludeEndToEnd(t *testing.T) {
	p, ok := profile.NewBuilder(nil, 1).Build(models.RawTrial{TrialID: "NCT00000001", EligibilityText: egfrCriteria})
	require.True(t, ok)

	patientProfile := patient.Profile{
		Age:        65,
		Biomarkers: []criteria.Biomarker{criteria.BiomarkerEGFR},
		Conditions: []criteria.Condition{criteria.ConditionBrainMets},
	}
	reason, excluded := Exclude(patientProfile, p)
	assert.True(t, excluded)
	assert.Equal(t, "brain metastases not allowed", reason)

	patientProfile.Conditions = nil
	_, excluded = Exclude(patientProfile, p)
	assert.False(t, excluded)

	patientProfile.Biomarkers = nil
	reason, excluded = Exclude(patientProfile, p)
	assert.True(t, excluded)
	assert.Equal(t, "requires EGFR biomarker", reason)
}

func TestMinimumPriorLinesDoesNotExclude(t *testing.T) {
	text := "Inclusion Criteria:\n- Patients must have received >=2 prior lines of systemic therapy\nExclusion Criteria:\n- Pregnancy or lactation"
	p, ok := profile.NewBuilder(nil, 1).Build(models.RawTrial{TrialID: "NCT00000002", EligibilityText: text})
	require.True(t, ok)
	assert.Nil(t, p.PriorLinesLimit)

	_, excluded := Exclude(patient.Profile{Age: 60, PriorTherapies: 3}, p)
	assert.False(t, excluded)
}

func TestExcludeShortCircuits(t *testing.T) {
	trial := profile.Profile{Facts: criteria.Facts{
		Exclusions: criteria.ExclusionFlags{criteria.ConditionHIV: criteria.FlagExcluded},
		EcogMax:    intp(1),
	}}
	p := patient.Profile{ECOG: intp(3), Conditions: []criteria.Condition{criteria.ConditionHIV}}

	reason, excluded := Exclude(p, trial)
	assert.True(t, excluded)
	assert.Equal(t, "HIV not allowed", reason)
}

func TestExcludeRules(t *testing.T) {
	trial := profile.Profile{Facts: criteria.Facts{
		Exclusions: criteria.ExclusionFlags{
			criteria.ConditionAutoimmune: criteria.FlagAllowed,
			criteria.ConditionBrainMets:  criteria.FlagUnknown,
		},
		EcogMax:         intp(1),
		PriorLinesLimit: intp(2),
		Biomarkers:      criteria.BiomarkerRequirements{EGFRMutation: true, ALKRearrangement: true, PDL1Required: true},
	}}

	cases := []struct {
		name    string
		patient patient.Profile
		reason  string
	}{
		{"ecog", patient.Profile{ECOG: intp(2)}, "ECOG 2 exceeds trial maximum of 1"},
		{"prior lines", patient.Profile{PriorTherapies: 3}, "3 prior therapies exceeds trial limit of 2"},
		{"biomarkers", patient.Profile{Biomarkers: []criteria.Biomarker{criteria.BiomarkerPDL1}}, "requires EGFR, ALK biomarker"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason, excluded := Exclude(tc.patient, trial)
			assert.True(t, excluded)
			assert.Equal(t, tc.reason, reason)
		})
	}

	eligible := patient.Profile{
		ECOG:           intp(1),
		PriorTherapies: 2,
		Biomarkers:     []criteria.Biomarker{criteria.BiomarkerEGFR, criteria.BiomarkerALK},
		Conditions:     []criteria.Condition{criteria.ConditionAutoimmune, criteria.ConditionBrainMets},
	}
	_, excluded := Exclude(eligible, trial)
	assert.False(t, excluded, "allowed and unknown flags never exclude")

	_, excluded = Exclude(patient.Profile{}, profile.Profile{})
	assert.False(t, excluded)
}
