package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

func yrs(v float64) *float64 { return &v }

func TestScoreIsAdditive(t *testing.T) {
	entry := profile.Entry{
		Trial:   models.RawTrial{TrialID: "NCT00000001", Title: "EGFR inhibitor study", Status: "COMPLETED", Conditions: []string{"Lung Cancer"}},
		Profile: profile.Profile{TrialID: "NCT00000001", AgeMin: yrs(18), AgeMax: yrs(75)},
	}
	p := patient.Profile{Age: 50, CancerType: "melanoma", Biomarkers: []criteria.Biomarker{criteria.BiomarkerEGFR}}

	score, reasons := Score(p, entry)
	assert.Equal(t, 65, score)
	assert.Equal(t, []string{
		"Age 50 meets minimum age 18",
		"Age 50 within maximum age 75",
		"EGFR biomarker mentioned in trial",
	}, reasons)
}

func TestScoreSignals(t *testing.T) {
	entry := profile.Entry{
		Trial: models.RawTrial{
			TrialID:    "NCT00000002",
			Title:      "Metastatic lung cancer trial",
			Status:     "RECRUITING",
			Conditions: []string{"Non-Small Cell Lung Cancer"},
			Sites:      []models.Site{{State: "California"}},
		},
		Profile: profile.Profile{TrialID: "NCT00000002", AgeMin: yrs(70)},
	}
	p := patient.Profile{Age: 65, CancerType: "Lung Cancer", Stage: patient.StageIV, State: "CA"}

	score, reasons := Score(p, entry)
	assert.Equal(t, -50+30+40+20+15+10, score)
	assert.Equal(t, []string{
		"Age 65 is below minimum age 70",
		"Cancer type mentioned in trial",
		"Cancer type matches listed condition Non-Small Cell Lung Cancer",
		"Stage IV matches trial population",
		"Trial site in CA",
		"Currently recruiting",
	}, reasons)
}

func TestStageMatches(t *testing.T) {
	assert.True(t, stageMatches(patient.StageIII, "stage iiib nsclc"))
	assert.False(t, stageMatches(patient.StageI, "stage iv only"))
	assert.True(t, stageMatches(patient.StageII, "stage 2 disease"))
	assert.True(t, stageMatches(patient.StageRecurrent, "recurrent glioblastoma"))
	assert.False(t, stageMatches(patient.StageMetastatic, "premetastatic niche"))
	assert.False(t, stageMatches(patient.StageUnknown, "stage iv"))
}

func TestScoreAgeAboveMaximum(t *testing.T) {
	entry := profile.Entry{Profile: profile.Profile{AgeMax: yrs(0.5)}}
	score, reasons := Score(patient.Profile{Age: 3}, entry)
	assert.Equal(t, -50, score)
	assert.Equal(t, []string{"Age 3 is above maximum age 0.5"}, reasons)
}
