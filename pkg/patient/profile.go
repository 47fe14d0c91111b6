package patient

import (
	"slices"
	"strings"

	"github.com/synaptica-ai/trialmatch/pkg/criteria"
	"github.com/synaptica-ai/trialmatch/pkg/geo"
)

type Stage string

const (
	StageUnknown    Stage = ""
	StageI          Stage = "I"
	StageII         Stage = "II"
	StageIII        Stage = "III"
	StageIV         Stage = "IV"
	StageRecurrent  Stage = "Recurrent"
	StageMetastatic Stage = "Metastatic"
)

var stages = []Stage{StageI, StageII, StageIII, StageIV, StageRecurrent, StageMetastatic}

func parseStage(value string) (Stage, bool) {
	key := strings.TrimSpace(value)
	key = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(key), "stage"))
	if key == "" {
		return StageUnknown, true
	}
	for _, s := range stages {
		if strings.EqualFold(string(s), key) {
			return s, true
		}
	}
	return StageUnknown, false
}

const (
	SexAll    = "All"
	SexFemale = "Female"
	SexMale   = "Male"
)

// DeclarableConditions are the conditions a patient can report. Organ
// dysfunction is trial-side only.
var DeclarableConditions = []criteria.Condition{
	criteria.ConditionBrainMets,
	criteria.ConditionAutoimmune,
	criteria.ConditionPriorImmunotherapy,
	criteria.ConditionHIV,
	criteria.ConditionHepatitis,
}

// Profile is a validated patient. It lives for one search request.
type Profile struct {
	Age            int                  `json:"age"`
	Sex            string               `json:"sex"`
	CancerType     string               `json:"cancer_type"`
	Stage          Stage                `json:"stage,omitempty"`
	ECOG           *int                 `json:"ecog,omitempty"`
	PriorTherapies int                  `json:"prior_therapies_count"`
	Biomarkers     []criteria.Biomarker `json:"biomarkers,omitempty"`
	Conditions     []criteria.Condition `json:"conditions,omitempty"`
	State          string               `json:"state,omitempty"`
	Location       *geo.Point           `json:"location,omitempty"`
}

func (p Profile) HasBiomarker(b criteria.Biomarker) bool {
	return slices.Contains(p.Biomarkers, b)
}

func (p Profile) HasCondition(c criteria.Condition) bool {
	return slices.Contains(p.Conditions, c)
}
