package matching

import (
	"fmt"
	"strings"

	"github.com/synaptica-ai/trialmatch/pkg/criteria"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

// exclusionRule returns a reason when the patient fails the rule.
type exclusionRule func(p patient.Profile, t profile.Profile) (string, bool)

// exclusionRules run in order and the first failing rule decides.
var exclusionRules = []exclusionRule{
	excludeByCondition,
	excludeByECOG,
	excludeByPriorLines,
	excludeByBiomarkers,
}

// Exclude reports why the patient cannot enroll in the trial, if anything.
func Exclude(p patient.Profile, t profile.Profile) (string, bool) {
	for _, rule := range exclusionRules {
		if reason, excluded := rule(p, t); excluded {
			return reason, true
		}
	}
	return "", false
}

// Only an explicit exclusion counts; allowed and unknown flags both pass.
func excludeByCondition(p patient.Profile, t profile.Profile) (string, bool) {
	for _, c := range patient.DeclarableConditions {
		if p.HasCondition(c) && t.Exclusions.Excludes(c) {
			return c.Label() + " not allowed", true
		}
	}
	return "", false
}

func excludeByECOG(p patient.Profile, t profile.Profile) (string, bool) {
	if p.ECOG == nil || t.EcogMax == nil || *p.ECOG <= *t.EcogMax {
		return "", false
	}
	return fmt.Sprintf("ECOG %d exceeds trial maximum of %d", *p.ECOG, *t.EcogMax), true
}

func excludeByPriorLines(p patient.Profile, t profile.Profile) (string, bool) {
	if p.PriorTherapies <= 0 || t.PriorLinesLimit == nil || p.PriorTherapies <= *t.PriorLinesLimit {
		return "", false
	}
	return fmt.Sprintf("%d prior therapies exceeds trial limit of %d", p.PriorTherapies, *t.PriorLinesLimit), true
}

func excludeByBiomarkers(p patient.Profile, t profile.Profile) (string, bool) {
	var missing []string
	for _, b := range criteria.Biomarkers {
		if t.Biomarkers.Requires(b) && !p.HasBiomarker(b) {
			missing = append(missing, b.Label())
		}
	}
	if len(missing) == 0 {
		return "", false
	}
	return "requires " + strings.Join(missing, ", ") + " biomarker", true
}
