// Package profile builds, stores and serves trial eligibility profiles: the
// structured facts extracted from each trial's free-text criteria.
package profile

import (
	"strings"

	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
)

// Profile is a derived view of one trial. It is never edited in place; a
// rebuild replaces every profile at once.
type Profile struct {
	TrialID string   `json:"trial_id"`
	AgeMin  *float64 `json:"age_min"`
	AgeMax  *float64 `json:"age_max"`
	Sex     string   `json:"sex,omitempty"`

	criteria.Facts

	DoseEscalation criteria.DoseEscalation `json:"dose_escalation"`
	Randomization  criteria.Randomization  `json:"randomization"`
	Crossover      criteria.Crossover      `json:"crossover"`
}

// Entry pairs a trial with its profile. Matching needs both: the profile for
// eligibility, the trial for status, phase and sites.
type Entry struct {
	Trial   models.RawTrial `json:"trial"`
	Profile Profile         `json:"profile"`
}

// descriptive joins the fields that describe study design rather than eligibility.
func descriptive(trial models.RawTrial) string {
	parts := make([]string, 0, 3)
	for _, field := range []string{trial.Title, trial.BriefSummary, trial.Description} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, " ")
}
