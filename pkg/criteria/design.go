package criteria

import (
	"regexp"
	"strings"
)

const (
	CohortDoseEscalation = "Dose Escalation"
	CohortExpansion      = "Expansion Cohort"
	CohortBoth           = "Dose Escalation + Expansion"

	allocationRandomized = "RANDOMIZED"
	defaultMasking       = "None"
)

var (
	doseLevelPattern = regexp.MustCompile(`dose level (\d+)`)
	ratioPattern     = regexp.MustCompile(`(\d+:\d+(?::\d+)*)\s*(?:ratio|randomization)`)
	commonRatios     = []string{"1:1", "2:1", "3:1"}
)

type DoseEscalation struct {
	IsDoseEscalation bool   `json:"is_dose_escalation"`
	IsExpansion      bool   `json:"is_expansion"`
	CohortType       string `json:"cohort_type,omitempty"`
	DoseLevel        string `json:"dose_level,omitempty"`
}

type Randomization struct {
	IsRandomized bool   `json:"is_randomized"`
	Ratio        string `json:"randomization_ratio,omitempty"`
	Allocation   string `json:"allocation,omitempty"`
	Masking      string `json:"masking,omitempty"`
}

type Crossover struct {
	Allowed *bool  `json:"crossover_allowed"`
	Details string `json:"crossover_details,omitempty"`
}

// DoseEscalation classifies the cohort from the trial's descriptive text
// (title, summary and description joined).
func (e *Extractor) DoseEscalation(descriptive string) DoseEscalation {
	var info DoseEscalation
	if descriptive == "" {
		return info
	}
	lower := normalize(descriptive)

	if containsAny(lower, e.book.DoseEscalation) {
		info.IsDoseEscalation = true
		info.CohortType = CohortDoseEscalation
		if m := doseLevelPattern.FindStringSubmatch(lower); m != nil {
			info.DoseLevel = "Level " + m[1]
		}
	}
	if containsAny(lower, e.book.Expansion) {
		info.IsExpansion = true
		info.CohortType = CohortExpansion
		if info.IsDoseEscalation {
			info.CohortType = CohortBoth
		}
	}
	return info
}

// ParseRandomization reads the registry's allocation field. Only an allocation
// of exactly "Randomized" counts, so "Non-Randomized" stays false.
func ParseRandomization(allocation, masking, description string) Randomization {
	var info Randomization
	if !strings.EqualFold(strings.TrimSpace(allocation), allocationRandomized) {
		return info
	}
	info.IsRandomized = true
	info.Allocation = allocation
	info.Masking = masking
	if info.Masking == "" {
		info.Masking = defaultMasking
	}
	if description == "" {
		return info
	}
	if m := ratioPattern.FindStringSubmatch(strings.ToLower(description)); m != nil {
		info.Ratio = m[1]
		return info
	}
	for _, ratio := range commonRatios {
		if strings.Contains(description, ratio) {
			info.Ratio = ratio
			break
		}
	}
	return info
}

// Crossover looks for crossover language in the eligibility and descriptive
// text. A denial wins over an allowance phrase, since "no crossover to the
// experimental arm" would otherwise read as allowed.
func (e *Extractor) Crossover(texts ...string) Crossover {
	lower := normalize(strings.Join(texts, " "))
	switch {
	case containsAny(lower, e.book.CrossoverDenied):
		denied := false
		return Crossover{Allowed: &denied, Details: "No crossover allowed"}
	case containsAny(lower, e.book.CrossoverAllowed):
		allowed := true
		return Crossover{Allowed: &allowed, Details: "Crossover to active treatment allowed"}
	}
	return Crossover{}
}
