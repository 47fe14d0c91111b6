package matching

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/synaptica-ai/trialmatch/pkg/geo"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

// Points awarded per signal.
const (
	PointsAgeInRange     = 20
	PointsAgeOutOfRange  = -50
	PointsCancerType     = 30
	PointsConditionField = 40
	PointsBiomarker      = 25
	PointsStage          = 20
	PointsState          = 15
	PointsRecruiting     = 10
)

var (
	metastaticTerm = regexp.MustCompile(`\bmetastatic\b`)
	stageTerms     = map[patient.Stage]*regexp.Regexp{
		patient.StageI:          regexp.MustCompile(`\bstage\s+(?:i|1)[abc]?\b`),
		patient.StageII:         regexp.MustCompile(`\bstage\s+(?:ii|2)[abc]?\b`),
		patient.StageIII:        regexp.MustCompile(`\bstage\s+(?:iii|3)[abc]?\b`),
		patient.StageIV:         regexp.MustCompile(`\bstage\s+(?:iv|4)[abc]?\b`),
		patient.StageRecurrent:  regexp.MustCompile(`\brecurrent\b`),
		patient.StageMetastatic: metastaticTerm,
	}
)

// Score sums the positive and negative evidence that the patient fits the
// trial, with one reason per signal in evaluation order.
func Score(p patient.Profile, e profile.Entry) (int, []string) {
	var (
		score   int
		reasons []string
	)
	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	t := e.Profile
	if t.AgeMin != nil {
		if float64(p.Age) >= *t.AgeMin {
			add(PointsAgeInRange, fmt.Sprintf("Age %d meets minimum age %s", p.Age, years(*t.AgeMin)))
		} else {
			add(PointsAgeOutOfRange, fmt.Sprintf("Age %d is below minimum age %s", p.Age, years(*t.AgeMin)))
		}
	}
	if t.AgeMax != nil {
		if float64(p.Age) <= *t.AgeMax {
			add(PointsAgeInRange, fmt.Sprintf("Age %d within maximum age %s", p.Age, years(*t.AgeMax)))
		} else {
			add(PointsAgeOutOfRange, fmt.Sprintf("Age %d is above maximum age %s", p.Age, years(*t.AgeMax)))
		}
	}

	text := trialText(e)
	if cancer := strings.ToLower(strings.TrimSpace(p.CancerType)); cancer != "" && strings.Contains(text, cancer) {
		add(PointsCancerType, "Cancer type mentioned in trial")
		for _, condition := range e.Trial.Conditions {
			if strings.Contains(strings.ToLower(condition), cancer) {
				add(PointsConditionField, "Cancer type matches listed condition "+condition)
				break
			}
		}
	}

	for _, b := range p.Biomarkers {
		for _, term := range b.SearchTerms() {
			if strings.Contains(text, term) {
				add(PointsBiomarker, b.Label()+" biomarker mentioned in trial")
				break
			}
		}
	}

	if stageMatches(p.Stage, text) {
		add(PointsStage, "Stage "+string(p.Stage)+" matches trial population")
	}

	if p.State != "" && hasSiteInState(e, p.State) {
		add(PointsState, "Trial site in "+p.State)
	}

	if e.Trial.IsRecruiting() {
		add(PointsRecruiting, "Currently recruiting")
	}
	return score, reasons
}

// trialText is the lower-cased text the substring signals search.
func trialText(e profile.Entry) string {
	parts := []string{e.Trial.Title, e.Trial.BriefSummary, e.Trial.EligibilityText}
	parts = append(parts, e.Trial.Conditions...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

func stageMatches(stage patient.Stage, text string) bool {
	if stage == patient.StageUnknown {
		return false
	}
	if re, ok := stageTerms[stage]; ok && re.MatchString(text) {
		return true
	}
	return stage == patient.StageIV && metastaticTerm.MatchString(text)
}

func hasSiteInState(e profile.Entry, code string) bool {
	for _, site := range e.Trial.Sites {
		if s, ok := geo.LookupState(site.State); ok && s.Code == code {
			return true
		}
	}
	return false
}

func years(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
