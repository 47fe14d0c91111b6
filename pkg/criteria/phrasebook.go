package criteria

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Phrasebook holds the keyword sets behind the phrase-driven extractors. Every
// list is evaluated in order; where a rule set is first-match-wins the order of
// entries is the precedence.
type Phrasebook struct {
	TreatmentLines   []TreatmentLineRule `yaml:"treatment_lines" json:"treatment_lines"`
	Exclusions       []ExclusionRule     `yaml:"exclusions" json:"exclusions"`
	RequiredTests    []TestRule          `yaml:"required_tests" json:"required_tests"`
	DoseEscalation   []string            `yaml:"dose_escalation" json:"dose_escalation"`
	Expansion        []string            `yaml:"expansion" json:"expansion"`
	CrossoverAllowed []string            `yaml:"crossover_allowed" json:"crossover_allowed"`
	CrossoverDenied  []string            `yaml:"crossover_denied" json:"crossover_denied"`
}

type TreatmentLineRule struct {
	Line    Line     `yaml:"line" json:"line"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// ExclusionRule describes one condition. Excluded phrases are searched in the
// exclusion section, Allowed phrases in the full text. AllowedFirst makes an
// explicit allowance override any excluded phrase.
type ExclusionRule struct {
	Condition    Condition `yaml:"condition" json:"condition"`
	Excluded     []string  `yaml:"excluded" json:"excluded"`
	Allowed      []string  `yaml:"allowed,omitempty" json:"allowed,omitempty"`
	AllowedFirst bool      `yaml:"allowed_first,omitempty" json:"allowed_first,omitempty"`
	Default      string    `yaml:"default" json:"default"` // unknown | allowed
}

// TestRule is one required-test category. Rules sharing a Group are mutually
// exclusive: only the first matching rule of the group is reported.
type TestRule struct {
	Name    string   `yaml:"name" json:"name"`
	Group   string   `yaml:"group,omitempty" json:"group,omitempty"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// LoadPhrasebook reads a YAML override. Sections missing from the file keep
// their defaults.
func LoadPhrasebook(path string) (Phrasebook, error) {
	if path == "" {
		return DefaultPhrasebook(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultPhrasebook(), err
	}

	book := DefaultPhrasebook()
	if err := yaml.Unmarshal(content, &book); err != nil {
		return Phrasebook{}, err
	}
	if err := book.Validate(); err != nil {
		return Phrasebook{}, err
	}
	return book, nil
}

func (b Phrasebook) Validate() error {
	if len(b.TreatmentLines) == 0 {
		return errors.New("phrasebook has no treatment line rules")
	}
	for _, rule := range b.TreatmentLines {
		if !rule.Line.valid() {
			return fmt.Errorf("phrasebook: unknown treatment line %q", rule.Line)
		}
	}
	for _, rule := range b.Exclusions {
		if _, ok := conditionLabels[rule.Condition]; !ok {
			return fmt.Errorf("phrasebook: unknown condition %q", rule.Condition)
		}
		if _, err := parseTriState(rule.Default); err != nil {
			return fmt.Errorf("phrasebook: condition %s: %w", rule.Condition, err)
		}
	}
	for _, rule := range b.RequiredTests {
		if rule.Name == "" || len(rule.Phrases) == 0 {
			return errors.New("phrasebook: required test rules need a name and phrases")
		}
	}
	return nil
}

func DefaultPhrasebook() Phrasebook {
	return Phrasebook{
		TreatmentLines: []TreatmentLineRule{
			{Line: LineFirst, Phrases: []string{
				"treatment naive", "treatment-naive", "no prior systemic",
				"first-line", "first line", "previously untreated",
			}},
			{Line: LineSecond, Phrases: []string{
				"second-line", "second line", "2nd line", "one prior", "1 prior", "failed first",
			}},
			{Line: LineThirdPlus, Phrases: []string{
				"third-line", "third line", "3rd line", "two or more prior", ">=2 prior", "≥2 prior",
				"heavily pretreated", "relapsed or refractory", "salvage",
			}},
			{Line: LinePreviouslyTreated, Phrases: []string{
				"previously treated", "prior therapy", "prior treatment", "received prior",
			}},
		},
		Exclusions: []ExclusionRule{
			{
				Condition:    ConditionBrainMets,
				AllowedFirst: true,
				Allowed: []string{
					"brain metastases allowed", "treated brain mets allowed",
					"stable brain metastases allowed", "brain mets treated",
				},
				Excluded: []string{
					"brain metastases", "brain mets", "cns metastases",
					"central nervous system metastases", "untreated brain",
				},
				Default: "unknown",
			},
			{
				Condition: ConditionPriorImmunotherapy,
				Excluded: []string{
					"prior pd-1", "prior pd-l1", "prior immune checkpoint", "prior immunotherapy",
					"previous anti-pd", "prior checkpoint inhibitor", "previous immunotherapy",
					"prior immune", "prior treatment with pd-1", "prior treatment with pd-l1",
					"previous pd-1", "previous pd-l1",
				},
				Allowed: []string{"prior immunotherapy allowed", "previous immunotherapy permitted"},
				Default: "allowed",
			},
			{
				Condition: ConditionAutoimmune,
				Excluded:  []string{"autoimmune disease", "autoimmune disorder", "active autoimmune"},
				Default:   "allowed",
			},
			{
				Condition: ConditionHIV,
				Excluded:  []string{"hiv", "human immunodeficiency virus"},
				Default:   "allowed",
			},
			{
				Condition: ConditionHepatitis,
				Excluded:  []string{"hepatitis", "hbv", "hcv"},
				Default:   "allowed",
			},
			{
				Condition: ConditionOrganDysfunction,
				Excluded: []string{
					"organ dysfunction", "hepatic impairment", "renal impairment", "cardiac dysfunction",
				},
				Default: "allowed",
			},
		},
		RequiredTests: []TestRule{
			{Name: "Fresh tumor biopsy", Group: "tissue", Phrases: []string{"tissue biopsy", "fresh biopsy", "tumor biopsy required"}},
			{Name: "Archival tissue", Group: "tissue", Phrases: []string{"archival tissue", "archived tissue", "ffpe"}},
			{Name: "PET scan", Phrases: []string{"pet scan", "pet-ct", "fdg-pet"}},
			{Name: "Brain MRI", Phrases: []string{"mri brain", "brain mri", "mri of the brain"}},
			{Name: "CT scan", Phrases: []string{"ct scan", "computed tomography"}},
			{Name: "Cardiac function test (Echo/MUGA)", Phrases: []string{"echocardiogram", "echo", "muga scan", "lvef"}},
			{Name: "Bone marrow biopsy", Phrases: []string{"bone marrow biopsy", "bone marrow aspirate", "bone marrow aspiration"}},
			{Name: "Liquid biopsy (ctDNA)", Phrases: []string{"liquid biopsy", "ctdna", "circulating tumor dna"}},
			{Name: "Genomic profiling/NGS", Phrases: []string{"molecular testing", "genomic profiling", "next-generation sequencing", "ngs"}},
		},
		DoseEscalation: []string{
			"dose escalation", "dose-escalation", "3+3 design", "mtd", "maximum tolerated dose",
			"dose finding", "dose-finding", "phase 1a", "phase ia",
		},
		Expansion: []string{
			"expansion cohort", "expansion phase", "dose expansion", "phase 1b", "phase ib",
			"recommended phase 2 dose", "rp2d", "expansion arm",
		},
		CrossoverAllowed: []string{
			"crossover allowed", "cross-over allowed", "may crossover", "may cross over",
			"crossover to", "cross over to", "switch to active", "unblinding",
		},
		CrossoverDenied: []string{
			"no crossover", "crossover not", "not allowed to cross", "no cross-over",
		},
	}
}
