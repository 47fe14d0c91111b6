// Package criteria turns free-text trial eligibility criteria into structured
// facts. Every function is total: empty or malformed text yields the zero
// answer, never an error.
package criteria

// Extractor runs the phrase-driven rules of one Phrasebook. The numeric and
// regex extractors are package functions since they carry no configuration.
type Extractor struct {
	book Phrasebook
}

func NewExtractor(book Phrasebook) *Extractor {
	return &Extractor{book: book}
}

var defaultExtractor = NewExtractor(DefaultPhrasebook())

// Default returns an extractor over the built-in phrasebook.
func Default() *Extractor {
	return defaultExtractor
}

// Facts is everything the eligibility text says about who may enroll.
type Facts struct {
	InclusionText   string                `json:"inclusion_text,omitempty"`
	ExclusionText   string                `json:"exclusion_text,omitempty"`
	InclusionTerms  []string              `json:"inclusion_terms,omitempty"`
	ExclusionTerms  []string              `json:"exclusion_terms,omitempty"`
	Biomarkers      BiomarkerRequirements `json:"biomarker_requirements"`
	EcogMax         *int                  `json:"ecog_max"`
	PriorLinesLimit *int                  `json:"prior_lines_limit"`
	WashoutPeriod   string                `json:"washout_period,omitempty"`
	RequiredTests   []string              `json:"required_tests,omitempty"`
	Exclusions      ExclusionFlags        `json:"exclusion_flags"`
	TreatmentLine   TreatmentLine         `json:"treatment_line"`
	StageTerms      []string              `json:"disease_stage_terms,omitempty"`
}

// Extract runs every extractor over one eligibility text. Inclusion and
// exclusion terms are only listed when the text carries section headers.
func (e *Extractor) Extract(text string) Facts {
	inclusion, exclusion, found := splitSections(text)
	facts := Facts{
		InclusionText:   inclusion,
		ExclusionText:   exclusion,
		Biomarkers:      ParseBiomarkerRequirements(text),
		EcogMax:         ParseEcogRequirement(text),
		PriorLinesLimit: ParsePriorLinesLimit(text),
		WashoutPeriod:   ParseWashoutPeriod(text),
		RequiredTests:   e.RequiredTests(text),
		Exclusions:      e.CommonExclusions(text),
		TreatmentLine:   e.TreatmentLine(text),
		StageTerms:      DiseaseStageTerms(text),
	}
	if found {
		facts.InclusionTerms = ExtractListItems(inclusion)
		facts.ExclusionTerms = ExtractListItems(exclusion)
	}
	return facts
}

func Extract(text string) Facts {
	return defaultExtractor.Extract(text)
}
