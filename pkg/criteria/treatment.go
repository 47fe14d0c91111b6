package criteria

type Line string

const (
	LineFirst             Line = "1st line"
	LineSecond            Line = "2nd line"
	LineThirdPlus         Line = "3rd+ line"
	LinePreviouslyTreated Line = "Previously treated"
	LineAny               Line = "Any line"
	LineUnknown           Line = "Unknown"
)

func (l Line) valid() bool {
	switch l {
	case LineFirst, LineSecond, LineThirdPlus, LinePreviouslyTreated, LineAny, LineUnknown:
		return true
	}
	return false
}

// RequiresPriorTherapy is true for every line that presumes earlier treatment.
func (l Line) RequiresPriorTherapy() bool {
	switch l {
	case LineSecond, LineThirdPlus, LinePreviouslyTreated:
		return true
	}
	return false
}

type TreatmentLine struct {
	Line                  Line `json:"treatment_line"`
	PriorTherapyRequired  bool `json:"prior_therapy_required"`
	TreatmentNaiveAllowed bool `json:"treatment_naive_allowed"`
}

func newTreatmentLine(line Line) TreatmentLine {
	prior := line.RequiresPriorTherapy()
	return TreatmentLine{Line: line, PriorTherapyRequired: prior, TreatmentNaiveAllowed: !prior}
}

// TreatmentLine classifies the text by the first rule whose phrases appear,
// defaulting to "Any line"; empty text yields "Unknown".
func (e *Extractor) TreatmentLine(text string) TreatmentLine {
	if text == "" {
		return newTreatmentLine(LineUnknown)
	}
	lower := normalize(text)
	for _, rule := range e.book.TreatmentLines {
		if containsAny(lower, rule.Phrases) {
			return newTreatmentLine(rule.Line)
		}
	}
	return newTreatmentLine(LineAny)
}
