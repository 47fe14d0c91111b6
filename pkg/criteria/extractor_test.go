package criteria

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const egfrCriteria = "Inclusion Criteria:\n- Age 18 years or older\n- EGFR exon 19 deletion\nExclusion Criteria:\n- Untreated brain metastases\n- Prior EGFR TKI therapy"

func TestExtractEGFRCriteria(t *testing.T) {
	facts := Extract(egfrCriteria)

	assert.Equal(t, "- Age 18 years or older\n- EGFR exon 19 deletion", facts.InclusionText)
	assert.Equal(t, "- Untreated brain metastases\n- Prior EGFR TKI therapy", facts.ExclusionText)
	assert.Equal(t, []string{"Age 18 years or older", "EGFR exon 19 deletion"}, facts.InclusionTerms)
	assert.Equal(t, []string{"Untreated brain metastases", "Prior EGFR TKI therapy"}, facts.ExclusionTerms)

	assert.Equal(t, BiomarkerRequirements{EGFRMutation: true, EGFRVariant: "Exon 19 deletion"}, facts.Biomarkers)
	assert.Equal(t, []Biomarker{BiomarkerEGFR}, facts.Biomarkers.Required())

	assert.Equal(t, FlagExcluded, facts.Exclusions.Get(ConditionBrainMets))
	assert.Equal(t, FlagAllowed, facts.Exclusions.Get(ConditionHIV))
	assert.Nil(t, facts.EcogMax)
	assert.Nil(t, facts.PriorLinesLimit)
	assert.Equal(t, LineAny, facts.TreatmentLine.Line)
}

func TestExtractIsTotalOnEmptyInput(t *testing.T) {
	facts := Extract("")

	assert.Empty(t, facts.InclusionText)
	assert.Empty(t, facts.ExclusionTerms)
	assert.True(t, facts.Biomarkers.IsEmpty())
	assert.Empty(t, facts.Exclusions)
	assert.Equal(t, FlagUnknown, facts.Exclusions.Get(ConditionBrainMets))
	assert.Equal(t, LineUnknown, facts.TreatmentLine.Line)
	assert.Nil(t, facts.RequiredTests)
	assert.Nil(t, facts.StageTerms)
}

func TestExtractIsDeterministic(t *testing.T) {
	inputs := []string{egfrCriteria, "", "@@@ \x00 ≥≥≥ 12-", "Exclusion Criteria:"}
	for _, input := range inputs {
		assert.Equal(t, Extract(input), Extract(input), "input %q", input)
	}
}

func TestExtractTermsNeedHeaders(t *testing.T) {
	facts := Extract("- Adults with metastatic NSCLC\n- Measurable disease per RECIST")
	assert.Nil(t, facts.InclusionTerms)
	assert.Nil(t, facts.ExclusionTerms)
	assert.Equal(t, []string{"metastatic"}, facts.StageTerms)
}

func TestLoadPhrasebookOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrasebook.yaml")
	content := "treatment_lines:\n  - line: 1st line\n    phrases: [\"frontline\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	book, err := LoadPhrasebook(path)
	require.NoError(t, err)
	require.Len(t, book.TreatmentLines, 1)
	assert.Equal(t, DefaultPhrasebook().Exclusions, book.Exclusions)

	extractor := NewExtractor(book)
	assert.Equal(t, LineFirst, extractor.TreatmentLine("Frontline therapy for adults").Line)
	assert.Equal(t, LineAny, extractor.TreatmentLine("heavily pretreated").Line)
}

func TestLoadPhrasebookRejectsUnknownValues(t *testing.T) {
	dir := t.TempDir()

	badLine := filepath.Join(dir, "line.yaml")
	require.NoError(t, os.WriteFile(badLine, []byte("treatment_lines:\n  - line: 9th line\n    phrases: [x]\n"), 0o600))
	_, err := LoadPhrasebook(badLine)
	assert.Error(t, err)

	badDefault := filepath.Join(dir, "default.yaml")
	require.NoError(t, os.WriteFile(badDefault, []byte("exclusions:\n  - condition: hiv\n    excluded: [hiv]\n    default: maybe\n"), 0o600))
	_, err = LoadPhrasebook(badDefault)
	assert.Error(t, err)

	_, err = LoadPhrasebook(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	book, err := LoadPhrasebook("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPhrasebook(), book)
}
