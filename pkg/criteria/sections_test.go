package criteria

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSections(t *testing.T) {
	inclusion, exclusion := SplitSections(egfrCriteria)
	assert.NotEmpty(t, inclusion)
	assert.NotEmpty(t, exclusion)
	assert.NotContains(t, inclusion, "brain")

	inclusion, exclusion = SplitSections("Adults with solid tumors")
	assert.Equal(t, "Adults with solid tumors", inclusion)
	assert.Empty(t, exclusion)

	inclusion, exclusion = SplitSections("EXCLUSION CRITERIA\n- Pregnancy or lactation")
	assert.Empty(t, inclusion)
	assert.Equal(t, "- Pregnancy or lactation", exclusion)

	inclusion, exclusion = SplitSections("")
	assert.Empty(t, inclusion)
	assert.Empty(t, exclusion)
}

func TestExtractListItems(t *testing.T) {
	text := "- Histologically confirmed NSCLC\n• Short one\n  * Measurable disease per RECIST 1.1\n1. Adequate hepatic function\n2) Life expectancy of 12 weeks"
	assert.Equal(t, []string{
		"Histologically confirmed NSCLC",
		"Measurable disease per RECIST 1.1",
		"Adequate hepatic function",
		"Life expectancy of 12 weeks",
	}, ExtractListItems(text))

	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("- a criterion long enough to keep\n")
	}
	assert.Len(t, ExtractListItems(b.String()), MaxListItems)

	assert.Nil(t, ExtractListItems("   "))
}

func TestDiseaseStageTerms(t *testing.T) {
	text := "Stage IIIB or Stage IV, metastatic or locally   advanced; METASTATIC recurrent"
	assert.Equal(t, []string{
		"stage iiib", "stage iv", "metastatic", "locally advanced", "advanced", "recurrent",
	}, DiseaseStageTerms(text))
	assert.Nil(t, DiseaseStageTerms(""))

	crowded := "Stage IA, stage IB, stage IIA, stage IIB, stage IIIA, stage IIIB, stage IIIC, " +
		"stage IVA, stage IVB, stage IVC, stage IA again, metastatic or recurrent disease"
	stages := DiseaseStageTerms(crowded)
	assert.Len(t, stages, MaxStageTerms)
	assert.Equal(t, []string{
		"stage ia", "stage ib", "stage iia", "stage iib", "stage iiia",
		"stage iiib", "stage iiic", "stage iva", "stage ivb", "stage ivc",
	}, stages)
}
