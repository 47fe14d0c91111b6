package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestParsePriorLinesLimit(t *testing.T) {
	cases := []struct {
		text string
		want any
	}{
		{"No more than 3 prior lines of therapy", 3},
		{"Maximum 2 prior systemic therapies", 2},
		{"Patients with relapsed disease", nil},
		{"Received 1-2 prior therapies for metastatic disease", 2},
		{"Progression after 1–3 prior regimens", 3},
		{"≤2 prior lines of chemotherapy", 2},
		{"Received <= 3 prior regimens", 3},
		{"Patients must have received >=2 prior lines of systemic therapy", nil},
		{"≥2 prior lines of therapy", nil},
		{"Inclusion Criteria:\n- Patients must have received >=2 prior lines of systemic therapy\nExclusion Criteria:\n- Pregnancy or lactation", nil},
		{"Inclusion Criteria:\n- Adults\nExclusion Criteria:\n- More than 3 prior regimens", 3},
		{"Inclusion Criteria:\n- Adults\nExclusion Criteria:\n- >4 prior lines", 4},
		// "more than" phrasings only count inside the exclusion section
		{"Patients who received more than 3 prior regimens are eligible", nil},
		{"", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, intValue(ParsePriorLinesLimit(tc.text)), tc.text)
	}
}

func TestParseWashoutPeriod(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"At least 4 weeks since prior therapy", "4 weeks"},
		{"Washout period of 14 days from any investigational agent", "14 days"},
		{"A 3 week washout is required", "3 weeks"},
		{"Washout of 2 weeks, or 14 days for small molecules", "2 weeks"},
		{"Adequate organ function", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseWashoutPeriod(tc.text), tc.text)
	}
}

func TestParseEcogRequirement(t *testing.T) {
	cases := []struct {
		text string
		want any
	}{
		{"ECOG performance status ≤ 2", 2},
		{"ECOG 0-1", 1},
		{"ECOG performance status of 0 or 1", 1},
		{"ECOG PS 0-2", 2},
		{"ECOG <=1", 1},
		{"ECOG 0, 1", 1},
		{"ECOG 0, 1, 2", 2},
		{"Karnofsky ≥ 70", nil},
		{"", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, intValue(ParseEcogRequirement(tc.text)), tc.text)
	}
}
