package criteria

import (
	"regexp"
	"strings"
)

// Biomarker is a patient-facing biomarker tag.
type Biomarker string

const (
	BiomarkerEGFR Biomarker = "egfr"
	BiomarkerALK  Biomarker = "alk"
	BiomarkerROS1 Biomarker = "ros1"
	BiomarkerHER2 Biomarker = "her2"
	BiomarkerPDL1 Biomarker = "pdl1"
	BiomarkerBRCA Biomarker = "brca"
	BiomarkerMSI  Biomarker = "msi"
	BiomarkerTMB  Biomarker = "tmb"
	BiomarkerIDH  Biomarker = "idh"
	BiomarkerMGMT Biomarker = "mgmt"
)

// Biomarkers is the fixed catalog, in the order exclusion reasons list them.
var Biomarkers = []Biomarker{
	BiomarkerEGFR, BiomarkerALK, BiomarkerROS1, BiomarkerHER2, BiomarkerPDL1,
	BiomarkerBRCA, BiomarkerMSI, BiomarkerTMB, BiomarkerIDH, BiomarkerMGMT,
}

var biomarkerInfo = map[Biomarker]struct {
	label string
	terms []string
}{
	BiomarkerEGFR: {"EGFR", []string{"egfr"}},
	BiomarkerALK:  {"ALK", []string{"alk"}},
	BiomarkerROS1: {"ROS1", []string{"ros1"}},
	BiomarkerHER2: {"HER2", []string{"her2"}},
	BiomarkerPDL1: {"PD-L1", []string{"pd-l1", "pdl1"}},
	BiomarkerBRCA: {"BRCA", []string{"brca"}},
	BiomarkerMSI:  {"MSI-H/dMMR", []string{"msi", "dmmr", "mismatch repair"}},
	BiomarkerTMB:  {"TMB", []string{"tmb", "tumor mutational burden"}},
	BiomarkerIDH:  {"IDH", []string{"idh"}},
	BiomarkerMGMT: {"MGMT", []string{"mgmt"}},
}

func (b Biomarker) Label() string {
	if info, ok := biomarkerInfo[b]; ok {
		return info.label
	}
	return strings.ToUpper(string(b))
}

// SearchTerms are the lower-case spellings under which the biomarker appears in trial text.
func (b Biomarker) SearchTerms() []string {
	if info, ok := biomarkerInfo[b]; ok {
		return info.terms
	}
	return []string{string(b)}
}

func ParseBiomarker(value string) (Biomarker, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.NewReplacer("-", "", " ", "").Replace(key)
	b := Biomarker(key)
	_, ok := biomarkerInfo[b]
	return b, ok
}

// BiomarkerRequirements are the biomarker gates a trial states. Cutoffs keep the
// comparison operator as written, e.g. "≥50%" or ">10".
type BiomarkerRequirements struct {
	PDL1Cutoff        string `json:"pdl1_cutoff,omitempty"`
	PDL1Required      bool   `json:"pdl1_required,omitempty"`
	HER2Status        string `json:"her2_status,omitempty"`
	EGFRMutation      bool   `json:"egfr_mutation,omitempty"`
	EGFRVariant       string `json:"egfr_specific,omitempty"`
	ALKRearrangement  bool   `json:"alk_rearrangement,omitempty"`
	ROS1Rearrangement bool   `json:"ros1_rearrangement,omitempty"`
	BRCAMutation      bool   `json:"brca_mutation,omitempty"`
	MSIStatus         string `json:"msi_status,omitempty"`
	MMRStatus         string `json:"mmr_status,omitempty"`
	TMBCutoff         string `json:"tmb_cutoff,omitempty"`
	IDHMutation       bool   `json:"idh_mutation,omitempty"`
	MGMTMethylated    bool   `json:"mgmt_methylated,omitempty"`
}

func (r BiomarkerRequirements) IsEmpty() bool {
	return r == BiomarkerRequirements{}
}

// Requires reports whether the trial gates enrollment on the biomarker. A bare
// PD-L1 mention without a cutoff and a HER2-negative requirement are not gates
// a patient's positive biomarker list can satisfy, so they do not count.
func (r BiomarkerRequirements) Requires(b Biomarker) bool {
	switch b {
	case BiomarkerEGFR:
		return r.EGFRMutation
	case BiomarkerALK:
		return r.ALKRearrangement
	case BiomarkerROS1:
		return r.ROS1Rearrangement
	case BiomarkerHER2:
		return r.HER2Status == HER2Positive
	case BiomarkerPDL1:
		return r.PDL1Cutoff != ""
	case BiomarkerBRCA:
		return r.BRCAMutation
	case BiomarkerMSI:
		return r.MSIStatus != "" || r.MMRStatus != ""
	case BiomarkerTMB:
		return r.TMBCutoff != ""
	case BiomarkerIDH:
		return r.IDHMutation
	case BiomarkerMGMT:
		return r.MGMTMethylated
	}
	return false
}

// Required lists the gated biomarkers in catalog order.
func (r BiomarkerRequirements) Required() []Biomarker {
	var out []Biomarker
	for _, b := range Biomarkers {
		if r.Requires(b) {
			out = append(out, b)
		}
	}
	return out
}

const (
	HER2Positive = "Positive"
	HER2Negative = "Negative"
)

var (
	pdl1CutoffPattern = regexp.MustCompile(`pd-?l1.*?([≥>=]+)\s*(\d+)\s*%`)
	tmbCutoffPattern  = regexp.MustCompile(`tmb.*?([≥>=]+)\s*(\d+)`)

	her2PositivePhrases = []string{"her2+", "her2 positive", "her2-positive"}
	her2NegativePhrases = []string{"her2-", "her2 negative", "her2-negative"}
	egfrPhrases         = []string{"egfr mutation", "egfr-mutant", "egfr mutant", "egfr+", "exon 19", "l858r", "t790m"}
	alkPhrases          = []string{"alk+", "alk positive", "alk-positive", "alk rearrangement", "alk fusion"}
	ros1Phrases         = []string{"ros1+", "ros1 positive", "ros1-positive", "ros1 rearrangement", "ros1 fusion"}
	brcaPhrases         = []string{"brca1", "brca2", "brca mutation", "brca+"}
	msiPhrases          = []string{"msi-h", "msi-high", "microsatellite instability-high", "microsatellite instability high", "msi high"}
	mmrPhrases          = []string{"dmmr", "mmr deficient", "mmr-deficient", "mismatch repair deficient"}
	idhPhrases          = []string{"idh1", "idh2", "idh mutation", "idh-mutant", "idh mutant"}
	mgmtPhrases         = []string{"mgmt methylated", "mgmt methylation", "mgmt promoter methylated", "mgmt promoter methylation"}

	egfrVariants = []struct{ phrase, variant string }{
		{"exon 19", "Exon 19 deletion"},
		{"l858r", "L858R"},
		{"t790m", "T790M"},
	}
)

// ParseBiomarkerRequirements scans the whole criteria text for the catalog's gates.
func ParseBiomarkerRequirements(text string) BiomarkerRequirements {
	var req BiomarkerRequirements
	if text == "" {
		return req
	}
	lower := normalize(text)

	if m := pdl1CutoffPattern.FindStringSubmatch(lower); m != nil {
		req.PDL1Cutoff = m[1] + m[2] + "%"
	} else if strings.Contains(lower, "pd-l1") || strings.Contains(lower, "pdl1") {
		req.PDL1Required = true
	}

	switch {
	case containsAny(lower, her2PositivePhrases):
		req.HER2Status = HER2Positive
	case containsAny(lower, her2NegativePhrases):
		req.HER2Status = HER2Negative
	}

	if containsAny(lower, egfrPhrases) {
		req.EGFRMutation = true
		for _, v := range egfrVariants {
			if containsPhrase(lower, v.phrase) {
				req.EGFRVariant = v.variant
				break
			}
		}
	}

	req.ALKRearrangement = containsAny(lower, alkPhrases)
	req.ROS1Rearrangement = containsAny(lower, ros1Phrases)
	req.BRCAMutation = containsAny(lower, brcaPhrases)

	switch {
	case containsAny(lower, msiPhrases):
		req.MSIStatus = "MSI-High"
	case containsAny(lower, mmrPhrases):
		req.MMRStatus = "Deficient"
	}

	if m := tmbCutoffPattern.FindStringSubmatch(lower); m != nil {
		req.TMBCutoff = m[1] + m[2]
	}

	req.IDHMutation = containsAny(lower, idhPhrases)
	req.MGMTMethylated = containsAny(lower, mgmtPhrases)
	return req
}
