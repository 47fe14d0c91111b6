package criteria

import (
	"bytes"
	"fmt"
	"strings"
)

// TriState distinguishes "excluded" from "explicitly allowed" from "not mentioned".
// Only FlagExcluded ever triggers a hard exclusion.
type TriState int8

const (
	FlagUnknown TriState = iota
	FlagAllowed
	FlagExcluded
)

func (t TriState) String() string {
	switch t {
	case FlagAllowed:
		return "allowed"
	case FlagExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the flag as true (excluded), false (allowed) or null.
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case FlagExcluded:
		return []byte("true"), nil
	case FlagAllowed:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*t = FlagExcluded
	case "false":
		*t = FlagAllowed
	case "null", "":
		*t = FlagUnknown
	default:
		return fmt.Errorf("invalid exclusion flag %s", data)
	}
	return nil
}

func parseTriState(value string) (TriState, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "unknown":
		return FlagUnknown, nil
	case "allowed":
		return FlagAllowed, nil
	case "excluded":
		return FlagExcluded, nil
	}
	return FlagUnknown, fmt.Errorf("unknown flag value %q", value)
}

type Condition string

const (
	ConditionBrainMets          Condition = "brain_mets"
	ConditionPriorImmunotherapy Condition = "prior_immunotherapy"
	ConditionAutoimmune         Condition = "autoimmune"
	ConditionHIV                Condition = "hiv"
	ConditionHepatitis          Condition = "hepatitis"
	ConditionOrganDysfunction   Condition = "organ_dysfunction"
)

// Conditions lists every condition the exclusion check reports on, in report order.
var Conditions = []Condition{
	ConditionBrainMets,
	ConditionPriorImmunotherapy,
	ConditionAutoimmune,
	ConditionHIV,
	ConditionHepatitis,
	ConditionOrganDysfunction,
}

var conditionLabels = map[Condition]string{
	ConditionBrainMets:          "brain metastases",
	ConditionPriorImmunotherapy: "prior immunotherapy",
	ConditionAutoimmune:         "autoimmune disease",
	ConditionHIV:                "HIV",
	ConditionHepatitis:          "hepatitis",
	ConditionOrganDysfunction:   "organ dysfunction",
}

// Label is the human readable name used in exclusion reasons.
func (c Condition) Label() string {
	if label, ok := conditionLabels[c]; ok {
		return label
	}
	return strings.ReplaceAll(string(c), "_", " ")
}

func ParseCondition(value string) (Condition, bool) {
	key := Condition(strings.ToLower(strings.TrimSpace(value)))
	_, ok := conditionLabels[key]
	return key, ok
}

// ExclusionFlags maps each condition to its tri-state. A missing key reads as FlagUnknown.
type ExclusionFlags map[Condition]TriState

func (f ExclusionFlags) Get(c Condition) TriState {
	if f == nil {
		return FlagUnknown
	}
	return f[c]
}

func (f ExclusionFlags) Excludes(c Condition) bool {
	return f.Get(c) == FlagExcluded
}
