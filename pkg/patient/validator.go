// Package patient turns raw search form input into a validated Profile.
package patient

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/synaptica-ai/trialmatch/pkg/criteria"
	"github.com/synaptica-ai/trialmatch/pkg/geo"
)

const (
	MaxAge            = 120
	MaxECOG           = 4
	MaxPriorTherapies = 20

	cancerTypeMaxLength = 100
	cancerTypeMinLength = 3
)

var nctPattern = regexp.MustCompile(`^NCT\d{8}$`)

// Form is the raw patient input as submitted. Numbers arrive as text so that
// malformed values can be reported instead of silently coerced.
type Form struct {
	Age            string   `json:"age"`
	Sex            string   `json:"sex,omitempty"`
	CancerType     string   `json:"cancer_type"`
	Stage          string   `json:"stage,omitempty"`
	ECOG           string   `json:"ecog,omitempty"`
	PriorTherapies string   `json:"prior_therapies_count,omitempty"`
	Biomarkers     []string `json:"biomarkers,omitempty"`
	Conditions     []string `json:"conditions,omitempty"`
	State          string   `json:"state,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

type Validator struct {
	maxTextLength int
}

func NewValidator(maxTextLength int) *Validator {
	if maxTextLength <= 0 {
		maxTextLength = 500
	}
	return &Validator{maxTextLength: maxTextLength}
}

// Validate checks every field and returns all problems joined together, so a
// form can be corrected in one round trip.
func (v *Validator) Validate(form Form) (Profile, error) {
	var (
		profile Profile
		errs    []error
	)
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	age, err := ValidateAge(form.Age)
	check(err)
	profile.Age = age

	profile.Sex, err = validateSex(form.Sex)
	check(err)

	profile.CancerType, err = v.validateCancerType(form.CancerType)
	check(err)

	stage, ok := parseStage(form.Stage)
	if !ok {
		check(invalid("stage", "stage must be one of I, II, III, IV, Recurrent, Metastatic"))
	}
	profile.Stage = stage

	profile.ECOG, err = ValidateECOG(form.ECOG)
	check(err)

	profile.PriorTherapies, err = ValidatePriorTherapies(form.PriorTherapies)
	check(err)

	profile.Biomarkers, err = validateBiomarkers(form.Biomarkers)
	check(err)

	profile.Conditions, err = validateConditions(form.Conditions)
	check(err)

	state, err := ValidateState(form.State)
	check(err)
	profile.State = state.Code

	switch {
	case form.Latitude != nil && form.Longitude != nil:
		if *form.Latitude < -90 || *form.Latitude > 90 || *form.Longitude < -180 || *form.Longitude > 180 {
			check(invalid("location", "coordinates out of range"))
		} else {
			profile.Location = &geo.Point{Latitude: *form.Latitude, Longitude: *form.Longitude}
		}
	case state.Code != "":
		point := state.Point()
		profile.Location = &point
	}

	if len(errs) > 0 {
		return Profile{}, errors.Join(errs...)
	}
	return profile, nil
}

func ValidateAge(value string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, invalid("age", "invalid age format")
	}
	if age < 0 || age > MaxAge {
		return 0, invalid("age", fmt.Sprintf("age must be between 0 and %d", MaxAge))
	}
	return age, nil
}

// ValidateECOG accepts an empty value as "not assessed".
func ValidateECOG(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	ecog, err := strconv.Atoi(value)
	if err != nil {
		return nil, invalid("ecog", "invalid ECOG format")
	}
	if ecog < 0 || ecog > MaxECOG {
		return nil, invalid("ecog", fmt.Sprintf("ECOG must be between 0 and %d", MaxECOG))
	}
	return &ecog, nil
}

func ValidatePriorTherapies(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalid("prior_therapies_count", "invalid number format")
	}
	if n < 0 || n > MaxPriorTherapies {
		return 0, invalid("prior_therapies_count", fmt.Sprintf("number of prior therapies must be between 0 and %d", MaxPriorTherapies))
	}
	return n, nil
}

// ValidateState resolves a two-letter code or full name. Empty input is valid
// and yields the zero State.
func ValidateState(value string) (geo.State, error) {
	if strings.TrimSpace(value) == "" {
		return geo.State{}, nil
	}
	state, ok := geo.LookupState(value)
	if !ok {
		return geo.State{}, invalid("state", "please enter a valid US state (e.g., CA or California)")
	}
	return state, nil
}

// ValidateNCTID normalizes a registry identifier to upper case.
func ValidateNCTID(value string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(value))
	if !nctPattern.MatchString(id) {
		return "", invalid("nct_id", "NCT ID must be in format NCT12345678 (NCT followed by 8 digits)")
	}
	return id, nil
}

func validateSex(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return SexAll, nil
	case "female", "f":
		return SexFemale, nil
	case "male", "m":
		return SexMale, nil
	}
	return "", invalid("sex", "sex must be Female, Male or All")
}

func (v *Validator) validateCancerType(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", invalid("cancer_type", "cancer type is required")
	}
	clean := Sanitize(value, min(cancerTypeMaxLength, v.maxTextLength))
	if utf8.RuneCountInString(clean) < cancerTypeMinLength {
		return "", invalid("cancer_type", fmt.Sprintf("cancer type must be at least %d characters", cancerTypeMinLength))
	}
	return clean, nil
}

// SanitizeText applies the validator's configured length limit.
func (v *Validator) SanitizeText(text string) string {
	return Sanitize(text, v.maxTextLength)
}

func validateBiomarkers(values []string) ([]criteria.Biomarker, error) {
	seen := make(map[criteria.Biomarker]struct{}, len(values))
	var unknown []string
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		b, ok := criteria.ParseBiomarker(value)
		if !ok {
			unknown = append(unknown, value)
			continue
		}
		seen[b] = struct{}{}
	}
	if len(unknown) > 0 {
		return nil, invalid("biomarkers", "unknown biomarker(s): "+strings.Join(unknown, ", "))
	}
	var out []criteria.Biomarker
	for _, b := range criteria.Biomarkers {
		if _, ok := seen[b]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func validateConditions(values []string) ([]criteria.Condition, error) {
	seen := make(map[criteria.Condition]struct{}, len(values))
	var unknown []string
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		c, ok := criteria.ParseCondition(value)
		if !ok || !slices.Contains(DeclarableConditions, c) {
			unknown = append(unknown, value)
			continue
		}
		seen[c] = struct{}{}
	}
	if len(unknown) > 0 {
		return nil, invalid("conditions", "unknown condition(s): "+strings.Join(unknown, ", "))
	}
	var out []criteria.Condition
	for _, c := range DeclarableConditions {
		if _, ok := seen[c]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
