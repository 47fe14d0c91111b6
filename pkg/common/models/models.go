package models

import (
	"strings"
	"time"
)

const StatusRecruiting = "RECRUITING"

// Upstream trial corpus, as handed over by the fetch/normalization collaborator.
type RawTrial struct {
	TrialID         string   `json:"trial_id"`
	Title           string   `json:"title"`
	BriefSummary    string   `json:"brief_summary,omitempty"`
	Description     string   `json:"detailed_description,omitempty"`
	Conditions      []string `json:"conditions,omitempty"`
	Phase           string   `json:"phase,omitempty"`
	Status          string   `json:"status,omitempty"` // RECRUITING, ACTIVE_NOT_RECRUITING, COMPLETED, ...
	Allocation      string   `json:"allocation,omitempty"`
	Masking         string   `json:"masking,omitempty"`
	EligibilityText string   `json:"eligibility_text,omitempty"`
	MinimumAge      string   `json:"minimum_age,omitempty"` // "18 Years", "6 Months", "N/A"
	MaximumAge      string   `json:"maximum_age,omitempty"`
	Sex             string   `json:"sex,omitempty"`
	Sites           []Site   `json:"sites,omitempty"`
}

func (t RawTrial) IsRecruiting() bool {
	return IsRecruitingStatus(t.Status)
}

type Site struct {
	Facility  string    `json:"facility,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Country   string    `json:"country,omitempty"`
	Status    string    `json:"status,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Contacts  []Contact `json:"contacts,omitempty"`
}

func (s Site) IsRecruiting() bool {
	return IsRecruitingStatus(s.Status)
}

// HasCoordinates reports whether both latitude and longitude are known.
func (s Site) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// PrimaryContact returns the first listed contact, usually the study coordinator.
func (s Site) PrimaryContact() (Contact, bool) {
	if len(s.Contacts) == 0 {
		return Contact{}, false
	}
	return s.Contacts[0], true
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

func IsRecruitingStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusRecruiting)
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // corpus, profiles_rebuilt
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
