// Package matching filters, scores and ranks trials for one patient.
package matching

import (
	"strings"
	"time"

	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/geo"
	"github.com/synaptica-ai/trialmatch/pkg/observability/metrics"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

const DefaultPageSize = 10

// Request carries a validated patient and the search options.
type Request struct {
	Patient        patient.Profile
	RecruitingOnly bool
	Phases         []string
	RadiusMiles    float64
	Sort           SortMode
	Page           int
}

type Result struct {
	TrialID         string          `json:"trial_id"`
	Title           string          `json:"title"`
	Phase           string          `json:"phase,omitempty"`
	Status          string          `json:"status,omitempty"`
	Recruiting      bool            `json:"recruiting"`
	Score           int             `json:"score"`
	Reasons         []string        `json:"reasons"`
	ExclusionReason string          `json:"exclusion_reason,omitempty"`
	DistanceMiles   *float64        `json:"distance_miles,omitempty"`
	Contact         *models.Contact `json:"contact,omitempty"`
}

// FilterCounts explains how the catalog narrowed down to the surfaced results.
type FilterCounts struct {
	Total         int `json:"total"`
	NotRecruiting int `json:"not_recruiting"`
	PhaseFiltered int `json:"phase_filtered"`
	OutOfRadius   int `json:"out_of_radius"`
	Excluded      int `json:"excluded"`
	NonPositive   int `json:"non_positive"`
	Surfaced      int `json:"surfaced"`
}

func (c FilterCounts) stages() map[string]int {
	return map[string]int{
		"not_recruiting": c.NotRecruiting,
		"phase":          c.PhaseFiltered,
		"out_of_radius":  c.OutOfRadius,
		"excluded":       c.Excluded,
		"non_positive":   c.NonPositive,
	}
}

type Page struct {
	Results    []Result          `json:"results"`
	Page       int               `json:"page"`
	PageCount  int               `json:"page_count"`
	PageSize   int               `json:"page_size"`
	Total      int               `json:"total"`
	Counts     FilterCounts      `json:"counts"`
	Exclusions map[string]string `json:"exclusions,omitempty"`
}

type Engine struct {
	store    *profile.Store
	pageSize int
}

func NewEngine(store *profile.Store, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{store: store, pageSize: pageSize}
}

// Match runs the upstream predicates, the exclusion rules and the scorer over
// the active catalog, then ranks and pages what survives. Zero survivors is a
// normal outcome; Counts says where the trials went.
func (e *Engine) Match(req Request) Page {
	start := time.Now()
	catalog := e.store.Catalog()
	phases := phaseSet(req.Phases)

	counts := FilterCounts{Total: catalog.Len()}
	exclusions := make(map[string]string)
	results := make([]Result, 0)

	for _, entry := range catalog.Entries() {
		if req.RecruitingOnly && !entry.Trial.IsRecruiting() {
			counts.NotRecruiting++
			continue
		}
		if len(phases) > 0 && !phaseAllowed(entry.Trial.Phase, phases) {
			counts.PhaseFiltered++
			continue
		}
		distance := nearest(req.Patient, entry.Trial)
		if !geo.WithinRadius(distance, req.RadiusMiles) {
			counts.OutOfRadius++
			continue
		}

		if reason, excluded := Exclude(req.Patient, entry.Profile); excluded {
			counts.Excluded++
			exclusions[entry.Profile.TrialID] = reason
			continue
		}

		score, reasons := Score(req.Patient, entry)
		if score <= 0 {
			counts.NonPositive++
			continue
		}
		result := newResult(req.Patient, entry, score, reasons)
		result.DistanceMiles = distance
		results = append(results, result)
	}
	counts.Surfaced = len(results)

	Rank(results, req.Sort)
	window, page, pageCount := Paginate(results, req.Page, e.pageSize)
	if window == nil {
		window = []Result{}
	}

	metrics.ObserveFilterCounts(counts.stages(), counts.Surfaced)
	metrics.ObserveMatch("ok", time.Since(start))
	logger.Log.WithFields(map[string]interface{}{
		"total":    counts.Total,
		"excluded": counts.Excluded,
		"surfaced": counts.Surfaced,
		"page":     page,
	}).Debug("Match completed")

	return Page{
		Results:    window,
		Page:       page,
		PageCount:  pageCount,
		PageSize:   e.pageSize,
		Total:      counts.Surfaced,
		Counts:     counts,
		Exclusions: exclusions,
	}
}

// Lookup returns one catalog entry by registry identifier.
func (e *Engine) Lookup(trialID string) (profile.Entry, error) {
	entry, ok := e.store.Catalog().Get(trialID)
	if !ok {
		return profile.Entry{}, NotFoundError{TrialID: trialID}
	}
	return entry, nil
}

// Evaluate explains a single trial for the patient: the exclusion reason if
// one applies, otherwise the score and its reasons. Upstream filters do not
// apply to a direct lookup.
func (e *Engine) Evaluate(p patient.Profile, trialID string) (Result, error) {
	entry, err := e.Lookup(trialID)
	if err != nil {
		return Result{}, err
	}
	result := newResult(p, entry, 0, nil)
	result.DistanceMiles = nearest(p, entry.Trial)
	if reason, excluded := Exclude(p, entry.Profile); excluded {
		result.ExclusionReason = reason
		result.Reasons = []string{}
		return result, nil
	}
	result.Score, result.Reasons = Score(p, entry)
	return result, nil
}

func newResult(p patient.Profile, entry profile.Entry, score int, reasons []string) Result {
	return Result{
		TrialID:    entry.Profile.TrialID,
		Title:      entry.Trial.Title,
		Phase:      entry.Trial.Phase,
		Status:     entry.Trial.Status,
		Recruiting: entry.Trial.IsRecruiting(),
		Score:      score,
		Reasons:    reasons,
		Contact:    siteContact(p, entry.Trial),
	}
}

func nearest(p patient.Profile, trial models.RawTrial) *float64 {
	if p.Location == nil {
		return nil
	}
	d, ok := geo.NearestSite(*p.Location, trial.Sites)
	if !ok {
		return nil
	}
	return &d
}

// siteContact prefers a recruiting site in the patient's state, then any
// recruiting site that lists a contact.
func siteContact(p patient.Profile, trial models.RawTrial) *models.Contact {
	var fallback *models.Contact
	for _, site := range trial.Sites {
		if !site.IsRecruiting() {
			continue
		}
		c, ok := site.PrimaryContact()
		if !ok {
			continue
		}
		if p.State != "" {
			if s, ok := geo.LookupState(site.State); ok && s.Code == p.State {
				return &c
			}
		}
		if fallback == nil {
			fallback = &c
		}
	}
	return fallback
}

func phaseSet(phases []string) map[string]struct{} {
	set := make(map[string]struct{}, len(phases))
	for _, phase := range phases {
		if n := normalizePhase(phase); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// phaseAllowed matches any of a combined phase ("PHASE1/PHASE2") against the allow-list.
func phaseAllowed(phase string, allowed map[string]struct{}) bool {
	for _, part := range strings.FieldsFunc(phase, func(r rune) bool { return r == '/' || r == ',' }) {
		if _, ok := allowed[normalizePhase(part)]; ok {
			return true
		}
	}
	return false
}

// normalizePhase folds "Phase 2", "PHASE2" and "2" to "PHASE2".
func normalizePhase(phase string) string {
	n := strings.ToUpper(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(phase)))
	if n == "" || n == "NA" || strings.Contains(n, "PHASE") {
		return n
	}
	return "PHASE" + n
}
