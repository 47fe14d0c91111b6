package matching

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptica-ai/trialmatch/pkg/common/models"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
	"github.com/synaptica-ai/trialmatch/pkg/geo"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

func coord(v float64) *float64 { return &v }

func site(state string, lat, lon float64) models.Site {
	return models.Site{
		Facility:  state + " cancer center",
		State:     state,
		Status:    "RECRUITING",
		Latitude:  coord(lat),
		Longitude: coord(lon),
		Contacts:  []models.Contact{{Name: "Coordinator " + state, Phone: "555-0100"}},
	}
}

// testStore holds five trials:
//
//	A recruiting, site in New York, age 18+        -> 20+15+10 = 45
//	B completed, age 18+, no sites                 -> 20
//	C recruiting, excludes HIV
//	D completed, no evidence                       -> 0, dropped
//	E recruiting, lung cancer, site in Los Angeles -> 30+40+10 = 80
func testStore() *profile.Store {
	entries := []profile.Entry{
		{
			Trial:   models.RawTrial{TrialID: "NCT0000000A", Title: "Immunotherapy basket", Phase: "PHASE2", Status: "RECRUITING", Sites: []models.Site{site("New York", 40.7128, -74.0060)}},
			Profile: profile.Profile{TrialID: "NCT0000000A", AgeMin: yrs(18)},
		},
		{
			Trial:   models.RawTrial{TrialID: "NCT0000000B", Title: "Supportive care", Phase: "PHASE3", Status: "COMPLETED"},
			Profile: profile.Profile{TrialID: "NCT0000000B", AgeMin: yrs(18)},
		},
		{
			Trial:   models.RawTrial{TrialID: "NCT0000000C", Title: "Lung cancer vaccine", Phase: "PHASE1", Status: "RECRUITING"},
			Profile: profile.Profile{TrialID: "NCT0000000C", Facts: criteria.Facts{
				Exclusions: criteria.ExclusionFlags{criteria.ConditionHIV: criteria.FlagExcluded},
			}},
		},
		{
			Trial:   models.RawTrial{TrialID: "NCT0000000D", Title: "Observational registry", Phase: "NA", Status: "COMPLETED"},
			Profile: profile.Profile{TrialID: "NCT0000000D"},
		},
		{
			Trial:   models.RawTrial{TrialID: "NCT0000000E", Title: "Lung cancer study", Phase: "PHASE1/PHASE2", Status: "RECRUITING", Conditions: []string{"Lung Cancer"}, Sites: []models.Site{site("CA", 34.0522, -118.2437)}},
			Profile: profile.Profile{TrialID: "NCT0000000E"},
		},
	}
	store := profile.NewStore()
	store.Swap(profile.NewCatalog(entries))
	return store
}

func newYorkPatient() patient.Profile {
	loc := geo.Point{Latitude: 40.7128, Longitude: -74.0060}
	return patient.Profile{
		Age:        50,
		CancerType: "lung cancer",
		Conditions: []criteria.Condition{criteria.ConditionHIV},
		State:      "NY",
		Location:   &loc,
	}
}

func trialIDs(results []Result) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.TrialID)
	}
	return ids
}

func TestMatchDefaultOrder(t *testing.T) {
	page := NewEngine(testStore(), 10).Match(Request{Patient: newYorkPatient()})

	assert.Equal(t, []string{"NCT0000000E", "NCT0000000A", "NCT0000000B"}, trialIDs(page.Results))
	assert.Equal(t, []int{80, 45, 20}, []int{page.Results[0].Score, page.Results[1].Score, page.Results[2].Score})
	assert.Equal(t, FilterCounts{Total: 5, Excluded: 1, NonPositive: 1, Surfaced: 3}, page.Counts)
	assert.Equal(t, map[string]string{"NCT0000000C": "HIV not allowed"}, page.Exclusions)
	assert.Equal(t, 1, page.PageCount)

	require.NotNil(t, page.Results[1].Contact)
	assert.Equal(t, "Coordinator New York", page.Results[1].Contact.Name)
	assert.Nil(t, page.Results[2].DistanceMiles)
}

func TestMatchDistanceOrderAndRadius(t *testing.T) {
	engine := NewEngine(testStore(), 10)

	page := engine.Match(Request{Patient: newYorkPatient(), Sort: SortByDistance})
	assert.Equal(t, []string{"NCT0000000A", "NCT0000000E", "NCT0000000B"}, trialIDs(page.Results))
	require.NotNil(t, page.Results[1].DistanceMiles)
	assert.InDelta(t, 2445, *page.Results[1].DistanceMiles, 50)

	page = engine.Match(Request{Patient: newYorkPatient(), RadiusMiles: 100})
	assert.Equal(t, []string{"NCT0000000A", "NCT0000000B"}, trialIDs(page.Results))
	assert.Equal(t, 1, page.Counts.OutOfRadius)

	// without a resolved location the radius does not apply
	noLocation := newYorkPatient()
	noLocation.Location = nil
	page = engine.Match(Request{Patient: noLocation, RadiusMiles: 100})
	assert.Zero(t, page.Counts.OutOfRadius)
	assert.Len(t, page.Results, 3)
}

func TestMatchUpstreamFilters(t *testing.T) {
	engine := NewEngine(testStore(), 10)

	page := engine.Match(Request{Patient: newYorkPatient(), RecruitingOnly: true})
	assert.Equal(t, []string{"NCT0000000E", "NCT0000000A"}, trialIDs(page.Results))
	assert.Equal(t, 2, page.Counts.NotRecruiting)

	page = engine.Match(Request{Patient: newYorkPatient(), Phases: []string{"Phase 2"}})
	assert.Equal(t, []string{"NCT0000000E", "NCT0000000A"}, trialIDs(page.Results))
	assert.Equal(t, 3, page.Counts.PhaseFiltered)
}

func TestMatchEmptyCatalog(t *testing.T) {
	page := NewEngine(profile.NewStore(), 0).Match(Request{Patient: newYorkPatient(), Page: 3})
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
}

func TestPaginateClamps(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	window, page, pages := Paginate(items, 15, 10)
	assert.Equal(t, 9, page)
	assert.Equal(t, 10, pages)
	assert.Equal(t, []int{90, 91, 92, 93, 94, 95, 96, 97, 98, 99}, window)

	window, page, _ = Paginate(items, -2, 10)
	assert.Equal(t, 0, page)
	assert.Len(t, window, 10)

	window, page, pages = Paginate(items[:25], 2, 10)
	assert.Equal(t, 2, page)
	assert.Equal(t, 3, pages)
	assert.Len(t, window, 5)

	window, page, pages = Paginate([]int{}, 4, 10)
	assert.Nil(t, window)
	assert.Zero(t, page)
	assert.Zero(t, pages)
}

func TestRankTieBreaks(t *testing.T) {
	near, far := 5.0, 50.0
	results := []Result{
		{TrialID: "NCT3", Score: 40},
		{TrialID: "NCT2", Score: 40, Recruiting: true},
		{TrialID: "NCT1", Score: 40, Recruiting: true, DistanceMiles: &far},
		{TrialID: "NCT4", Score: 90, DistanceMiles: &near},
	}
	Rank(results, SortByScore)
	assert.Equal(t, []string{"NCT1", "NCT2", "NCT4", "NCT3"}, trialIDs(results))

	Rank(results, SortByDistance)
	assert.Equal(t, []string{"NCT4", "NCT1", "NCT2", "NCT3"}, trialIDs(results))
}

func TestLookupAndEvaluate(t *testing.T) {
	engine := NewEngine(testStore(), 10)

	_, err := engine.Lookup("NCT99999999")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.EqualError(t, err, "trial NCT99999999 not found")

	result, err := engine.Evaluate(newYorkPatient(), "NCT0000000C")
	require.NoError(t, err)
	assert.Equal(t, "HIV not allowed", result.ExclusionReason)
	assert.Zero(t, result.Score)

	result, err = engine.Evaluate(newYorkPatient(), "NCT0000000D")
	require.NoError(t, err)
	assert.Empty(t, result.ExclusionReason)
	assert.Zero(t, result.Score)
}

func TestMatchHTTP(t *testing.T) {
	router := mux.NewRouter()
	NewHTTPHandler(NewEngine(testStore(), 2), patient.NewValidator(500), 1<<20).Register(router)

	post := func(path string, body interface{}) *httptest.ResponseRecorder {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data)))
		return rec
	}

	rec := post("/match", MatchRequest{
		Patient: patient.Form{Age: "50", CancerType: "lung cancer", Conditions: []string{"hiv"}, State: "NY"},
		Page:    7,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var page Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, []string{"NCT0000000B"}, trialIDs(page.Results))

	rec = post("/match", MatchRequest{Patient: patient.Form{Age: "abc", CancerType: "lung"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var failure errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failure))
	assert.Equal(t, []patient.ValidationError{{Field: "age", Message: "invalid age format"}}, failure.Fields)

	rec = post("/trials/NCT0000000C/evaluate", patient.Form{Age: "50", CancerType: "lung", Conditions: []string{"hiv"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "identifier must be NCT plus eight digits")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trials/NCT12345678", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/match", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
