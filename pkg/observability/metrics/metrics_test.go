package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMatch(t *testing.T) {
	before := testutil.ToFloat64(matchRequests.WithLabelValues("invalid"))
	ObserveMatch("invalid", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(matchRequests.WithLabelValues("invalid")))
}

func TestObserveFilterCountsSkipsEmptyStages(t *testing.T) {
	before := testutil.ToFloat64(matchFiltered.WithLabelValues("excluded"))
	ObserveFilterCounts(map[string]int{"excluded": 3, "out_of_radius": 0}, 2)
	assert.Equal(t, before+3, testutil.ToFloat64(matchFiltered.WithLabelValues("excluded")))
}

func TestObserveRebuildSetsCatalogSize(t *testing.T) {
	ObserveRebuild("ok", 42, time.Second)
	assert.Equal(t, 42.0, testutil.ToFloat64(profilesBuilt))

	ObserveRebuild("error", 0, time.Second)
	assert.Equal(t, 42.0, testutil.ToFloat64(profilesBuilt))
}

func TestHandlerServesRegistry(t *testing.T) {
	ObserveCacheLookup("hit")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trialmatch_profiles_cache_lookups_total")
}

func TestObserveHTTPBucketsStatus(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("POST", "4xx"))
	ObserveHTTP("POST", http.StatusBadRequest)
	ObserveHTTP("POST", http.StatusNotFound)
	assert.Equal(t, before+2, testutil.ToFloat64(httpRequests.WithLabelValues("POST", "4xx")))
}
