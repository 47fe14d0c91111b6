package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/synaptica-ai/trialmatch/pkg/common/database"
	"github.com/synaptica-ai/trialmatch/pkg/gateway/middleware"
	"github.com/synaptica-ai/trialmatch/pkg/matching"
	"github.com/synaptica-ai/trialmatch/pkg/observability/metrics"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

// newHandler builds the service router. CORS wraps the router itself because
// mux only runs Use middleware for matched routes, and preflight OPTIONS
// requests match none of them.
func newHandler(engine *matching.Engine, validator *patient.Validator, svc *profile.Service, store *profile.Store, maxBody int64) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.BodyLimit(maxBody))
	router.Use(middleware.RateLimit(50, 100))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		deps := database.Health(r.Context())
		profiles := store.Catalog().Len()
		status := http.StatusOK
		if profiles == 0 || !database.Healthy(deps) {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"profiles":     profiles,
			"dependencies": deps,
		})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	matching.NewHTTPHandler(engine, validator, maxBody).Register(api)
	profile.NewHTTPHandler(svc, maxBody).Register(api)

	return middleware.CORS(router)
}
