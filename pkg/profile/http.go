package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/trials/{id}/profile", h.handleProfile).Methods(http.MethodGet)
	router.HandleFunc("/profiles/rebuild", h.handleRebuild).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, err := patient.ValidateNCTID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.service.Lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "trial not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch trial profile")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

func (h *HTTPHandler) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var payload CorpusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Log.WithError(err).Warn("invalid corpus payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	catalog, err := h.service.Rebuild(r.Context(), payload.Trials)
	if err != nil {
		logger.Log.WithError(err).Error("failed to rebuild profiles")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]int{
		"profiles": catalog.Len(),
		"skipped":  len(payload.Trials) - catalog.Len(),
	})
}
