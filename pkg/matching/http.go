package matching

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/observability/metrics"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
)

// MatchRequest is the JSON body of a search.
type MatchRequest struct {
	Patient        patient.Form `json:"patient"`
	RecruitingOnly bool         `json:"recruiting_only"`
	Phases         []string     `json:"phases,omitempty"`
	RadiusMiles    float64      `json:"radius_miles,omitempty"`
	Sort           string       `json:"sort,omitempty"`
	Page           int          `json:"page"`
}

type errorResponse struct {
	Error  string                    `json:"error"`
	Fields []patient.ValidationError `json:"fields,omitempty"`
}

type HTTPHandler struct {
	engine    *Engine
	validator *patient.Validator
	maxBody   int64
}

func NewHTTPHandler(engine *Engine, validator *patient.Validator, maxBody int64) *HTTPHandler {
	return &HTTPHandler{engine: engine, validator: validator, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/match", h.handleMatch).Methods(http.MethodPost)
	router.HandleFunc("/trials/{id}", h.handleTrial).Methods(http.MethodGet)
	router.HandleFunc("/trials/{id}/evaluate", h.handleEvaluate).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	profile, err := h.validator.Validate(req.Patient)
	if err != nil {
		metrics.ObserveMatch("invalid", 0)
		writeValidationError(w, err)
		return
	}

	page := h.engine.Match(Request{
		Patient:        profile,
		RecruitingOnly: req.RecruitingOnly,
		Phases:         req.Phases,
		RadiusMiles:    req.RadiusMiles,
		Sort:           ParseSortMode(req.Sort),
		Page:           req.Page,
	})
	writeJSON(w, http.StatusOK, page)
}

func (h *HTTPHandler) handleTrial(w http.ResponseWriter, r *http.Request) {
	id, err := patient.ValidateNCTID(mux.Vars(r)["id"])
	if err != nil {
		writeValidationError(w, err)
		return
	}
	entry, err := h.engine.Lookup(id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry.Trial)
}

func (h *HTTPHandler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	id, err := patient.ValidateNCTID(mux.Vars(r)["id"])
	if err != nil {
		writeValidationError(w, err)
		return
	}
	var form patient.Form
	if !h.decode(w, r, &form) {
		return
	}
	profile, err := h.validator.Validate(form)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	result, err := h.engine.Evaluate(profile, id)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Log.WithError(err).Warn("invalid match payload")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *HTTPHandler) writeLookupError(w http.ResponseWriter, err error) {
	if IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	logger.Log.WithError(err).Error("failed to look up trial")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: patient.FieldErrors(err)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
