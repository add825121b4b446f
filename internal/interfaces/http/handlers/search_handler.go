package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/ChemSource/internal/application/discovery"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

// DiscoveryService is the subset of discovery.Service the handlers use.
type DiscoveryService interface {
	Search(ctx context.Context, req discovery.Request) (*supplier.ResultSet, error)
	Submit(ctx context.Context, req discovery.Request) (*supplier.SearchJob, error)
	Job(ctx context.Context, id string) (*supplier.SearchJob, error)
}

// SearchHandler serves synchronous and asynchronous supplier searches.
type SearchHandler struct {
	svc    DiscoveryService
	logger logging.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc DiscoveryService, logger logging.Logger) *SearchHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SearchHandler{svc: svc, logger: logger.Named("http.search")}
}

// SubmitResponse is returned by the async endpoint.
type SubmitResponse struct {
	JobID  string             `json:"job_id"`
	Status supplier.JobStatus `json:"status"`
}

// Search handles POST /api/v1/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req discovery.Request
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	rs, err := h.svc.Search(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// SubmitAsync handles POST /api/v1/search/async.
func (h *SearchHandler) SubmitAsync(w http.ResponseWriter, r *http.Request) {
	var req discovery.Request
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	job, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	h.logger.Info("search job submitted",
		logging.String("job_id", job.ID),
		logging.String("cas", job.CAS))

	w.Header().Set("Location", "/api/v1/search/"+job.ID)
	writeJSON(w, http.StatusAccepted, SubmitResponse{JobID: job.ID, Status: job.Status})
}

// GetJob handles GET /api/v1/search/{jobID}.
func (h *SearchHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.Job(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

//Personal.AI order the ending
