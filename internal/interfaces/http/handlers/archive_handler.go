package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/ChemSource/internal/infrastructure/storage/minio"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// ArchiveLister lists archived result sets for a CAS number.
type ArchiveLister interface {
	List(ctx context.Context, cas string, limit int) ([]minio.ArchivedResult, error)
}

// ArchiveHandler serves the result archive. A nil lister means the archive
// is disabled and every request is answered with 404.
type ArchiveHandler struct {
	archive ArchiveLister
}

func NewArchiveHandler(archive ArchiveLister) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// ArchiveResponse is returned by GET /api/v1/archive/{cas}.
type ArchiveResponse struct {
	CAS  string                 `json:"cas"`
	Runs []minio.ArchivedResult `json:"runs"`
}

// List handles GET /api/v1/archive/{cas}?limit=N.
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "result archive is not enabled")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeAppError(w, err)
		return
	}

	cas := chi.URLParam(r, "cas")
	runs, err := h.archive.List(r.Context(), cas, limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if runs == nil {
		runs = []minio.ArchivedResult{}
	}
	writeJSON(w, http.StatusOK, ArchiveResponse{CAS: cas, Runs: runs})
}

//Personal.AI order the ending
