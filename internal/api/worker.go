package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// handleGetWorker returns the contact record for a building.
func (s *Server) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	bldgID := chi.URLParam(r, "bldg_id")
	// chi routes on RawPath when it is set, leaving the parameter escaped.
	// Otherwise net/http has already decoded it once.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(bldgID); err == nil {
			bldgID = unescaped
		}
	}

	info, ok := s.workers.GetOne(bldgID)
	if !ok {
		writeNotFound(w, "building not found")
		return
	}

	writeJSON(w, http.StatusOK, info)
}
