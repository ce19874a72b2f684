package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/pillarmap-api/internal/ble"
)

// handleBLEByPillars returns the sensors mounted on the pillars listed in
// the pillar_ids query parameter. A missing or empty list yields [].
func (s *Server) handleBLEByPillars(w http.ResponseWriter, r *http.Request) {
	csv := r.URL.Query().Get("pillar_ids")

	sensors, err := s.ble.FindByPillars(r.Context(), csv)
	if err != nil {
		if errors.Is(err, ble.ErrInvalidPillarID) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("sensor lookup by pillar failed",
			"pillar_ids", csv,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "sensor lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, sensors)
}

// handleBLEDetail returns a single sensor by its ble_id query parameter.
func (s *Server) handleBLEDetail(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("ble_id") {
		writeBadRequest(w, "ble_id is required")
		return
	}
	bleID := query.Get("ble_id")

	sensor, ok, err := s.ble.Detail(r.Context(), bleID)
	if err != nil {
		s.logger.Error("sensor detail lookup failed",
			"ble_id", bleID,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "sensor lookup failed")
		return
	}
	if !ok {
		writeNotFound(w, "sensor not found")
		return
	}

	writeJSON(w, http.StatusOK, sensor)
}
