package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"billy/internal/core"
	"billy/internal/log"
)

// handleGetSettings returns the stored settings merged over the defaults,
// so the client always sees a complete set of known keys.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.bills.GetSettings(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Settings read failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := core.Settings{
		core.SettingTitle:         settings.Title(),
		core.SettingPastPeriods:   strconv.Itoa(settings.PastPeriods()),
		core.SettingFuturePeriods: strconv.Itoa(settings.FuturePeriods()),
	}
	for k, v := range settings {
		out[k] = v
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePutSettings upserts the given keys. Unknown keys round-trip as
// strings; known keys get validated lazily on read.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings")
		return
	}
	if len(settings) == 0 {
		writeError(w, http.StatusBadRequest, "empty settings")
		return
	}

	if err := s.bills.PutSettings(r.Context(), settings); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Settings write failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Period windows may have changed.
	s.invalidateViews()
	writeJSON(w, http.StatusOK, settings)
}
