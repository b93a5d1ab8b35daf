package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"billy/internal/log"
	"billy/internal/schedule"
)

// timeNow is swapped in tests to pin the current period.
var timeNow = time.Now

// handlePayPeriods returns the aggregated pay-period window around now.
// Window sizes come from query parameters, falling back to stored settings.
func (s *Server) handlePayPeriods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := s.bills.GetSettings(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Settings read failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	opts := schedule.PeriodOptions{
		PastPeriods:   intQuery(r, "past", settings.PastPeriods()),
		FuturePeriods: intQuery(r, "future", settings.FuturePeriods()),
		AdjustEFT:     boolQuery(r, "adjustEFT"),
	}

	// Keyed on the current period index as well, so an entry cached just
	// before a period boundary cannot serve a stale "current" marker after
	// the boundary passes.
	now := timeNow()
	current := s.bills.Calendar().IndexOf(now)
	key := fmt.Sprintf("periods:%d:%d:%d:%t", current, opts.PastPeriods, opts.FuturePeriods, opts.AdjustEFT)
	if periods, ok := s.periodsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, periods)
		return
	}

	periods, err := s.bills.PayPeriodsAt(ctx, now, opts)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Pay periods failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.periodsCache.Set(key, periods)
	writeJSON(w, http.StatusOK, periods)
}

// handleActivePeriod returns the outstanding/completed partition for one
// period. Without an index parameter it uses the current period.
func (s *Server) handleActivePeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	index := intQuery(r, "index", s.bills.Calendar().IndexOf(timeNow()))
	opts := schedule.ActiveOptions{
		AdjustEFT: boolQuery(r, "adjustEFT"),
		Sort:      schedule.SortMode(strings.TrimSpace(r.URL.Query().Get("sort"))),
	}

	key := fmt.Sprintf("active:%d:%t:%s", index, opts.AdjustEFT, opts.Sort)
	if view, ok := s.activeCache.Get(key); ok {
		writeJSON(w, http.StatusOK, view)
		return
	}

	view, err := s.bills.ActivePeriod(ctx, index, opts)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Active period failed",
			log.FieldPeriodIndex, index, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.activeCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

func intQuery(r *http.Request, name string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func boolQuery(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(name)))
	return err == nil && v
}
