package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"billy/internal/core"
	"billy/internal/log"
)

const maxBodyBytes = 1 << 20

// handleListBills returns every bill. Read failures degrade to an empty
// list so the client keeps rendering instead of erroring out.
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.ListBills(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List bills failed", log.FieldError, err)
		bills = nil
	}
	if bills == nil {
		bills = []core.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

// handleCreateBills accepts either a single bill object or an array of
// bills, mirroring the bulk import path.
func (s *Server) handleCreateBills(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		writeError(w, http.StatusBadRequest, "empty request body")
		return
	}

	logger := log.FromContext(r.Context())

	if trimmed[0] == '[' {
		var bills []core.Bill
		if err := json.Unmarshal(body, &bills); err != nil {
			writeError(w, http.StatusBadRequest, "invalid bill array")
			return
		}
		created, err := s.bills.CreateBills(r.Context(), bills)
		if err != nil {
			logger.ErrorContext(r.Context(), "Bulk create failed", log.FieldError, err, "created", len(created))
			// Bills before the invalid one are already saved.
			if len(created) > 0 {
				s.invalidateViews()
			}
			writeDomainError(w, err)
			return
		}
		s.invalidateViews()
		writeJSON(w, http.StatusCreated, created)
		return
	}

	var bill core.Bill
	if err := json.Unmarshal(body, &bill); err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill")
		return
	}
	created, err := s.bills.CreateBill(r.Context(), bill)
	if err != nil {
		logger.ErrorContext(r.Context(), "Create bill failed", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	var bill core.Bill
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&bill); err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill")
		return
	}
	bill.ID = id

	updated, err := s.bills.UpdateBill(r.Context(), bill)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Update bill failed",
			log.FieldBillID, id, log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	if err := s.bills.DeleteBill(r.Context(), id); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Delete bill failed",
			log.FieldBillID, id, log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

type togglePaymentRequest struct {
	PeriodIndex    int       `json:"periodIndex"`
	OccurrenceDate time.Time `json:"occurrenceDate"`
}

// handleTogglePayment flips the paid flag for one occurrence. The client
// sends the displayed due date, after any banking-day adjustment, so the
// written key matches the one the period views read.
func (s *Server) handleTogglePayment(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	var req togglePaymentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid toggle request")
		return
	}
	if req.OccurrenceDate.IsZero() {
		writeError(w, http.StatusBadRequest, "missing occurrenceDate")
		return
	}

	updated, err := s.bills.TogglePayment(r.Context(), id, req.PeriodIndex, req.OccurrenceDate)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Toggle payment failed",
			log.FieldBillID, id,
			log.FieldPeriodIndex, req.PeriodIndex,
			log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, updated)
}

func billID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
