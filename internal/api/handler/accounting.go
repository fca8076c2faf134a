package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Valerdy/captive-portal-sub000/internal/service"
)

// AccountingHandler receives the accounting webhook posted by the NAS.
type AccountingHandler struct {
	accounting service.AccountingService
}

// NewAccountingHandler wires the accounting service into a handler.
func NewAccountingHandler(accounting service.AccountingService) *AccountingHandler {
	return &AccountingHandler{accounting: accounting}
}

// Ingest handles POST /radius/accounting.
func (h *AccountingHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if h.accounting == nil {
		respondError(w, http.StatusServiceUnavailable, "accounting.ingest", errServiceUnavailable)
		return
	}
	var record service.AccountingRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		respondError(w, http.StatusBadRequest, "accounting.ingest", err)
		return
	}
	if err := h.accounting.Ingest(r.Context(), record); err != nil {
		respondServiceError(w, "accounting.ingest", err)
		return
	}
	respondMessage(w, "accepted", nil)
}
