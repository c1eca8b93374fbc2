package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/accountio/ledger-service/internal/ledger"
	"github.com/accountio/ledger-service/internal/models"
)

// ErrorResponse is the JSON body for every error status.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// writeLedgerError maps a command failure to its HTTP status: missing
// accounts are 404, violated status/balance invariants are 409, a shut-down
// ledger is 503, and anything else is a server fault.
func writeLedgerError(w http.ResponseWriter, err error) {
	var (
		notFound       models.NotFoundError
		invalidStatus  models.InvalidStatusError
		invalidBalance models.InvalidBalanceError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSONError(w, http.StatusNotFound, "not_found", notFound.Error())
	case errors.As(err, &invalidStatus):
		writeJSONError(w, http.StatusConflict, "invalid_status", invalidStatus.Error())
	case errors.As(err, &invalidBalance):
		writeJSONError(w, http.StatusConflict, "invalid_balance", invalidBalance.Error())
	case errors.Is(err, ledger.ErrLedgerClosed):
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "ledger is shutting down")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, http.StatusServiceUnavailable, "timeout", "request cancelled")
	default:
		writeJSONError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}
