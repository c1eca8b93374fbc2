package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/accountio/ledger-service/internal/ledger"
	"github.com/accountio/ledger-service/internal/models"
)

const defaultPageLimit = 10

// AccountsHandler exposes the ledger's command façade over REST.
type AccountsHandler struct {
	ledger *ledger.Ledger
}

func NewAccountsHandler(l *ledger.Ledger) *AccountsHandler {
	return &AccountsHandler{ledger: l}
}

type createAccountRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount"`
}

type transferRequest struct {
	TargetAccount int64           `json:"target_account"`
	Amount        decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
	AsOf    time.Time       `json:"as_of"`
}

func accountID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Create handles POST /accounts. An empty body opens an account with a zero
// balance.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	if req.InitialAmount.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "initial_amount must not be negative")
		return
	}
	account, err := h.ledger.CreateAccount(r.Context(), req.InitialAmount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// Get handles GET /accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Must provide a numeric account id")
		return
	}
	account, err := h.ledger.Account(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Close handles DELETE /accounts/{id}. The account is closed, not deleted,
// and only with a zero balance.
func (h *AccountsHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Must provide a numeric account id")
		return
	}
	account, err := h.ledger.CloseAccount(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, account)
}

// Balance handles GET /accounts/{id}/balance.
func (h *AccountsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Must provide a numeric account id")
		return
	}
	balance, err := h.ledger.Balance(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance, AsOf: time.Now()})
}

// Transfer handles POST /accounts/{id}/transfers, moving funds from {id} to
// the target account in the body. An optional Idempotency-Key header makes
// the transfer replayable.
func (h *AccountsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	sourceID, err := accountID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Must provide a numeric account id")
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	if !req.Amount.IsPositive() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "amount must be positive")
		return
	}
	pair, err := h.ledger.Transfer(r.Context(), sourceID, req.TargetAccount, req.Amount, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pair)
}

// List handles GET /accounts?limit=&next=. The next parameter is the opaque
// cursor from a previous page.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "limit must be a positive integer")
			return
		}
		limit = n
	}
	page, err := h.ledger.ListAccounts(r.Context(), r.URL.Query().Get("next"), limit)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if page.Accounts == nil {
		page.Accounts = []models.Account{}
	}
	writeJSON(w, http.StatusOK, page)
}

// Health handles GET /health.
func (h *AccountsHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
