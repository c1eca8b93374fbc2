package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/accountio/ledger-service/internal/events"
	"github.com/accountio/ledger-service/internal/ledger"
	"github.com/accountio/ledger-service/internal/models"
	"github.com/accountio/ledger-service/internal/pagination"
	"github.com/accountio/ledger-service/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewAccountStore(0, 0)
	pager, err := pagination.New("test-salt", store.MinID())
	if err != nil {
		t.Fatalf("pagination.New: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.New(store, pager, events.NoopPublisher{}, logger)
	t.Cleanup(l.Close)

	server := httptest.NewServer(NewRouter(l, logger))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func createAccount(t *testing.T, server *httptest.Server, initial string) models.Account {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, server.URL+"/accounts",
		map[string]string{"initial_amount": initial}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", resp.StatusCode, body)
	}
	var account models.Account
	if err := json.Unmarshal(body, &account); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	return account
}

func TestCreateAndGetAccount(t *testing.T) {
	server := newTestServer(t)
	account := createAccount(t, server, "0")
	if account.ID <= 0 || account.Number == "" || account.Status != models.StatusOpen {
		t.Fatalf("unexpected account: %+v", account)
	}

	resp, body := doJSON(t, http.MethodGet, server.URL+"/accounts/"+itoa(account.ID), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status=%d body=%s", resp.StatusCode, body)
	}
	var got models.Account
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != account.ID {
		t.Fatalf("got id=%d want=%d", got.ID, account.ID)
	}
}

func TestCreateAccountWithEmptyBody(t *testing.T) {
	server := newTestServer(t)
	resp, body := doJSON(t, http.MethodPost, server.URL+"/accounts", nil, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
}

func TestCreateAccountNegativeAmount(t *testing.T) {
	server := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, server.URL+"/accounts",
		map[string]string{"initial_amount": "-1"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", resp.StatusCode)
	}
}

func TestGetAccountErrors(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/accounts/9999", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing account status=%d want=404", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/accounts/not-a-number", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id status=%d want=400", resp.StatusCode)
	}
}

func TestBalanceEndpoint(t *testing.T) {
	server := newTestServer(t)
	account := createAccount(t, server, "250.75")

	resp, body := doJSON(t, http.MethodGet, server.URL+"/accounts/"+itoa(account.ID)+"/balance", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var payload struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Balance.Equal(decimal.RequireFromString("250.75")) {
		t.Fatalf("balance=%s want=250.75", payload.Balance)
	}
}

func TestTransferEndpoint(t *testing.T) {
	server := newTestServer(t)
	source := createAccount(t, server, "100")
	target := createAccount(t, server, "0")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/accounts/"+itoa(source.ID)+"/transfers",
		map[string]any{"target_account": target.ID, "amount": "50"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var pair models.TransferPair
	if err := json.Unmarshal(body, &pair); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pair.Deposit.Type != models.TypeDeposit || pair.Withdrawal.Type != models.TypeWithdrawal {
		t.Fatalf("unexpected pair: %+v", pair)
	}

	// Insufficient funds conflict.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/accounts/"+itoa(source.ID)+"/transfers",
		map[string]any{"target_account": target.ID, "amount": "1000"}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("insufficient status=%d body=%s", resp.StatusCode, body)
	}

	// Missing target.
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/accounts/"+itoa(source.ID)+"/transfers",
		map[string]any{"target_account": 9999, "amount": "1"}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing target status=%d want=404", resp.StatusCode)
	}

	// Non-positive amount is rejected before the ledger sees it.
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/accounts/"+itoa(source.ID)+"/transfers",
		map[string]any{"target_account": target.ID, "amount": "0"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero amount status=%d want=400", resp.StatusCode)
	}
}

func TestTransferIdempotencyHeader(t *testing.T) {
	server := newTestServer(t)
	source := createAccount(t, server, "100")
	target := createAccount(t, server, "0")

	headers := map[string]string{"Idempotency-Key": "transfer-1"}
	body := map[string]any{"target_account": target.ID, "amount": "60"}

	resp, first := doJSON(t, http.MethodPost, server.URL+"/accounts/"+itoa(source.ID)+"/transfers", body, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, first)
	}
	resp, second := doJSON(t, http.MethodPost, server.URL+"/accounts/"+itoa(source.ID)+"/transfers", body, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("replay status=%d body=%s", resp.StatusCode, second)
	}

	var a, b models.TransferPair
	if err := json.Unmarshal(first, &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(second, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Deposit.ID != b.Deposit.ID {
		t.Fatalf("replay created a new pair: %d vs %d", a.Deposit.ID, b.Deposit.ID)
	}

	resp, balanceBody := doJSON(t, http.MethodGet, server.URL+"/accounts/"+itoa(source.ID)+"/balance", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance status=%d", resp.StatusCode)
	}
	var payload struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(balanceBody, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Balance.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("balance=%s want=40", payload.Balance)
	}
}

func TestCloseAccountEndpoint(t *testing.T) {
	server := newTestServer(t)
	funded := createAccount(t, server, "10")
	empty := createAccount(t, server, "0")

	resp, body := doJSON(t, http.MethodDelete, server.URL+"/accounts/"+itoa(empty.ID), nil, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("close status=%d body=%s", resp.StatusCode, body)
	}
	var closed models.Account
	if err := json.Unmarshal(body, &closed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if closed.Status != models.StatusClosed {
		t.Fatalf("status=%s want=%s", closed.Status, models.StatusClosed)
	}

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/accounts/"+itoa(funded.ID), nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("non-zero close status=%d want=409", resp.StatusCode)
	}
}

func TestListAccountsEndpoint(t *testing.T) {
	server := newTestServer(t)
	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, createAccount(t, server, "0").ID)
	}

	var collected []int64
	next := ""
	for {
		url := server.URL + "/accounts?limit=2"
		if next != "" {
			url += "&next=" + next
		}
		resp, body := doJSON(t, http.MethodGet, url, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list status=%d body=%s", resp.StatusCode, body)
		}
		var page models.AccountPage
		if err := json.Unmarshal(body, &page); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(page.Accounts) == 0 {
			break
		}
		for _, account := range page.Accounts {
			collected = append(collected, account.ID)
		}
		next = page.NextCursor
	}

	if len(collected) != len(ids) {
		t.Fatalf("collected=%d want=%d", len(collected), len(ids))
	}
	for i, id := range collected {
		if id != ids[i] {
			t.Fatalf("collected[%d]=%d want=%d", i, id, ids[i])
		}
	}
}

func TestListAccountsBadLimit(t *testing.T) {
	server := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, server.URL+"/accounts?limit=0", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, server.URL+"/health", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want=200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id header")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
