package memory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/accountio/ledger-service/internal/interfaces"
	"github.com/accountio/ledger-service/internal/models"
)

// payInNumber is the display number of the internal funding account.
const payInNumber = "initial-pay-in-account"

// AccountStore is the in-memory implementation of interfaces.AccountStore.
// It carries no locking on purpose: the ledger actor is its only caller, and
// that single goroutine is the serialization boundary.
type AccountStore struct {
	accounts       map[int64]models.Account
	accountSeq     int64
	transactionSeq int64
	accountFloor   int64
	payInID        int64
}

// NewAccountStore creates a store whose account and transaction id sequences
// start above the given floors, and seeds the pay-in account that funds
// accounts opened with a non-zero initial balance.
func NewAccountStore(accountFloor, transactionFloor int64) *AccountStore {
	s := &AccountStore{
		accounts:       make(map[int64]models.Account),
		accountSeq:     accountFloor,
		transactionSeq: transactionFloor,
		accountFloor:   accountFloor,
	}
	payIn := models.Account{
		ID:     s.NextAccountID(),
		Number: payInNumber,
		Status: models.StatusOpen,
	}
	s.Save(payIn)
	s.payInID = payIn.ID
	return s
}

func (s *AccountStore) NextAccountID() int64 {
	s.accountSeq++
	return s.accountSeq
}

func (s *AccountStore) NextTransactionID() int64 {
	s.transactionSeq++
	return s.transactionSeq
}

func (s *AccountStore) Save(account models.Account) models.Account {
	s.accounts[account.ID] = account
	return account
}

func (s *AccountStore) ByID(id int64) (models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, models.NotFoundError{ID: id}
	}
	return account, nil
}

// ListAll returns every account except the pay-in account, ascending by id.
func (s *AccountStore) ListAll() []models.Account {
	all := make([]models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		if account.ID == s.payInID {
			continue
		}
		all = append(all, account)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Balance sums the signed transaction amounts with exact decimal arithmetic.
func (s *AccountStore) Balance(account models.Account) decimal.Decimal {
	balance := decimal.Zero
	for _, transaction := range account.Transactions {
		balance = balance.Add(transaction.Type.Signed(transaction.Amount))
	}
	return balance
}

func (s *AccountStore) PayInAccountID() int64 {
	return s.payInID
}

func (s *AccountStore) MinID() int64 {
	return s.accountFloor
}

// Compile-time check: ensure AccountStore implements interfaces.AccountStore.
var _ interfaces.AccountStore = (*AccountStore)(nil)
