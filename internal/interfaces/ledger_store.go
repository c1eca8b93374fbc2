package interfaces

import (
	"github.com/shopspring/decimal"

	"github.com/accountio/ledger-service/internal/models"
)

// AccountStore owns the account map and the id sequences. Implementations
// are not required to be safe for concurrent use: the ledger actor is the
// sole caller and serializes every access.
type AccountStore interface {
	// NextAccountID and NextTransactionID return strictly increasing ids,
	// each starting above the store's configured floor.
	NextAccountID() int64
	NextTransactionID() int64

	// Save inserts or overwrites the account by id and returns the stored
	// value.
	Save(account models.Account) models.Account

	// ByID returns the account or a models.NotFoundError.
	ByID(id int64) (models.Account, error)

	// ListAll returns every account except the pay-in account, in ascending
	// id order.
	ListAll() []models.Account

	// Balance sums the signed amounts of the account's transactions.
	Balance(account models.Account) decimal.Decimal

	// PayInAccountID is the id of the internal account that funds non-zero
	// initial balances.
	PayInAccountID() int64

	// MinID is a marker strictly below every id the store will allocate,
	// used as the exclusive lower boundary when pagination starts from the
	// beginning.
	MinID() int64
}
