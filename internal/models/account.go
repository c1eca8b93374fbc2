package models

import "fmt"

// AccountNumber derives the immutable display number for an account id.
func AccountNumber(id int64) string {
	return fmt.Sprintf("businessnumber%d", id)
}

// AccountStatus is the lifecycle state of an account. The transition is
// one-way: an account starts OPEN and may only move to CLOSED.
type AccountStatus string

const (
	StatusOpen   AccountStatus = "OPEN"
	StatusClosed AccountStatus = "CLOSED"
)

// Account is a ledger account together with its full transaction history.
// The balance is not stored; it is always derived from the transactions.
type Account struct {
	ID           int64         `json:"id"`
	Number       string        `json:"number"`
	Status       AccountStatus `json:"status"`
	Transactions []Transaction `json:"transactions"`
}

// AccountPage is one page of a cursor-paginated account listing.
type AccountPage struct {
	Accounts   []Account `json:"accounts"`
	NextCursor string    `json:"next_cursor"`
}
