package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NotFoundError reports an account id with no stored account.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("account %d not found", e.ID)
}

// InvalidStatusError reports an operation against an account whose status
// does not permit it, such as a transfer touching a closed account.
type InvalidStatusError struct {
	Status AccountStatus
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("account is in invalid status: %s", e.Status)
}

// InvalidBalanceError reports a balance that does not satisfy an operation:
// insufficient funds for a transfer, or a non-zero balance on close.
type InvalidBalanceError struct {
	Available decimal.Decimal
	Expected  decimal.Decimal
}

func (e InvalidBalanceError) Error() string {
	return fmt.Sprintf("balance is expected to be %s but available balance is %s", e.Expected, e.Available)
}
