package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/accountio/ledger-service/internal/models"
)

// commandKind enumerates the closed set of ledger commands. Dispatch is a
// single exhaustive switch in the actor loop.
type commandKind int

const (
	cmdCreateAccount commandKind = iota
	cmdGetAccount
	cmdCloseAccount
	cmdGetBalance
	cmdTransfer
	cmdListAccounts
)

func (k commandKind) String() string {
	switch k {
	case cmdCreateAccount:
		return "create_account"
	case cmdGetAccount:
		return "get_account"
	case cmdCloseAccount:
		return "close_account"
	case cmdGetBalance:
		return "get_balance"
	case cmdTransfer:
		return "transfer"
	case cmdListAccounts:
		return "list_accounts"
	default:
		return "unknown"
	}
}

// command is one queued request for the actor. Only the fields relevant to
// its kind are set. reply has capacity one and is resolved exactly once.
type command struct {
	kind commandKind

	id             int64
	initialAmount  decimal.Decimal
	targetID       int64
	amount         decimal.Decimal
	idempotencyKey string
	cursor         string
	limit          int

	reply chan result
}

// result carries either a command's value or its failure back to the caller.
type result struct {
	account models.Account
	balance decimal.Decimal
	pair    models.TransferPair
	page    models.AccountPage
	err     error
}
