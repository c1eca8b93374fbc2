package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType determines the signed contribution of a transaction to the
// owning account's balance.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeCredit     TransactionType = "CREDIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeDebit      TransactionType = "DEBIT"
)

// Signed returns the amount with the sign implied by the transaction type:
// deposits and credits add to the balance, withdrawals and debits subtract.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	switch t {
	case TypeWithdrawal, TypeDebit:
		return amount.Neg()
	default:
		return amount
	}
}

// Transaction is one half of a double-entry pair. Amount is always the
// non-negative magnitude; the type carries the sign.
type Transaction struct {
	ID                    int64           `json:"id"`
	Date                  time.Time       `json:"date"`
	Type                  TransactionType `json:"type"`
	CounterpartyAccountID int64           `json:"counterparty_account"`
	Amount                decimal.Decimal `json:"amount"`
}

// TransferPair is the double-entry result of a transfer: the deposit booked
// on the target account and the withdrawal booked on the source account.
// The two transactions share a timestamp and have consecutive ids.
type TransferPair struct {
	Deposit    Transaction `json:"deposit"`
	Withdrawal Transaction `json:"withdrawal"`
}
