// Package events defines the payloads published after ledger commands
// commit. They are encoded as JSON on the wire.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicAccountOpened     = "account.opened"
	TopicTransferCompleted = "transfer.completed"
)

type AccountOpened struct {
	EventID       string          `json:"event_id"`
	AccountID     int64           `json:"account_id"`
	Number        string          `json:"number"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type TransferCompleted struct {
	EventID                 string          `json:"event_id"`
	SourceAccountID         int64           `json:"source_account_id"`
	TargetAccountID         int64           `json:"target_account_id"`
	Amount                  decimal.Decimal `json:"amount"`
	DepositTransactionID    int64           `json:"deposit_transaction_id"`
	WithdrawalTransactionID int64           `json:"withdrawal_transaction_id"`
	OccurredAt              time.Time       `json:"occurred_at"`
}
