// Package ledger is the single-writer command processor that owns all
// mutable account state. Commands from any number of goroutines are queued
// on one channel and executed strictly one at a time, which is the only
// concurrency control the store needs.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accountio/ledger-service/internal/interfaces"
	"github.com/accountio/ledger-service/internal/models"
	"github.com/accountio/ledger-service/internal/models/events"
	"github.com/accountio/ledger-service/internal/pagination"
)

// ErrLedgerClosed is returned for commands that were still queued when the
// ledger shut down, and for sends attempted after shutdown.
var ErrLedgerClosed = errors.New("ledger closed")

// commandBuffer bounds how many commands may wait in the mailbox before
// senders block.
const commandBuffer = 64

// Ledger is the account ledger actor. Construct it with New, which starts
// the worker goroutine; call Close to stop it.
type Ledger struct {
	store     interfaces.AccountStore
	pager     *pagination.Paginator
	publisher interfaces.EventPublisher
	logger    *slog.Logger

	commands chan command
	closing  chan struct{}
	done     chan struct{}
	stop     sync.Once

	// transfersByKey replays idempotent transfers without moving funds
	// twice. Touched only by the worker goroutine.
	transfersByKey map[string]models.TransferPair
}

// New wires the actor to the store it exclusively owns and starts its
// worker goroutine.
func New(store interfaces.AccountStore, pager *pagination.Paginator, publisher interfaces.EventPublisher, logger *slog.Logger) *Ledger {
	l := &Ledger{
		store:          store,
		pager:          pager,
		publisher:      publisher,
		logger:         logger,
		commands:       make(chan command, commandBuffer),
		closing:        make(chan struct{}),
		done:           make(chan struct{}),
		transfersByKey: make(map[string]models.TransferPair),
	}
	go l.run()
	return l
}

// Close stops the worker. Commands already dequeued run to completion;
// commands still queued are failed with ErrLedgerClosed. Close blocks until
// the worker has exited and is safe to call more than once.
func (l *Ledger) Close() {
	l.stop.Do(func() { close(l.closing) })
	<-l.done
}

func (l *Ledger) run() {
	defer close(l.done)
	for {
		select {
		case cmd := <-l.commands:
			l.dispatch(cmd)
		case <-l.closing:
			l.drain()
			return
		}
	}
}

// drain fails every command still queued so no caller is left waiting on an
// unresolved reply.
func (l *Ledger) drain() {
	for {
		select {
		case cmd := <-l.commands:
			cmd.reply <- result{err: ErrLedgerClosed}
		default:
			return
		}
	}
}

// dispatch executes one command and resolves its reply exactly once. A
// panicking command resolves the reply with a generic failure instead of
// killing the loop or hanging the caller.
func (l *Ledger) dispatch(cmd command) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("ledger command panicked", "command", cmd.kind.String(), "panic", r)
			cmd.reply <- result{err: fmt.Errorf("internal error executing %s command: %v", cmd.kind, r)}
		}
	}()

	var res result
	switch cmd.kind {
	case cmdCreateAccount:
		res.account, res.err = l.createAccount(cmd.initialAmount)
	case cmdGetAccount:
		res.account, res.err = l.store.ByID(cmd.id)
	case cmdCloseAccount:
		res.account, res.err = l.closeAccount(cmd.id)
	case cmdGetBalance:
		res.balance, res.err = l.accountBalance(cmd.id)
	case cmdTransfer:
		res.pair, res.err = l.transferCommand(cmd.id, cmd.targetID, cmd.amount, cmd.idempotencyKey)
	case cmdListAccounts:
		res.page, res.err = l.listAccounts(cmd.cursor, cmd.limit)
	default:
		res.err = fmt.Errorf("unknown command kind %d", cmd.kind)
	}
	if res.err != nil {
		l.logger.Debug("ledger command failed", "command", cmd.kind.String(), "error", res.err)
	}
	cmd.reply <- res
}

// send enqueues a command and waits for its resolution. The context bounds
// the caller's wait only; a command that has been dequeued always runs to
// completion.
func (l *Ledger) send(ctx context.Context, cmd command) (result, error) {
	cmd.reply = make(chan result, 1)
	select {
	case l.commands <- cmd:
	case <-l.closing:
		return result{}, ErrLedgerClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res, res.err
	case <-l.done:
		// Prefer a resolved reply over the shutdown signal.
		select {
		case res := <-cmd.reply:
			return res, res.err
		default:
			return result{}, ErrLedgerClosed
		}
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// CreateAccount allocates a new open account. A positive initial amount is
// funded by a transfer from the pay-in account, and the returned snapshot
// includes the resulting deposit.
func (l *Ledger) CreateAccount(ctx context.Context, initialAmount decimal.Decimal) (models.Account, error) {
	res, err := l.send(ctx, command{kind: cmdCreateAccount, initialAmount: initialAmount})
	return res.account, err
}

// Account returns the account snapshot for id.
func (l *Ledger) Account(ctx context.Context, id int64) (models.Account, error) {
	res, err := l.send(ctx, command{kind: cmdGetAccount, id: id})
	return res.account, err
}

// CloseAccount transitions the account to CLOSED. Closing an already closed
// account is a no-op; closing an account with a non-zero balance fails with
// models.InvalidBalanceError.
func (l *Ledger) CloseAccount(ctx context.Context, id int64) (models.Account, error) {
	res, err := l.send(ctx, command{kind: cmdCloseAccount, id: id})
	return res.account, err
}

// Balance returns the derived balance for id.
func (l *Ledger) Balance(ctx context.Context, id int64) (decimal.Decimal, error) {
	res, err := l.send(ctx, command{kind: cmdGetBalance, id: id})
	return res.balance, err
}

// Transfer moves amount from sourceID to targetID, creating a double-entry
// pair atomically. A non-empty idempotencyKey makes the transfer replayable:
// repeating the key returns the originally created pair.
func (l *Ledger) Transfer(ctx context.Context, sourceID, targetID int64, amount decimal.Decimal, idempotencyKey string) (models.TransferPair, error) {
	res, err := l.send(ctx, command{
		kind:           cmdTransfer,
		id:             sourceID,
		targetID:       targetID,
		amount:         amount,
		idempotencyKey: idempotencyKey,
	})
	return res.pair, err
}

// ListAccounts returns one page of accounts after the id encoded in cursor,
// together with the cursor for the next page. An empty cursor starts from
// the beginning.
func (l *Ledger) ListAccounts(ctx context.Context, cursor string, limit int) (models.AccountPage, error) {
	res, err := l.send(ctx, command{kind: cmdListAccounts, cursor: cursor, limit: limit})
	return res.page, err
}

func (l *Ledger) createAccount(initialAmount decimal.Decimal) (models.Account, error) {
	id := l.store.NextAccountID()
	account := l.store.Save(models.Account{
		ID:     id,
		Number: models.AccountNumber(id),
		Status: models.StatusOpen,
	})
	if initialAmount.IsPositive() {
		payIn, err := l.store.ByID(l.store.PayInAccountID())
		if err != nil {
			return models.Account{}, err
		}
		l.bookTransfer(payIn, account, initialAmount)
		account, err = l.store.ByID(id)
		if err != nil {
			return models.Account{}, err
		}
	}
	l.publish(events.TopicAccountOpened, events.AccountOpened{
		EventID:       uuid.NewString(),
		AccountID:     account.ID,
		Number:        account.Number,
		InitialAmount: initialAmount,
		OccurredAt:    time.Now(),
	})
	return account, nil
}

func (l *Ledger) closeAccount(id int64) (models.Account, error) {
	account, err := l.store.ByID(id)
	if err != nil {
		return models.Account{}, err
	}
	if account.Status == models.StatusClosed {
		return account, nil
	}
	balance := l.store.Balance(account)
	if !balance.IsZero() {
		return models.Account{}, models.InvalidBalanceError{Available: balance, Expected: decimal.Zero}
	}
	account.Status = models.StatusClosed
	return l.store.Save(account), nil
}

func (l *Ledger) accountBalance(id int64) (decimal.Decimal, error) {
	account, err := l.store.ByID(id)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return l.store.Balance(account), nil
}

// transferCommand enforces the transfer invariants in their fixed order:
// source existence, target existence, source status, target status, then
// balance. The precedence decides which error the caller sees when several
// violations hold at once.
func (l *Ledger) transferCommand(sourceID, targetID int64, amount decimal.Decimal, idempotencyKey string) (models.TransferPair, error) {
	if idempotencyKey != "" {
		if pair, ok := l.transfersByKey[idempotencyKey]; ok {
			return pair, nil
		}
	}
	source, err := l.store.ByID(sourceID)
	if err != nil {
		return models.TransferPair{}, err
	}
	target, err := l.store.ByID(targetID)
	if err != nil {
		return models.TransferPair{}, err
	}
	if source.Status != models.StatusOpen {
		return models.TransferPair{}, models.InvalidStatusError{Status: source.Status}
	}
	if target.Status != models.StatusOpen {
		return models.TransferPair{}, models.InvalidStatusError{Status: target.Status}
	}
	balance := l.store.Balance(source)
	if balance.LessThan(amount) {
		return models.TransferPair{}, models.InvalidBalanceError{Available: balance, Expected: amount}
	}
	pair := l.bookTransfer(source, target, amount)
	if idempotencyKey != "" {
		l.transfersByKey[idempotencyKey] = pair
	}
	l.publish(events.TopicTransferCompleted, events.TransferCompleted{
		EventID:                 uuid.NewString(),
		SourceAccountID:         sourceID,
		TargetAccountID:         targetID,
		Amount:                  amount,
		DepositTransactionID:    pair.Deposit.ID,
		WithdrawalTransactionID: pair.Withdrawal.ID,
		OccurredAt:              time.Now(),
	})
	return pair, nil
}

// bookTransfer creates the double-entry pair: a deposit on the target with
// the source as counterparty, and a withdrawal on the source with the target
// as counterparty. Both share a timestamp and have consecutive ids.
func (l *Ledger) bookTransfer(source, target models.Account, amount decimal.Decimal) models.TransferPair {
	now := time.Now()
	deposit := models.Transaction{
		ID:                    l.store.NextTransactionID(),
		Date:                  now,
		Type:                  models.TypeDeposit,
		CounterpartyAccountID: source.ID,
		Amount:                amount,
	}
	withdrawal := models.Transaction{
		ID:                    l.store.NextTransactionID(),
		Date:                  now,
		Type:                  models.TypeWithdrawal,
		CounterpartyAccountID: target.ID,
		Amount:                amount,
	}
	if source.ID == target.ID {
		// Self-transfer: both entries land on the same account so neither
		// copy may overwrite the other. The pair nets to zero.
		source.Transactions = append(source.Transactions, deposit, withdrawal)
		l.store.Save(source)
		return models.TransferPair{Deposit: deposit, Withdrawal: withdrawal}
	}
	target.Transactions = append(target.Transactions, deposit)
	source.Transactions = append(source.Transactions, withdrawal)
	l.store.Save(target)
	l.store.Save(source)
	return models.TransferPair{Deposit: deposit, Withdrawal: withdrawal}
}

func (l *Ledger) listAccounts(cursor string, limit int) (models.AccountPage, error) {
	boundary := l.pager.Decode(cursor)
	all := l.store.ListAll()
	page := make([]models.Account, 0, min(limit, len(all)))
	for _, account := range all {
		if account.ID <= boundary {
			continue
		}
		page = append(page, account)
		if len(page) == limit {
			break
		}
	}
	next, err := l.pager.NextCursor(page)
	if err != nil {
		return models.AccountPage{}, err
	}
	return models.AccountPage{Accounts: page, NextCursor: next}, nil
}

// publish hands a committed event to the publisher. Failures are logged and
// never surfaced to the command caller.
func (l *Ledger) publish(topic string, event any) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(topic, event); err != nil {
		l.logger.Warn("event publish failed", "topic", topic, "error", err)
	}
}
