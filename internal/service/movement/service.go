// Package movement is the balance engine: the only component allowed to
// mutate account balances. Every mutation happens inside one database
// transaction together with its ledger record, under row locks taken in a
// fixed global order.
package movement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/joonsp/bankcore/internal/domain"
	"github.com/joonsp/bankcore/internal/notify"
)

// Version conflicts are transient: re-read, re-check, re-apply a bounded
// number of times before surfacing to the caller.
const maxConflictRetries = 3

type accountRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id int64, newBalance int64, newVersion int64) error
	SumBalances(ctx context.Context) (int64, error)
}

type ledgerRepo interface {
	CreateDeposit(ctx context.Context, tx *sql.Tx, d *domain.Deposit) error
	CreateTransfer(ctx context.Context, tx *sql.Tx, t *domain.Transfer) error
	GetDepositByIdempotencyKey(ctx context.Context, key string) (*domain.Deposit, error)
	GetTransferByIdempotencyKey(ctx context.Context, key string) (*domain.Transfer, error)
	DepositsByAccount(ctx context.Context, accountID int64) ([]domain.Deposit, error)
	DepositsByTimeRange(ctx context.Context, start, end time.Time, limit, offset int) ([]domain.Deposit, int, error)
	TransfersByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error)
}

type memberRepo interface {
	GetGrade(ctx context.Context, id int64) (domain.Grade, error)
}

type Service struct {
	accounts accountRepo
	ledger   ledgerRepo
	members  memberRepo
	notifier notify.Notifier
	db       *sql.DB
}

func NewService(
	accounts accountRepo,
	ledger ledgerRepo,
	members memberRepo,
	notifier notify.Notifier,
	db *sql.DB,
) *Service {
	return &Service{
		accounts: accounts,
		ledger:   ledger,
		members:  members,
		notifier: notifier,
		db:       db,
	}
}

// withConflictRetry runs fn until it succeeds, fails with a non-transient
// error, or the retry budget runs out.
func withConflictRetry[T any](fn func() (T, error)) (T, error) {
	var zero T
	var err error
	for range maxConflictRetries {
		var out T
		out, err = fn()
		if err == nil || !errors.Is(err, domain.ErrVersionConflict) {
			return out, err
		}
	}
	return zero, fmt.Errorf("withConflictRetry: retries exhausted: %w", err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func movementTime(occurredAt time.Time) time.Time {
	if occurredAt.IsZero() {
		return time.Now().UTC()
	}
	return occurredAt.UTC()
}
