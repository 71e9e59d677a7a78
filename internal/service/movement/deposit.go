package movement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/joonsp/bankcore/internal/domain"
	"github.com/joonsp/bankcore/internal/logging"
)

type DepositRequest struct {
	AccountID      int64
	Amount         int64
	OccurredAt     time.Time
	IdempotencyKey string
}

// Deposit credits the account and appends the ledger record in one atomic
// unit. On any failure neither the balance nor the ledger is touched.
func (s *Service) Deposit(ctx context.Context, req DepositRequest) (*domain.Deposit, error) {
	if err := validateDeposit(req); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	if req.IdempotencyKey != "" {
		prior, err := s.ledger.GetDepositByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return prior, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Deposit: %w", err)
		}
	}

	d, err := withConflictRetry(func() (*domain.Deposit, error) {
		return s.executeDeposit(ctx, req)
	})
	if err != nil {
		// A concurrent retry with the same key may have won the insert race;
		// the stored record is the authoritative outcome.
		if req.IdempotencyKey != "" && isUniqueViolation(err) {
			return s.ledger.GetDepositByIdempotencyKey(ctx, req.IdempotencyKey)
		}
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	logging.FromContext(ctx).Info("deposit completed",
		"deposit_id", d.ID,
		"account_id", d.AccountID,
		"amount", d.Amount,
	)

	s.notifier.DepositSettled(ctx, d)
	return d, nil
}

func (s *Service) executeDeposit(ctx context.Context, req DepositRequest) (*domain.Deposit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executeDeposit: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("executeDeposit: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("executeDeposit: %w", err)
	}

	if account.Closed() {
		return nil, fmt.Errorf("executeDeposit: %w", domain.ErrAccountClosed)
	}

	if req.Amount > math.MaxInt64-account.Balance {
		return nil, fmt.Errorf("executeDeposit: %w", domain.ErrAmountOverflow)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance+req.Amount, account.Version+1); err != nil {
		return nil, fmt.Errorf("executeDeposit: %w", err)
	}

	d := &domain.Deposit{
		AccountID:      account.ID,
		Amount:         req.Amount,
		Status:         domain.MovementStatusCompleted,
		Message:        "deposit completed",
		IdempotencyKey: optionalKey(req.IdempotencyKey),
		CreatedAt:      movementTime(req.OccurredAt),
	}
	if err := s.ledger.CreateDeposit(ctx, tx, d); err != nil {
		return nil, fmt.Errorf("executeDeposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executeDeposit: commit: %w", err)
	}

	return d, nil
}

func validateDeposit(req DepositRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("validateDeposit: %w", domain.ErrInvalidAmount)
	}
	return nil
}

func optionalKey(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}
