package movement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/joonsp/bankcore/internal/domain"
	"github.com/joonsp/bankcore/internal/fee"
	"github.com/joonsp/bankcore/internal/logging"
)

type TransferRequest struct {
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               int64
	Fee                  int64
	OccurredAt           time.Time
	IdempotencyKey       string
}

// Transfer moves funds between two accounts. The debit, the credit and the
// ledger record commit as one unit, so the pair sum is invariant across every
// successful transfer. Insufficient funds is a reported outcome: the returned
// transfer carries a Failed status, both balances stay untouched, and no
// error is raised.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*domain.Transfer, error) {
	if err := validateTransfer(req); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	if req.IdempotencyKey != "" {
		prior, err := s.ledger.GetTransferByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return prior, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Transfer: %w", err)
		}
	}

	t, err := withConflictRetry(func() (*domain.Transfer, error) {
		return s.executeTransfer(ctx, req)
	})
	if err != nil {
		// A concurrent retry with the same key may have won the insert race;
		// the stored record is the authoritative outcome.
		if req.IdempotencyKey != "" && isUniqueViolation(err) {
			return s.ledger.GetTransferByIdempotencyKey(ctx, req.IdempotencyKey)
		}
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	logging.FromContext(ctx).Info("transfer recorded",
		"transfer_id", t.ID,
		"source_account_id", t.SourceAccountID,
		"destination_account_id", t.DestinationAccountID,
		"amount", t.Amount,
		"status", t.Status,
	)

	// Strictly after commit: no account lock is held across the sink call.
	s.notifier.TransferSettled(ctx, t)
	return t, nil
}

func (s *Service) executeTransfer(ctx context.Context, req TransferRequest) (*domain.Transfer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := s.lockAccountPair(ctx, tx, req.SourceAccountID, req.DestinationAccountID)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: %w", err)
	}
	source, destination := locked[req.SourceAccountID], locked[req.DestinationAccountID]

	if source.Closed() {
		return nil, fmt.Errorf("executeTransfer: source: %w", domain.ErrAccountClosed)
	}
	if destination.Closed() {
		return nil, fmt.Errorf("executeTransfer: destination: %w", domain.ErrAccountClosed)
	}

	now := movementTime(req.OccurredAt)

	if source.Balance < req.Amount {
		t := &domain.Transfer{
			SourceAccountID:      source.ID,
			DestinationAccountID: destination.ID,
			Amount:               req.Amount,
			FeeAmount:            req.Fee,
			DiscountedFee:        req.Fee,
			Status:               domain.MovementStatusFailed,
			Message:              "insufficient funds",
			IdempotencyKey:       optionalKey(req.IdempotencyKey),
			CreatedAt:            now,
		}
		if err := s.ledger.CreateTransfer(ctx, tx, t); err != nil {
			return nil, fmt.Errorf("executeTransfer: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("executeTransfer: commit: %w", err)
		}
		return t, nil
	}

	if req.Amount > math.MaxInt64-destination.Balance {
		return nil, fmt.Errorf("executeTransfer: destination: %w", domain.ErrAmountOverflow)
	}

	discounted, err := s.discountedFee(ctx, source.MemberID, req.Fee)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, source.ID, source.Balance-req.Amount, source.Version+1); err != nil {
		return nil, fmt.Errorf("executeTransfer: debit source: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, destination.ID, destination.Balance+req.Amount, destination.Version+1); err != nil {
		return nil, fmt.Errorf("executeTransfer: credit destination: %w", err)
	}

	t := &domain.Transfer{
		SourceAccountID:      source.ID,
		DestinationAccountID: destination.ID,
		Amount:               req.Amount,
		FeeAmount:            req.Fee,
		DiscountedFee:        discounted,
		Status:               domain.MovementStatusCompleted,
		Message:              "transfer completed",
		IdempotencyKey:       optionalKey(req.IdempotencyKey),
		CreatedAt:            now,
	}
	if err := s.ledger.CreateTransfer(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("executeTransfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executeTransfer: commit: %w", err)
	}

	return t, nil
}

// lockAccountPair acquires both row locks in ascending account-ID order,
// never in caller order. Two concurrent opposite-direction transfers would
// otherwise form a lock cycle.
func (s *Service) lockAccountPair(ctx context.Context, tx *sql.Tx, sourceID, destinationID int64) (map[int64]*domain.Account, error) {
	first, second := sourceID, destinationID
	if second < first {
		first, second = second, first
	}

	locked := make(map[int64]*domain.Account, 2)
	for _, id := range []int64{first, second} {
		acct, err := s.accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				if id == sourceID {
					return nil, fmt.Errorf("lockAccountPair: %w", domain.ErrSourceAccountNotFound)
				}
				return nil, fmt.Errorf("lockAccountPair: %w", domain.ErrDestinationAccountNotFound)
			}
			return nil, fmt.Errorf("lockAccountPair: %w", err)
		}
		locked[id] = acct
	}
	return locked, nil
}

func (s *Service) discountedFee(ctx context.Context, memberID, feeAmount int64) (int64, error) {
	if feeAmount <= 0 {
		return 0, nil
	}
	grade, err := s.members.GetGrade(ctx, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("discountedFee: %w", domain.ErrMemberNotFound)
		}
		return 0, fmt.Errorf("discountedFee: %w", err)
	}
	return fee.Discount(grade, feeAmount), nil
}

func validateTransfer(req TransferRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("validateTransfer: %w", domain.ErrInvalidAmount)
	}
	if req.SourceAccountID == req.DestinationAccountID {
		return fmt.Errorf("validateTransfer: %w", domain.ErrSelfTransfer)
	}
	return nil
}
