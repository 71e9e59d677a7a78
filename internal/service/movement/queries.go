package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joonsp/bankcore/internal/domain"
)

// Ledger reads take no locks: records are immutable once appended.

func (s *Service) DepositsByAccount(ctx context.Context, accountID int64) ([]domain.Deposit, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("DepositsByAccount: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("DepositsByAccount: %w", err)
	}
	deposits, err := s.ledger.DepositsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("DepositsByAccount: %w", err)
	}
	return deposits, nil
}

func (s *Service) DepositsByDateRange(ctx context.Context, start, end time.Time, page, size int) ([]domain.Deposit, int, error) {
	if !end.After(start) {
		return nil, 0, fmt.Errorf("DepositsByDateRange: %w", domain.ErrInvalidRequest)
	}
	if page < 1 || size < 1 {
		return nil, 0, fmt.Errorf("DepositsByDateRange: %w", domain.ErrInvalidRequest)
	}

	deposits, total, err := s.ledger.DepositsByTimeRange(ctx, start, end, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("DepositsByDateRange: %w", err)
	}
	return deposits, total, nil
}

func (s *Service) TransfersByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("TransfersByAccount: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("TransfersByAccount: %w", err)
	}
	transfers, err := s.ledger.TransfersByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("TransfersByAccount: %w", err)
	}
	return transfers, nil
}

// TotalBalance sums every open account. It is a snapshot aggregate, not
// transactionally fenced against in-flight transfers.
func (s *Service) TotalBalance(ctx context.Context) (int64, error) {
	total, err := s.accounts.SumBalances(ctx)
	if err != nil {
		return 0, fmt.Errorf("TotalBalance: %w", err)
	}
	return total, nil
}
