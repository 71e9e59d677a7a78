package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/joonsp/bankcore/internal/domain"
	"github.com/joonsp/bankcore/internal/logging"
)

const accountNumberAttempts = 5

type accountRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByMemberID(ctx context.Context, memberID int64) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	Close(ctx context.Context, id int64, at time.Time) error
}

type memberChecker interface {
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
}

type AccountService struct {
	accounts accountRepo
	members  memberChecker
}

func NewAccountService(accounts accountRepo, members memberChecker) *AccountService {
	return &AccountService{accounts: accounts, members: members}
}

// OpenAccount creates a zero-balance account bound to an existing member.
func (s *AccountService) OpenAccount(ctx context.Context, memberID int64) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("OpenAccount: %w", domain.ErrMemberNotFound)
		}
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	acctNum, err := s.uniqueAccountNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	account := &domain.Account{
		AccountNumber: acctNum,
		MemberID:      memberID,
		Balance:       0,
		Version:       0,
		Status:        domain.AccountStatusActive,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	log.Info("account opened",
		"account_id", account.ID,
		"account_number", account.AccountNumber,
		"member_id", memberID,
	)

	return account, nil
}

// CloseAccount soft-deletes the account; ledger history stays intact.
func (s *AccountService) CloseAccount(ctx context.Context, accountID int64) error {
	if err := s.accounts.Close(ctx, accountID, time.Now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("CloseAccount: %w", domain.ErrAccountNotFound)
		}
		return fmt.Errorf("CloseAccount: %w", err)
	}

	logging.FromContext(ctx).Info("account closed", "account_id", accountID)
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GetAccount: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) GetMemberAccounts(ctx context.Context, memberID int64) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("GetMemberAccounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) uniqueAccountNumber(ctx context.Context) (string, error) {
	for range accountNumberAttempts {
		acctNum, err := generateAccountNumber()
		if err != nil {
			return "", err
		}
		exists, err := s.accounts.ExistsByAccountNumber(ctx, acctNum)
		if err != nil {
			return "", err
		}
		if !exists {
			return acctNum, nil
		}
	}
	return "", fmt.Errorf("uniqueAccountNumber: %w", domain.ErrAccountExists)
}

func generateAccountNumber() (string, error) {
	digits := make([]byte, 10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generateAccountNumber: %w", err)
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
