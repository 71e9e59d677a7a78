package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joonsp/bankcore/internal/domain"
)

const accountColumns = `id, account_number, member_id, balance, version,
	status, created_at, deleted_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

// GetForUpdate takes a row-level exclusive lock held until the enclosing
// transaction commits or rolls back.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

// UpdateBalance is conditional on the stored version being newVersion-1, so a
// write racing past the row lock can never silently overwrite an increment.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id int64, newBalance int64, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, version = $2 WHERE id = $3 AND version = $4`,
		newBalance, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrVersionConflict)
	}
	return nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO accounts (account_number, member_id, balance, version, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		account.AccountNumber, account.MemberID, account.Balance,
		account.Version, account.Status, account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, accountNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByAccountNumber: %w", err)
	}
	return exists, nil
}

func (r *AccountRepository) GetByMemberID(ctx context.Context, memberID int64) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE member_id = $1 ORDER BY created_at`, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByMemberID: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByMemberID: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByMemberID: rows: %w", err)
	}
	return accounts, nil
}

// SumBalances is a read-only aggregate; it does not take locks and reflects a
// snapshot consistent with whatever transfers have committed.
func (r *AccountRepository) SumBalances(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE deleted_at IS NULL`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("SumBalances: %w", err)
	}
	return total, nil
}

// Close soft-deletes the account. The row stays in place because ledger
// entries keep referencing it.
func (r *AccountRepository) Close(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET status = $1, deleted_at = $2 WHERE id = $3 AND deleted_at IS NULL`,
		domain.AccountStatusUnregistered, at, id,
	)
	if err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Close: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Close: %w", domain.ErrNotFound)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.AccountNumber, &a.MemberID, &a.Balance, &a.Version,
		&a.Status, &a.CreatedAt, &a.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
