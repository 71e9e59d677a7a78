package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joonsp/bankcore/internal/domain"
)

const depositColumns = `id, account_id, amount, status, message, idempotency_key, created_at`

const transferColumns = `id, source_account_id, destination_account_id, amount,
	fee_amount, discounted_fee, status, message, idempotency_key, created_at`

// LedgerRepository appends immutable deposit and transfer records. Writes go
// through the caller's transaction so the ledger row and the balance update
// commit as one unit.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreateDeposit(ctx context.Context, tx *sql.Tx, d *domain.Deposit) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO deposits (account_id, amount, status, message, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		d.AccountID, d.Amount, d.Status, d.Message, d.IdempotencyKey, d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("CreateDeposit: %w", err)
	}
	return nil
}

func (r *LedgerRepository) CreateTransfer(ctx context.Context, tx *sql.Tx, t *domain.Transfer) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO transfers (source_account_id, destination_account_id, amount,
			fee_amount, discounted_fee, status, message, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		t.SourceAccountID, t.DestinationAccountID, t.Amount,
		t.FeeAmount, t.DiscountedFee, t.Status, t.Message, t.IdempotencyKey, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("CreateTransfer: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetDepositByIdempotencyKey(ctx context.Context, key string) (*domain.Deposit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE idempotency_key = $1`, key,
	)
	d, err := scanDeposit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetDepositByIdempotencyKey: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetDepositByIdempotencyKey: %w", err)
	}
	return d, nil
}

func (r *LedgerRepository) GetTransferByIdempotencyKey(ctx context.Context, key string) (*domain.Transfer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE idempotency_key = $1`, key,
	)
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetTransferByIdempotencyKey: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetTransferByIdempotencyKey: %w", err)
	}
	return t, nil
}

func (r *LedgerRepository) DepositsByAccount(ctx context.Context, accountID int64) ([]domain.Deposit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+depositColumns+` FROM deposits
		WHERE account_id = $1 ORDER BY created_at DESC, id DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("DepositsByAccount: %w", err)
	}
	defer rows.Close()

	return collectDeposits(rows, "DepositsByAccount")
}

func (r *LedgerRepository) DepositsByTimeRange(ctx context.Context, start, end time.Time, limit, offset int) ([]domain.Deposit, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM deposits WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("DepositsByTimeRange: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+depositColumns+` FROM deposits
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, id LIMIT $3 OFFSET $4`,
		start, end, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("DepositsByTimeRange: %w", err)
	}
	defer rows.Close()

	deposits, err := collectDeposits(rows, "DepositsByTimeRange")
	if err != nil {
		return nil, 0, err
	}
	return deposits, total, nil
}

// TransfersByAccount returns transfers touching the account on either side.
func (r *LedgerRepository) TransfersByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfers
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY created_at DESC, id DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("TransfersByAccount: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("TransfersByAccount: scan: %w", err)
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TransfersByAccount: rows: %w", err)
	}
	return transfers, nil
}

func collectDeposits(rows *sql.Rows, op string) ([]domain.Deposit, error) {
	var deposits []domain.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		deposits = append(deposits, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return deposits, nil
}

func scanDeposit(s scanner) (*domain.Deposit, error) {
	var d domain.Deposit
	err := s.Scan(
		&d.ID, &d.AccountID, &d.Amount, &d.Status, &d.Message,
		&d.IdempotencyKey, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanTransfer(s scanner) (*domain.Transfer, error) {
	var t domain.Transfer
	err := s.Scan(
		&t.ID, &t.SourceAccountID, &t.DestinationAccountID, &t.Amount,
		&t.FeeAmount, &t.DiscountedFee, &t.Status, &t.Message,
		&t.IdempotencyKey, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
