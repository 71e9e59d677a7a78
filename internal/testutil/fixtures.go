package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/joonsp/bankcore/internal/domain"
)

var acctSeq int64

func SeedTestMember(t *testing.T, db *sql.DB, email, name string, grade domain.Grade) *domain.Member {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	m := &domain.Member{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Grade:        grade,
		CreatedAt:    time.Now().UTC(),
	}

	err = db.QueryRow(
		`INSERT INTO members (email, name, password_hash, grade, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		m.Email, m.Name, m.PasswordHash, m.Grade, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		t.Fatalf("seed test member %s: %v", email, err)
	}
	return m
}

func SeedTestAccount(t *testing.T, db *sql.DB, memberID int64, balance int64) *domain.Account {
	t.Helper()

	acctSeq++
	a := &domain.Account{
		AccountNumber: fmt.Sprintf("90%08d", acctSeq),
		MemberID:      memberID,
		Balance:       balance,
		Version:       0,
		Status:        domain.AccountStatusActive,
		CreatedAt:     time.Now().UTC(),
	}

	err := db.QueryRow(
		`INSERT INTO accounts (account_number, member_id, balance, version, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		a.AccountNumber, a.MemberID, a.Balance, a.Version, a.Status, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		t.Fatalf("seed test account for member %d: %v", memberID, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID int64) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %d: %v", accountID, err)
	}
	return balance
}

func CountDeposits(t *testing.T, db *sql.DB, accountID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM deposits WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		t.Fatalf("count deposits for account %d: %v", accountID, err)
	}
	return count
}

func CountTransfers(t *testing.T, db *sql.DB, accountID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transfers WHERE source_account_id = $1 OR destination_account_id = $1`,
		accountID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count transfers for account %d: %v", accountID, err)
	}
	return count
}
