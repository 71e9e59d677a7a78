package domain

import "time"

type AccountStatus string

const (
	AccountStatusRegistered   AccountStatus = "registered"
	AccountStatusActive       AccountStatus = "active"
	AccountStatusInactive     AccountStatus = "inactive"
	AccountStatusUnregistered AccountStatus = "unregistered"
)

// Account holds a non-negative balance in the smallest currency unit.
// Balance is mutated only by the movement engine, under a row lock and a
// version check. DeletedAt marks soft deletion; rows referenced by ledger
// entries are never physically removed.
type Account struct {
	ID            int64
	AccountNumber string
	MemberID      int64
	Balance       int64
	Version       int64
	Status        AccountStatus
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

func (a *Account) Closed() bool {
	return a.DeletedAt != nil || a.Status == AccountStatusUnregistered
}
