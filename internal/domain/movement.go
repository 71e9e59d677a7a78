package domain

import "time"

type MovementStatus string

const (
	MovementStatusWaiting   MovementStatus = "waiting"
	MovementStatusCompleted MovementStatus = "completed"
	MovementStatusFailed    MovementStatus = "failed"
)

// Deposit is a unilateral credit to one account. Rows are appended in the
// same transaction as the balance update and are immutable afterwards.
type Deposit struct {
	ID             int64
	AccountID      int64
	Amount         int64
	Status         MovementStatus
	Message        string
	IdempotencyKey *string
	CreatedAt      time.Time
}

// Transfer moves funds between two distinct accounts. An insufficient-funds
// outcome is recorded as a Failed row with no balance mutation; it is a
// reported result, not an error. FeeAmount and DiscountedFee are
// informational and move no money.
type Transfer struct {
	ID                   int64
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               int64
	FeeAmount            int64
	DiscountedFee        int64
	Status               MovementStatus
	Message              string
	IdempotencyKey       *string
	CreatedAt            time.Time
}
