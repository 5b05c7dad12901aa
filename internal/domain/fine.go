package domain

import (
	"time"

	"github.com/google/uuid"
)

// Fine is an overdue penalty attached to a loan. Amounts are integer
// cents, no floating point anywhere in money math. A fine is settled
// (paid or forgiven) exactly once and never deleted.
type Fine struct {
	ID          uuid.UUID
	LoanID      uuid.UUID
	MemberID    uuid.UUID
	AmountCents int64
	Reason      string
	Origin      FineOrigin
	// FineDate is the calendar day the fine was assessed. Together with
	// Origin it backs the one-scan-fine-per-loan-per-day uniqueness.
	FineDate  time.Time
	IsPaid    bool
	PaidDate  *time.Time
	PaidBy    *string
	CreatedAt time.Time
}

// IsSettled reports whether the fine has already been paid or forgiven.
func (f *Fine) IsSettled() bool { return f.IsPaid }
