package domain

import (
	"time"

	"github.com/google/uuid"
)

// Loan is a single lending of one copy of an item to a member.
// Loans are append-only history: they are never deleted, only
// transitioned between states.
type Loan struct {
	ID         uuid.UUID
	MemberID   uuid.UUID
	ItemID     uuid.UUID
	LoanDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     LoanStatus
	Extensions int
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsReturnable reports whether the loan can transition to RETURNED.
func (l *Loan) IsReturnable() bool {
	return l.Status.IsOutstanding()
}

// IsPastDue reports whether the loan's due date has passed at the given
// time. Grace period is not considered here; that is fine-calculator
// territory.
func (l *Loan) IsPastDue(now time.Time) bool {
	return l.Status.IsOutstanding() && l.DueDate.Before(now)
}
