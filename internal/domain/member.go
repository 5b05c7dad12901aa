package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member is a registered borrower.
type Member struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberPosture is the derived snapshot of a member's lending standing
// used for eligibility decisions. It is recomputed on demand from loan
// and fine records and never cached.
type MemberPosture struct {
	ActiveLoans      int
	OverdueLoans     int
	UnpaidFines      int
	UnpaidFinesCents int64
}

// HasUnpaidFines reports whether the member owes anything.
func (p MemberPosture) HasUnpaidFines() bool { return p.UnpaidFines > 0 }
