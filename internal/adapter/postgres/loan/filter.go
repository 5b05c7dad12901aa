package loan

import (
	"time"

	"github.com/google/uuid"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// Filter defines parameters for listing loans.
type Filter struct {
	// MemberID restricts the listing to one borrower.
	MemberID *uuid.UUID

	// ItemID restricts the listing to one catalog item.
	ItemID *uuid.UUID

	// Statuses restricts to the given loan states. Empty means all.
	Statuses []domain.LoanStatus

	// DueBefore keeps only loans whose due_date is strictly before the
	// given instant. This is how the overdue scan selects candidates.
	DueBefore *time.Time

	// WithoutScanFineOn excludes loans that already have an
	// OVERDUE_SCAN fine assessed on the given calendar day. This is the
	// idempotency pre-filter of the overdue scan; the authoritative
	// guard is the unique index on (loan_id, fine_date).
	WithoutScanFineOn *time.Time

	// Limit is the maximum number of loans to return. Default: 100, max: 1000.
	Limit int

	// Offset is the number of loans to skip.
	Offset int
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// normalize applies defaults and clamps values.
func (f *Filter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
