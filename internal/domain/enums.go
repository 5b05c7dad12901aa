package domain

// LoanStatus represents the lifecycle state of a loan.
//
// Transitions: ACTIVE → OVERDUE → RETURNED, ACTIVE → RETURNED,
// and ACTIVE|OVERDUE → LOST. RETURNED and LOST are terminal.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "ACTIVE"
	LoanStatusOverdue  LoanStatus = "OVERDUE"
	LoanStatusReturned LoanStatus = "RETURNED"
	LoanStatusLost     LoanStatus = "LOST"
)

func (s LoanStatus) String() string { return string(s) }

func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusActive, LoanStatusOverdue, LoanStatusReturned, LoanStatusLost:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusReturned || s == LoanStatusLost
}

// IsOutstanding reports whether the loan still holds a copy
// (counts against the item's available_copies).
func (s LoanStatus) IsOutstanding() bool {
	return s == LoanStatusActive || s == LoanStatusOverdue
}

// PaymentMethod is the closed set of accepted fine payment methods.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

func (m PaymentMethod) String() string { return string(m) }

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// FineOrigin records which workflow created a fine.
type FineOrigin string

const (
	// FineOriginReturn is created at return time for a loan brought back late.
	FineOriginReturn FineOrigin = "RETURN"
	// FineOriginOverdueScan is created by the daily overdue scan for a loan
	// still outstanding. At most one per loan per calendar day.
	FineOriginOverdueScan FineOrigin = "OVERDUE_SCAN"
)

func (o FineOrigin) String() string { return string(o) }

func (o FineOrigin) IsValid() bool {
	switch o {
	case FineOriginReturn, FineOriginOverdueScan:
		return true
	}
	return false
}
