package lending

import (
	"strings"

	"github.com/google/uuid"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// CreateLoanInput holds the parameters for checking out an item.
type CreateLoanInput struct {
	MemberID uuid.UUID
	ItemID   uuid.UUID
	// LoanPeriodDays overrides the configured default period when set.
	LoanPeriodDays *int
	Notes          *string
}

// Validate checks all fields and collects all errors.
func (i CreateLoanInput) Validate(maxPeriodDays int) error {
	var errs []domain.FieldError

	if i.MemberID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "member_id", Message: "required"})
	}
	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if i.LoanPeriodDays != nil && (*i.LoanPeriodDays < 1 || *i.LoanPeriodDays > maxPeriodDays) {
		errs = append(errs, domain.FieldError{Field: "loan_period_days", Message: "out of range"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ReturnLoanInput holds the parameters for returning a loan.
type ReturnLoanInput struct {
	LoanID uuid.UUID
	Notes  *string
}

// Validate checks all fields and collects all errors.
func (i ReturnLoanInput) Validate() error {
	if i.LoanID == uuid.Nil {
		return &domain.ValidationError{Errors: []domain.FieldError{
			{Field: "loan_id", Message: "required"},
		}}
	}
	return nil
}

// ExtendLoanInput holds the parameters for extending a loan's due date.
type ExtendLoanInput struct {
	LoanID uuid.UUID
	// Days overrides the configured default extension length when set.
	Days   *int
	Reason string
}

// Validate checks all fields and collects all errors.
func (i ExtendLoanInput) Validate(maxExtensionDays int) error {
	var errs []domain.FieldError

	if i.LoanID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "loan_id", Message: "required"})
	}
	if i.Days != nil && (*i.Days < 1 || *i.Days > maxExtensionDays) {
		errs = append(errs, domain.FieldError{Field: "days", Message: "out of range"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// MarkLostInput holds the parameters for writing off a lost copy.
type MarkLostInput struct {
	LoanID uuid.UUID
	Reason string
}

// Validate checks all fields and collects all errors.
func (i MarkLostInput) Validate() error {
	var errs []domain.FieldError

	if i.LoanID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "loan_id", Message: "required"})
	}
	if strings.TrimSpace(i.Reason) == "" {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
