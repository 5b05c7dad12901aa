package fines

import (
	"strings"

	"github.com/google/uuid"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// minForgiveReasonLen is the minimum length of a forgiveness reason;
// forgiving money away needs an auditable explanation.
const minForgiveReasonLen = 10

// PayFineInput holds the parameters for paying a fine.
type PayFineInput struct {
	FineID uuid.UUID
	Method domain.PaymentMethod
	// AmountCents optionally states what the payer hands over. When set
	// it must match the fine exactly; partial payments are rejected.
	AmountCents *int64
}

// Validate checks all fields and collects all errors.
func (i PayFineInput) Validate() error {
	var errs []domain.FieldError

	if i.FineID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "fine_id", Message: "required"})
	}
	if !i.Method.IsValid() {
		errs = append(errs, domain.FieldError{Field: "method", Message: "must be one of CASH, CARD, TRANSFER"})
	}
	if i.AmountCents != nil && *i.AmountCents <= 0 {
		errs = append(errs, domain.FieldError{Field: "amount_cents", Message: "must be > 0"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ForgiveFineInput holds the parameters for forgiving a fine.
type ForgiveFineInput struct {
	FineID uuid.UUID
	Reason string
}

// Validate checks all fields and collects all errors.
func (i ForgiveFineInput) Validate() error {
	var errs []domain.FieldError

	if i.FineID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "fine_id", Message: "required"})
	}
	if len(strings.TrimSpace(i.Reason)) < minForgiveReasonLen {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "at least 10 characters required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
