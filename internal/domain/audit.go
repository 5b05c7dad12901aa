package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityType identifies which entity an audit record refers to.
type EntityType string

const (
	EntityTypeItem EntityType = "ITEM"
	EntityTypeLoan EntityType = "LOAN"
	EntityTypeFine EntityType = "FINE"
)

func (t EntityType) String() string { return string(t) }

func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeItem, EntityTypeLoan, EntityTypeFine:
		return true
	}
	return false
}

// AuditAction is the operation recorded in the audit trail.
type AuditAction string

const (
	AuditActionLoanCreated  AuditAction = "LOAN_CREATED"
	AuditActionLoanReturned AuditAction = "LOAN_RETURNED"
	AuditActionLoanExtended AuditAction = "LOAN_EXTENDED"
	AuditActionLoanLost     AuditAction = "LOAN_LOST"
	AuditActionFineCreated  AuditAction = "FINE_CREATED"
	AuditActionFinePaid     AuditAction = "FINE_PAID"
	AuditActionFineForgiven AuditAction = "FINE_FORGIVEN"
)

func (a AuditAction) String() string { return string(a) }

// AuditRecord is one append-only entry in the audit trail. Every
// state-changing operation emits exactly one record; emission is
// fire-and-forget and must never roll back the business transaction.
type AuditRecord struct {
	ID         uuid.UUID
	Actor      string
	EntityType EntityType
	EntityID   *uuid.UUID
	Action     AuditAction
	Changes    map[string]any
	CreatedAt  time.Time
}
