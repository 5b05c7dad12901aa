package domain

import (
	"time"

	"github.com/google/uuid"
)

// Item is a catalogable work with a physical stock of copies.
//
// Invariant: 0 <= AvailableCopies <= TotalCopies, and AvailableCopies
// equals TotalCopies minus the count of loans on this item in state
// ACTIVE or OVERDUE. The counter is mutated only through conditional
// updates in the item repository.
type Item struct {
	ID              uuid.UUID
	Title           string
	Author          string
	TotalCopies     int
	AvailableCopies int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasAvailableCopy reports whether at least one copy is on the shelf.
// Advisory only: the authoritative check is the guarded decrement inside
// the loan-creation transaction.
func (i *Item) HasAvailableCopy() bool {
	return i.AvailableCopies > 0
}
