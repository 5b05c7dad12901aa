// Package item implements the Item repository using PostgreSQL.
// The availability counter is only ever mutated through conditional
// single-statement updates; callers rely on the affected-row count to
// detect a failed guard.
package item

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	postgres "github.com/openlibro/biblio-backend/internal/adapter/postgres"
	"github.com/openlibro/biblio-backend/internal/domain"
)

// Repo provides item persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new item repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const itemColumns = `id, title, author, total_copies, available_copies, created_at, updated_at`

const getByIDSQL = `
SELECT ` + itemColumns + `
FROM items
WHERE id = $1`

const createSQL = `
INSERT INTO items (id, title, author, total_copies, available_copies, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING ` + itemColumns

// Guarded decrement: succeeds only while a copy is on the shelf. A zero
// affected-row count means the last copy was taken by a concurrent loan
// after the advisory eligibility check; the caller must abort its
// transaction.
const decrementAvailableSQL = `
UPDATE items
SET available_copies = available_copies - 1, updated_at = now()
WHERE id = $1 AND available_copies > 0`

// Unconditional increment on return. Safe without a guard: the status
// guard on the loan row prevents double-returns, so each outstanding
// loan increments at most once.
const incrementAvailableSQL = `
UPDATE items
SET available_copies = available_copies + 1, updated_at = now()
WHERE id = $1`

// Guarded decrement of the total stock (lost copies leave the
// collection). available_copies stays untouched, which preserves
// available = total - outstanding once the loan is marked LOST.
const decrementTotalSQL = `
UPDATE items
SET total_copies = total_copies - 1, updated_at = now()
WHERE id = $1 AND total_copies > 0`

// Stock adjustment for catalog administration. Both counters move by the
// same delta and the guard keeps both non-negative.
const adjustStockSQL = `
UPDATE items
SET total_copies = total_copies + $2,
    available_copies = available_copies + $2,
    updated_at = now()
WHERE id = $1 AND total_copies + $2 >= 0 AND available_copies + $2 >= 0`

// GetByID returns an item by primary key.
func (r *Repo) GetByID(ctx context.Context, itemID uuid.UUID) (domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var it domain.Item
	err := q.QueryRow(ctx, getByIDSQL, itemID).Scan(
		&it.ID, &it.Title, &it.Author, &it.TotalCopies, &it.AvailableCopies,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return domain.Item{}, postgres.MapError(err, "item", itemID)
	}

	return it, nil
}

// Create inserts a new catalog item with its full stock on the shelf.
func (r *Repo) Create(ctx context.Context, title, author string, copies int) (domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	var it domain.Item
	err := q.QueryRow(ctx, createSQL, id, title, author, copies, copies, now).Scan(
		&it.ID, &it.Title, &it.Author, &it.TotalCopies, &it.AvailableCopies,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return domain.Item{}, postgres.MapError(err, "item", id)
	}

	return it, nil
}

// DecrementAvailable atomically takes one copy off the shelf.
// Returns domain.ErrConflict when the guard fails (no copies left);
// the item's existence must have been established by the caller.
func (r *Repo) DecrementAvailable(ctx context.Context, itemID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, decrementAvailableSQL, itemID)
	if err != nil {
		return postgres.MapError(err, "item", itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: no available copies: %w", itemID, domain.ErrConflict)
	}

	return nil
}

// IncrementAvailable puts one copy back on the shelf.
// Returns domain.ErrNotFound if the item does not exist.
func (r *Repo) IncrementAvailable(ctx context.Context, itemID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, incrementAvailableSQL, itemID)
	if err != nil {
		return postgres.MapError(err, "item", itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}

	return nil
}

// DecrementTotal removes one copy from the collection (lost copy).
// Returns domain.ErrConflict when the guard fails.
func (r *Repo) DecrementTotal(ctx context.Context, itemID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, decrementTotalSQL, itemID)
	if err != nil {
		return postgres.MapError(err, "item", itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: no copies in collection: %w", itemID, domain.ErrConflict)
	}

	return nil
}

// AdjustStock changes total and available copies by delta (catalog
// administration). Returns domain.ErrConflict when the adjustment would
// drive either counter negative.
func (r *Repo) AdjustStock(ctx context.Context, itemID uuid.UUID, delta int) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, adjustStockSQL, itemID, delta)
	if err != nil {
		return postgres.MapError(err, "item", itemID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: stock adjustment by %d rejected: %w", itemID, delta, domain.ErrConflict)
	}

	return nil
}
