// Package member implements the Member repository using PostgreSQL.
package member

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postgres "github.com/openlibro/biblio-backend/internal/adapter/postgres"
	"github.com/openlibro/biblio-backend/internal/domain"
)

// Repo provides member persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new member repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const getByIDSQL = `
SELECT id, email, name, created_at, updated_at
FROM members
WHERE id = $1`

const existsSQL = `
SELECT EXISTS(SELECT 1 FROM members WHERE id = $1)`

// GetByID returns a member by primary key.
func (r *Repo) GetByID(ctx context.Context, memberID uuid.UUID) (domain.Member, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var m domain.Member
	err := q.QueryRow(ctx, getByIDSQL, memberID).Scan(
		&m.ID, &m.Email, &m.Name, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Member{}, postgres.MapError(err, "member", memberID)
	}

	return m, nil
}

// Exists reports whether a member with the given ID is registered.
func (r *Repo) Exists(ctx context.Context, memberID uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, existsSQL, memberID).Scan(&exists); err != nil {
		return false, fmt.Errorf("member exists: %w", err)
	}

	return exists, nil
}
