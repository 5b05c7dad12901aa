// Package audit implements the audit-trail repository using PostgreSQL.
// It provides append-only operations for audit records; callers treat
// Log as fire-and-forget, so a failure here never rolls back a business
// transaction.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	postgres "github.com/openlibro/biblio-backend/internal/adapter/postgres"
	"github.com/openlibro/biblio-backend/internal/domain"
)

// Repo provides audit record persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const createSQL = `
INSERT INTO audit_log (id, actor, entity_type, entity_id, action, changes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const getByEntitySQL = `
SELECT id, actor, entity_type, entity_id, action, changes, created_at
FROM audit_log
WHERE entity_type = $1 AND entity_id = $2
ORDER BY created_at DESC
LIMIT $3`

// Log appends one audit record.
func (r *Repo) Log(ctx context.Context, record domain.AuditRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	changesJSON, err := json.Marshal(record.Changes)
	if err != nil {
		return fmt.Errorf("audit_record marshal changes: %w", err)
	}

	_, err = q.Exec(ctx, createSQL,
		record.ID, record.Actor, record.EntityType.String(),
		uuidPtrToPgUUID(record.EntityID), record.Action.String(),
		changesJSON, record.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "audit_record", record.ID)
	}

	return nil
}

// GetByEntity returns the change history for a specific entity, newest
// first, limited to `limit` records.
func (r *Repo) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, getByEntitySQL,
		entityType.String(), pgtype.UUID{Bytes: entityID, Valid: true}, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get audit_records by entity: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var (
			rec        domain.AuditRecord
			entityType string
			action     string
			pgEntityID pgtype.UUID
			changes    []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Actor, &entityType, &pgEntityID, &action, &changes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit_record: %w", err)
		}
		rec.EntityType = domain.EntityType(entityType)
		rec.Action = domain.AuditAction(action)
		if pgEntityID.Valid {
			id := uuid.UUID(pgEntityID.Bytes)
			rec.EntityID = &id
		}
		if len(changes) > 0 {
			m := make(map[string]any)
			if err := json.Unmarshal(changes, &m); err != nil {
				return nil, fmt.Errorf("audit_record %s unmarshal changes: %w", rec.ID, err)
			}
			rec.Changes = m
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit_records: %w", err)
	}

	if records == nil {
		records = []domain.AuditRecord{}
	}

	return records, nil
}

// uuidPtrToPgUUID converts a *uuid.UUID to pgtype.UUID (nil -> NULL).
func uuidPtrToPgUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}
