// Package loan implements the Loan repository using PostgreSQL.
// Every state transition is a status-guarded UPDATE; the affected-row
// count tells the caller whether the transition actually happened.
// Loan rows are append-only history and are never deleted.
package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/openlibro/biblio-backend/internal/adapter/postgres"
	"github.com/openlibro/biblio-backend/internal/domain"
)

// Repo provides loan persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new loan repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const loanColumns = `id, member_id, item_id, loan_date, due_date, return_date, status, extensions, notes, created_at, updated_at`

const getByIDSQL = `
SELECT ` + loanColumns + `
FROM loans
WHERE id = $1`

const createSQL = `
INSERT INTO loans (id, member_id, item_id, loan_date, due_date, status, extensions, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $8)
RETURNING ` + loanColumns

// Return transition. Guarded by the outstanding states so a loan can be
// returned exactly once; the optional note is appended on its own line.
const markReturnedSQL = `
UPDATE loans
SET status = 'RETURNED',
    return_date = $2,
    notes = CASE WHEN $3::text IS NULL THEN notes
                 ELSE coalesce(notes || E'\n', '') || $3 END,
    updated_at = now()
WHERE id = $1 AND status IN ('ACTIVE', 'OVERDUE')`

// Extension transition. The extension counter guard lives in the same
// statement so two concurrent extensions cannot both pass the limit.
const extendSQL = `
UPDATE loans
SET due_date = due_date + make_interval(days => $2),
    extensions = extensions + 1,
    notes = coalesce(notes || E'\n', '') || $3,
    updated_at = now()
WHERE id = $1 AND status = 'ACTIVE' AND extensions < $4`

// Overdue transition, used by the fine scan. Only ACTIVE loans move;
// a loan already OVERDUE stays as is.
const markOverdueSQL = `
UPDATE loans
SET status = 'OVERDUE', updated_at = now()
WHERE id = $1 AND status = 'ACTIVE'`

const markLostSQL = `
UPDATE loans
SET status = 'LOST',
    notes = coalesce(notes || E'\n', '') || $2,
    updated_at = now()
WHERE id = $1 AND status IN ('ACTIVE', 'OVERDUE')`

const countByMemberSQL = `
SELECT status, count(*)
FROM loans
WHERE member_id = $1 AND status IN ('ACTIVE', 'OVERDUE')
GROUP BY status`

const countOutstandingByItemSQL = `
SELECT count(*)
FROM loans
WHERE item_id = $1 AND status IN ('ACTIVE', 'OVERDUE')`

// GetByID returns a loan by primary key.
func (r *Repo) GetByID(ctx context.Context, loanID uuid.UUID) (domain.Loan, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	l, err := scanLoanRow(q.QueryRow(ctx, getByIDSQL, loanID))
	if err != nil {
		return domain.Loan{}, postgres.MapError(err, "loan", loanID)
	}

	return l, nil
}

// Create inserts a new ACTIVE loan and returns the persisted row.
func (r *Repo) Create(ctx context.Context, memberID, itemID uuid.UUID, loanDate, dueDate time.Time, notes *string) (domain.Loan, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	l, err := scanLoanRow(q.QueryRow(ctx, createSQL,
		id, memberID, itemID, loanDate, dueDate, domain.LoanStatusActive.String(), notes, now,
	))
	if err != nil {
		return domain.Loan{}, postgres.MapError(err, "loan", id)
	}

	return l, nil
}

// MarkReturned transitions an outstanding loan to RETURNED.
// Returns domain.ErrConflict when the loan is not in a returnable state.
func (r *Repo) MarkReturned(ctx context.Context, loanID uuid.UUID, returnDate time.Time, note *string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, markReturnedSQL, loanID, returnDate, note)
	if err != nil {
		return postgres.MapError(err, "loan", loanID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s: not in a returnable state: %w", loanID, domain.ErrConflict)
	}

	return nil
}

// Extend pushes the due date forward by days and increments the
// extension counter, guarded by status ACTIVE and extensions < maxExtensions.
// Returns domain.ErrConflict when the guard fails.
func (r *Repo) Extend(ctx context.Context, loanID uuid.UUID, days int, note string, maxExtensions int) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, extendSQL, loanID, days, note, maxExtensions)
	if err != nil {
		return postgres.MapError(err, "loan", loanID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s: not extendable: %w", loanID, domain.ErrConflict)
	}

	return nil
}

// MarkOverdue transitions an ACTIVE loan to OVERDUE. Reports whether the
// transition happened; a loan already past ACTIVE is left untouched
// without error (the scan is idempotent).
func (r *Repo) MarkOverdue(ctx context.Context, loanID uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, markOverdueSQL, loanID)
	if err != nil {
		return false, postgres.MapError(err, "loan", loanID)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkLost transitions an outstanding loan to LOST (catalog administration).
// Returns domain.ErrConflict when the loan is not outstanding.
func (r *Repo) MarkLost(ctx context.Context, loanID uuid.UUID, note string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, markLostSQL, loanID, note)
	if err != nil {
		return postgres.MapError(err, "loan", loanID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s: not outstanding: %w", loanID, domain.ErrConflict)
	}

	return nil
}

// CountOutstandingByMember returns the member's active and overdue loan
// counts in a single query. Used to derive the borrower posture.
func (r *Repo) CountOutstandingByMember(ctx context.Context, memberID uuid.UUID) (active, overdue int, err error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, countByMemberSQL, memberID)
	if err != nil {
		return 0, 0, fmt.Errorf("count loans by member: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return 0, 0, fmt.Errorf("scan loan count: %w", err)
		}
		switch domain.LoanStatus(status) {
		case domain.LoanStatusActive:
			active = count
		case domain.LoanStatusOverdue:
			overdue = count
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("iterate loan counts: %w", err)
	}

	return active, overdue, nil
}

// CountOutstandingByItem returns how many copies of an item are on loan.
// Used by invariant checks and catalog administration.
func (r *Repo) CountOutstandingByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, countOutstandingByItemSQL, itemID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count outstanding loans by item: %w", err)
	}

	return count, nil
}

// List returns loans matching the filter, ordered by due date.
func (r *Repo) List(ctx context.Context, f Filter) ([]domain.Loan, error) {
	f.normalize()

	q := builder.
		Select("l.id", "l.member_id", "l.item_id", "l.loan_date", "l.due_date",
			"l.return_date", "l.status", "l.extensions", "l.notes", "l.created_at", "l.updated_at").
		From("loans l").
		OrderBy("l.due_date ASC", "l.id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))

	if f.MemberID != nil {
		q = q.Where(squirrel.Eq{"l.member_id": *f.MemberID})
	}
	if f.ItemID != nil {
		q = q.Where(squirrel.Eq{"l.item_id": *f.ItemID})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = s.String()
		}
		q = q.Where(squirrel.Eq{"l.status": statuses})
	}
	if f.DueBefore != nil {
		q = q.Where(squirrel.Lt{"l.due_date": *f.DueBefore})
	}
	if f.WithoutScanFineOn != nil {
		q = q.Where(`NOT EXISTS (
			SELECT 1 FROM fines fn
			WHERE fn.loan_id = l.id AND fn.origin = ? AND fn.fine_date = ?
		)`, domain.FineOriginOverdueScan.String(), *f.WithoutScanFineOn)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build loan list query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	loans, err := scanLoans(rows)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	return loans, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanLoans(rows pgx.Rows) ([]domain.Loan, error) {
	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if loans == nil {
		loans = []domain.Loan{}
	}

	return loans, nil
}

func scanLoanRow(row pgx.Row) (domain.Loan, error) {
	var (
		l      domain.Loan
		status string
	)
	if err := row.Scan(&l.ID, &l.MemberID, &l.ItemID, &l.LoanDate, &l.DueDate,
		&l.ReturnDate, &status, &l.Extensions, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return domain.Loan{}, err
	}
	l.Status = domain.LoanStatus(status)

	return l, nil
}
