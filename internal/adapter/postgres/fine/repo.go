// Package fine implements the Fine repository using PostgreSQL.
// Fines are settled exactly once: the is_paid = FALSE precondition lives
// in the same UPDATE that flips it, so there is no window for a double
// settle. Same-day overdue-scan fines are deduplicated by a partial
// unique index on (loan_id, fine_date).
package fine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/openlibro/biblio-backend/internal/adapter/postgres"
	"github.com/openlibro/biblio-backend/internal/domain"
)

// Repo provides fine persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new fine repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const fineColumns = `id, loan_id, member_id, amount_cents, reason, origin, fine_date, is_paid, paid_date, paid_by, created_at`

const getByIDSQL = `
SELECT ` + fineColumns + `
FROM fines
WHERE id = $1`

const createSQL = `
INSERT INTO fines (id, loan_id, member_id, amount_cents, reason, origin, fine_date, is_paid, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
RETURNING ` + fineColumns

// Settle marks a fine paid or forgiven. The is_paid guard makes the
// operation exactly-once; an optional suffix distinguishes forgiveness
// in the reason text.
const settleSQL = `
UPDATE fines
SET is_paid = TRUE,
    paid_date = $2,
    paid_by = $3,
    reason = CASE WHEN $4::text IS NULL THEN reason ELSE reason || $4 END
WHERE id = $1 AND is_paid = FALSE`

const unpaidByMemberSQL = `
SELECT count(*), coalesce(sum(amount_cents), 0)
FROM fines
WHERE member_id = $1 AND is_paid = FALSE`

const listByLoanSQL = `
SELECT ` + fineColumns + `
FROM fines
WHERE loan_id = $1
ORDER BY created_at ASC`

// GetByID returns a fine by primary key.
func (r *Repo) GetByID(ctx context.Context, fineID uuid.UUID) (domain.Fine, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	f, err := scanFineRow(q.QueryRow(ctx, getByIDSQL, fineID))
	if err != nil {
		return domain.Fine{}, postgres.MapError(err, "fine", fineID)
	}

	return f, nil
}

// Create inserts a new unpaid fine and returns the persisted row.
// A second overdue-scan fine for the same loan on the same day violates
// the partial unique index and comes back as domain.ErrAlreadyExists;
// the scan treats that as a harmless skip.
func (r *Repo) Create(ctx context.Context, f domain.Fine) (domain.Fine, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	created, err := scanFineRow(q.QueryRow(ctx, createSQL,
		id, f.LoanID, f.MemberID, f.AmountCents, f.Reason, f.Origin.String(), f.FineDate, now,
	))
	if err != nil {
		return domain.Fine{}, postgres.MapError(err, "fine", id)
	}

	return created, nil
}

// Settle marks an unpaid fine as settled, recording when, by whom, and
// (for forgiveness) why. Returns domain.ErrConflict when the fine was
// already settled; the fine's existence must have been established by
// the caller.
func (r *Repo) Settle(ctx context.Context, fineID uuid.UUID, paidDate time.Time, paidBy string, reasonSuffix *string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, settleSQL, fineID, paidDate, paidBy, reasonSuffix)
	if err != nil {
		return postgres.MapError(err, "fine", fineID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fine %s: already settled: %w", fineID, domain.ErrConflict)
	}

	return nil
}

// UnpaidByMember returns the count and total of a member's unpaid fines
// in one query. Used to derive the borrower posture.
func (r *Repo) UnpaidByMember(ctx context.Context, memberID uuid.UUID) (count int, totalCents int64, err error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	if err := q.QueryRow(ctx, unpaidByMemberSQL, memberID).Scan(&count, &totalCents); err != nil {
		return 0, 0, fmt.Errorf("count unpaid fines by member: %w", err)
	}

	return count, totalCents, nil
}

// ListByLoan returns all fines ever assessed on a loan, oldest first.
func (r *Repo) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]domain.Fine, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listByLoanSQL, loanID)
	if err != nil {
		return nil, fmt.Errorf("list fines by loan: %w", err)
	}
	defer rows.Close()

	var fines []domain.Fine
	for rows.Next() {
		f, err := scanFineRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list fines by loan: %w", err)
		}
		fines = append(fines, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fines by loan: %w", err)
	}

	if fines == nil {
		fines = []domain.Fine{}
	}

	return fines, nil
}

func scanFineRow(row pgx.Row) (domain.Fine, error) {
	var (
		f      domain.Fine
		origin string
	)
	if err := row.Scan(&f.ID, &f.LoanID, &f.MemberID, &f.AmountCents, &f.Reason,
		&origin, &f.FineDate, &f.IsPaid, &f.PaidDate, &f.PaidBy, &f.CreatedAt); err != nil {
		return domain.Fine{}, err
	}
	f.Origin = domain.FineOrigin(origin)

	return f, nil
}
