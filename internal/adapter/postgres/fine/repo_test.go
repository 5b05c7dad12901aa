package fine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/openlibro/biblio-backend/internal/adapter/postgres/testutil"
	"github.com/openlibro/biblio-backend/internal/domain"
)

var fineCols = []string{"id", "loan_id", "member_id", "amount_cents", "reason", "origin", "fine_date", "is_paid", "paid_date", "paid_by", "created_at"}

func TestRepo_Create(t *testing.T) {
	loanID := uuid.New()
	memberID := uuid.New()
	fineDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "inserted",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(fineCols).
					AddRow(uuid.New(), loanID, memberID, int64(250), "late return - 5 days overdue",
						"OVERDUE_SCAN", fineDate, false, nil, nil, now)
				mock.ExpectQuery(`INSERT INTO fines`).
					WithArgs(pgxmock.AnyArg(), loanID, memberID, int64(250), "late return - 5 days overdue",
						"OVERDUE_SCAN", fineDate, pgxmock.AnyArg()).
					WillReturnRows(rows)
			},
		},
		{
			name: "same-day duplicate violates the unique index",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO fines`).
					WithArgs(pgxmock.AnyArg(), loanID, memberID, int64(250), "late return - 5 days overdue",
						"OVERDUE_SCAN", fineDate, pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "fines_loan_scan_day_uq"})
			},
			wantErr: domain.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			repo := New(querier)
			tt.setup(mock)

			created, err := repo.Create(context.Background(), domain.Fine{
				LoanID:      loanID,
				MemberID:    memberID,
				AmountCents: 250,
				Reason:      "late return - 5 days overdue",
				Origin:      domain.FineOriginOverdueScan,
				FineDate:    fineDate,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Create() unexpected error: %v", err)
				}
				if created.Origin != domain.FineOriginOverdueScan || created.IsPaid {
					t.Errorf("Create() returned %+v, want unpaid OVERDUE_SCAN fine", created)
				}
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestRepo_Settle(t *testing.T) {
	fineID := uuid.New()
	paidDate := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	suffix := "; forgiven: damaged in transit"

	tests := []struct {
		name    string
		suffix  *string
		rows    int64
		wantErr error
	}{
		{name: "paid", rows: 1},
		{name: "forgiven with suffix", suffix: &suffix, rows: 1},
		{name: "already settled", rows: 0, wantErr: domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			repo := New(querier)

			mock.ExpectExec(`UPDATE fines SET is_paid = TRUE`).
				WithArgs(fineID, paidDate, "librarian:ana", tt.suffix).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))

			err := repo.Settle(context.Background(), fineID, paidDate, "librarian:ana", tt.suffix)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Settle() error = %v, want %v", err, tt.wantErr)
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestRepo_UnpaidByMember(t *testing.T) {
	memberID := uuid.New()

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	mock.ExpectQuery(`SELECT count\(\*\), coalesce\(sum\(amount_cents\), 0\) FROM fines`).
		WithArgs(memberID).
		WillReturnRows(pgxmock.NewRows([]string{"count", "coalesce"}).AddRow(2, int64(750)))

	count, total, err := repo.UnpaidByMember(context.Background(), memberID)
	if err != nil {
		t.Fatalf("UnpaidByMember() unexpected error: %v", err)
	}
	if count != 2 || total != 750 {
		t.Errorf("UnpaidByMember() = %d, %d, want 2, 750", count, total)
	}

	testutil.ExpectationsWereMet(t, mock)
}

func TestRepo_ListByLoan_Empty(t *testing.T) {
	loanID := uuid.New()

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	mock.ExpectQuery(`SELECT (.+) FROM fines WHERE loan_id`).
		WithArgs(loanID).
		WillReturnRows(pgxmock.NewRows(fineCols))

	fines, err := repo.ListByLoan(context.Background(), loanID)
	if err != nil {
		t.Fatalf("ListByLoan() unexpected error: %v", err)
	}
	if fines == nil || len(fines) != 0 {
		t.Errorf("ListByLoan() = %v, want empty non-nil slice", fines)
	}

	testutil.ExpectationsWereMet(t, mock)
}
