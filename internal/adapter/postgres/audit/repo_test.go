package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/openlibro/biblio-backend/internal/adapter/postgres/testutil"
	"github.com/openlibro/biblio-backend/internal/domain"
)

func TestRepo_Log(t *testing.T) {
	entityID := uuid.New()

	tests := []struct {
		name   string
		record domain.AuditRecord
	}{
		{
			name: "loan created with changes",
			record: domain.AuditRecord{
				Actor:      "librarian:ana",
				EntityType: domain.EntityTypeLoan,
				EntityID:   &entityID,
				Action:     domain.AuditActionLoanCreated,
				Changes:    map[string]any{"item_id": "abc"},
			},
		},
		{
			name: "system record without entity id",
			record: domain.AuditRecord{
				Actor:      "system",
				EntityType: domain.EntityTypeFine,
				Action:     domain.AuditActionFineCreated,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			repo := New(querier)

			mock.ExpectExec(`INSERT INTO audit_log`).
				WithArgs(pgxmock.AnyArg(), tt.record.Actor, tt.record.EntityType.String(),
					pgxmock.AnyArg(), tt.record.Action.String(), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))

			if err := repo.Log(context.Background(), tt.record); err != nil {
				t.Fatalf("Log() unexpected error: %v", err)
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestRepo_GetByEntity(t *testing.T) {
	entityID := uuid.New()
	now := time.Now()

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	rows := pgxmock.NewRows([]string{"id", "actor", "entity_type", "entity_id", "action", "changes", "created_at"}).
		AddRow(uuid.New(), "librarian:ana", "LOAN", pgtype.UUID{Bytes: entityID, Valid: true},
			"LOAN_RETURNED", []byte(`{"overdue_days":3}`), now).
		AddRow(uuid.New(), "system", "LOAN", pgtype.UUID{Bytes: entityID, Valid: true},
			"LOAN_CREATED", []byte(`{}`), now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT (.+) FROM audit_log`).
		WithArgs("LOAN", pgtype.UUID{Bytes: entityID, Valid: true}, 10).
		WillReturnRows(rows)

	records, err := repo.GetByEntity(context.Background(), domain.EntityTypeLoan, entityID, 10)
	if err != nil {
		t.Fatalf("GetByEntity() unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("GetByEntity() returned %d records, want 2", len(records))
	}
	if records[0].Action != domain.AuditActionLoanReturned {
		t.Errorf("GetByEntity() first action = %s, want LOAN_RETURNED", records[0].Action)
	}
	if records[0].EntityID == nil || *records[0].EntityID != entityID {
		t.Errorf("GetByEntity() entity id = %v, want %s", records[0].EntityID, entityID)
	}
	if records[0].Changes["overdue_days"] != float64(3) {
		t.Errorf("GetByEntity() changes = %v", records[0].Changes)
	}

	testutil.ExpectationsWereMet(t, mock)
}
