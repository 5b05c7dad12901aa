package testhelper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// SeedMember inserts a member with a unique email and returns it.
func SeedMember(t *testing.T, pool *pgxpool.Pool) domain.Member {
	t.Helper()

	m := domain.Member{
		ID:    uuid.New(),
		Name:  "Test Member",
		Email: fmt.Sprintf("member-%s@example.org", uuid.New().String()[:8]),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO members (id, email, name) VALUES ($1, $2, $3)`,
		m.ID, m.Email, m.Name,
	)
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}

	return m
}

// SeedItem inserts a catalog item with the given stock counters.
func SeedItem(t *testing.T, pool *pgxpool.Pool, total, available int) domain.Item {
	t.Helper()

	it := domain.Item{
		ID:              uuid.New(),
		Title:           "Seed Title " + uuid.New().String()[:8],
		Author:          "Seed Author",
		TotalCopies:     total,
		AvailableCopies: available,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO items (id, title, author, total_copies, available_copies) VALUES ($1, $2, $3, $4, $5)`,
		it.ID, it.Title, it.Author, it.TotalCopies, it.AvailableCopies,
	)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	return it
}

// SeedLoan inserts a loan in the given status with the given due date.
func SeedLoan(t *testing.T, pool *pgxpool.Pool, memberID, itemID uuid.UUID, dueDate time.Time, status domain.LoanStatus) domain.Loan {
	t.Helper()

	l := domain.Loan{
		ID:       uuid.New(),
		MemberID: memberID,
		ItemID:   itemID,
		LoanDate: dueDate.AddDate(0, 0, -14),
		DueDate:  dueDate,
		Status:   status,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO loans (id, member_id, item_id, loan_date, due_date, status) VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.MemberID, l.ItemID, l.LoanDate, l.DueDate, l.Status.String(),
	)
	if err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	return l
}
