package fines

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlibro/biblio-backend/internal/domain"
)

func unpaidFine(amountCents int64) domain.Fine {
	return domain.Fine{
		ID:          uuid.New(),
		LoanID:      uuid.New(),
		MemberID:    uuid.New(),
		AmountCents: amountCents,
		Reason:      "late return - 4 days overdue",
		Origin:      domain.FineOriginOverdueScan,
		FineDate:    time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
	}
}

func fineStore(f domain.Fine) *fineRepoMock {
	current := f
	return &fineRepoMock{
		GetByIDFunc: func(_ context.Context, id uuid.UUID) (domain.Fine, error) {
			if id != current.ID {
				return domain.Fine{}, domain.ErrNotFound
			}
			return current, nil
		},
		SettleFunc: func(_ context.Context, id uuid.UUID, paidDate time.Time, paidBy string, suffix *string) error {
			if id != current.ID || current.IsPaid {
				return domain.ErrConflict
			}
			current.IsPaid = true
			current.PaidDate = &paidDate
			current.PaidBy = &paidBy
			if suffix != nil {
				current.Reason += *suffix
			}
			return nil
		},
	}
}

func TestPayFine_SettlesOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := unpaidFine(200)
	repo := fineStore(f)
	audit := &auditLoggerMock{}

	s := newTestService(&loanRepoMock{}, repo, audit, testRules(), now)

	paid, err := s.PayFine(context.Background(), PayFineInput{
		FineID: f.ID,
		Method: domain.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidDate)
	assert.Equal(t, now, *paid.PaidDate)
	require.NotNil(t, paid.PaidBy)
	assert.Equal(t, "system", *paid.PaidBy)
	require.Len(t, audit.records, 1)
	assert.Equal(t, domain.AuditActionFinePaid, audit.records[0].Action)

	// Second payment attempt is rejected.
	_, err = s.PayFine(context.Background(), PayFineInput{
		FineID: f.ID,
		Method: domain.PaymentMethodCard,
	})
	reasons, ok := domain.RuleReasons(err)
	require.True(t, ok, "expected a rule rejection, got %v", err)
	assert.Contains(t, reasons, "fine already paid")
}

func TestPayFine_RejectsPartialPayment(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := unpaidFine(500)
	repo := fineStore(f)

	s := newTestService(&loanRepoMock{}, repo, &auditLoggerMock{}, testRules(), now)

	partial := int64(250)
	_, err := s.PayFine(context.Background(), PayFineInput{
		FineID:      f.ID,
		Method:      domain.PaymentMethodCash,
		AmountCents: &partial,
	})
	reasons, ok := domain.RuleReasons(err)
	require.True(t, ok, "expected a rule rejection, got %v", err)
	assert.Contains(t, reasons, "partial payments are not supported")

	// The exact amount goes through.
	exact := int64(500)
	paid, err := s.PayFine(context.Background(), PayFineInput{
		FineID:      f.ID,
		Method:      domain.PaymentMethodCash,
		AmountCents: &exact,
	})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
}

func TestPayFine_LostRaceMapsToRuleError(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := unpaidFine(200)
	repo := fineStore(f)
	// Read sees the fine unpaid, but the conditional update loses.
	repo.SettleFunc = func(context.Context, uuid.UUID, time.Time, string, *string) error {
		return domain.ErrConflict
	}

	s := newTestService(&loanRepoMock{}, repo, &auditLoggerMock{}, testRules(), now)

	_, err := s.PayFine(context.Background(), PayFineInput{
		FineID: f.ID,
		Method: domain.PaymentMethodTransfer,
	})
	reasons, ok := domain.RuleReasons(err)
	require.True(t, ok, "expected a rule rejection, got %v", err)
	assert.Equal(t, []string{"fine already paid"}, reasons)
}

func TestForgiveFine_AppendsReasonAndSettles(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := unpaidFine(300)
	repo := fineStore(f)
	audit := &auditLoggerMock{}

	s := newTestService(&loanRepoMock{}, repo, audit, testRules(), now)

	forgiven, err := s.ForgiveFine(context.Background(), ForgiveFineInput{
		FineID: f.ID,
		Reason: "book damaged before checkout",
	})
	require.NoError(t, err)
	assert.True(t, forgiven.IsPaid)
	assert.Contains(t, forgiven.Reason, "forgiven: book damaged before checkout")
	require.Len(t, audit.records, 1)
	assert.Equal(t, domain.AuditActionFineForgiven, audit.records[0].Action)

	// Forgiving twice is rejected just like double payment.
	_, err = s.ForgiveFine(context.Background(), ForgiveFineInput{
		FineID: f.ID,
		Reason: "trying to forgive it again",
	})
	reasons, ok := domain.RuleReasons(err)
	require.True(t, ok, "expected a rule rejection, got %v", err)
	assert.Contains(t, reasons, "fine already settled")
}

func TestSettle_UnknownFine(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := fineStore(unpaidFine(100))

	s := newTestService(&loanRepoMock{}, repo, &auditLoggerMock{}, testRules(), now)

	_, err := s.PayFine(context.Background(), PayFineInput{
		FineID: uuid.New(),
		Method: domain.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
