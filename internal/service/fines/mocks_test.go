package fines

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openlibro/biblio-backend/internal/adapter/postgres/loan"
	"github.com/openlibro/biblio-backend/internal/config"
	"github.com/openlibro/biblio-backend/internal/domain"
)

type loanRepoMock struct {
	ListFunc        func(ctx context.Context, f loan.Filter) ([]domain.Loan, error)
	MarkOverdueFunc func(ctx context.Context, loanID uuid.UUID) (bool, error)
}

func (m *loanRepoMock) List(ctx context.Context, f loan.Filter) ([]domain.Loan, error) {
	return m.ListFunc(ctx, f)
}

func (m *loanRepoMock) MarkOverdue(ctx context.Context, loanID uuid.UUID) (bool, error) {
	if m.MarkOverdueFunc == nil {
		return true, nil
	}
	return m.MarkOverdueFunc(ctx, loanID)
}

type fineRepoMock struct {
	GetByIDFunc func(ctx context.Context, fineID uuid.UUID) (domain.Fine, error)
	CreateFunc  func(ctx context.Context, f domain.Fine) (domain.Fine, error)
	SettleFunc  func(ctx context.Context, fineID uuid.UUID, paidDate time.Time, paidBy string, reasonSuffix *string) error
}

func (m *fineRepoMock) GetByID(ctx context.Context, fineID uuid.UUID) (domain.Fine, error) {
	return m.GetByIDFunc(ctx, fineID)
}

func (m *fineRepoMock) Create(ctx context.Context, f domain.Fine) (domain.Fine, error) {
	return m.CreateFunc(ctx, f)
}

func (m *fineRepoMock) Settle(ctx context.Context, fineID uuid.UUID, paidDate time.Time, paidBy string, reasonSuffix *string) error {
	return m.SettleFunc(ctx, fineID, paidDate, paidBy, reasonSuffix)
}

// auditLoggerMock records emitted audit entries. Safe for concurrent
// use; the scan emits from worker goroutines.
type auditLoggerMock struct {
	LogFunc func(ctx context.Context, record domain.AuditRecord) error

	mu      sync.Mutex
	records []domain.AuditRecord
}

func (m *auditLoggerMock) Log(ctx context.Context, record domain.AuditRecord) error {
	m.mu.Lock()
	m.records = append(m.records, record)
	m.mu.Unlock()
	if m.LogFunc == nil {
		return nil
	}
	return m.LogFunc(ctx, record)
}

func (m *auditLoggerMock) recorded() []domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditRecord(nil), m.records...)
}

// txManagerMock runs the callback on the same context, no transaction.
type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testRules() config.LendingConfig {
	return config.LendingConfig{
		MaxLoansPerMember:   3,
		LoanPeriodDays:      14,
		MaxLoanPeriodDays:   30,
		MaxExtensions:       2,
		ExtensionDays:       7,
		MaxExtensionDays:    14,
		FinePerDayCents:     50,
		GracePeriodDays:     0,
		MaxFineCents:        2000,
		AllowLoansWithFines: false,
		ScanConcurrency:     4,
	}
}

func newTestService(loans *loanRepoMock, fineRepo *fineRepoMock, audit *auditLoggerMock, rules config.LendingConfig, now time.Time) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewService(log, loans, fineRepo, audit, txManagerMock{}, rules)
	s.now = func() time.Time { return now }
	return s
}
