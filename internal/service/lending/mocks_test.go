package lending

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openlibro/biblio-backend/internal/config"
	"github.com/openlibro/biblio-backend/internal/domain"
)

type itemRepoMock struct {
	GetByIDFunc            func(ctx context.Context, itemID uuid.UUID) (domain.Item, error)
	DecrementAvailableFunc func(ctx context.Context, itemID uuid.UUID) error
	IncrementAvailableFunc func(ctx context.Context, itemID uuid.UUID) error
	DecrementTotalFunc     func(ctx context.Context, itemID uuid.UUID) error
}

func (m *itemRepoMock) GetByID(ctx context.Context, itemID uuid.UUID) (domain.Item, error) {
	return m.GetByIDFunc(ctx, itemID)
}

func (m *itemRepoMock) DecrementAvailable(ctx context.Context, itemID uuid.UUID) error {
	if m.DecrementAvailableFunc == nil {
		return nil
	}
	return m.DecrementAvailableFunc(ctx, itemID)
}

func (m *itemRepoMock) IncrementAvailable(ctx context.Context, itemID uuid.UUID) error {
	if m.IncrementAvailableFunc == nil {
		return nil
	}
	return m.IncrementAvailableFunc(ctx, itemID)
}

func (m *itemRepoMock) DecrementTotal(ctx context.Context, itemID uuid.UUID) error {
	if m.DecrementTotalFunc == nil {
		return nil
	}
	return m.DecrementTotalFunc(ctx, itemID)
}

type loanRepoMock struct {
	GetByIDFunc                  func(ctx context.Context, loanID uuid.UUID) (domain.Loan, error)
	CreateFunc                   func(ctx context.Context, memberID, itemID uuid.UUID, loanDate, dueDate time.Time, notes *string) (domain.Loan, error)
	MarkReturnedFunc             func(ctx context.Context, loanID uuid.UUID, returnDate time.Time, note *string) error
	ExtendFunc                   func(ctx context.Context, loanID uuid.UUID, days int, note string, maxExtensions int) error
	MarkLostFunc                 func(ctx context.Context, loanID uuid.UUID, note string) error
	CountOutstandingByMemberFunc func(ctx context.Context, memberID uuid.UUID) (int, int, error)
}

func (m *loanRepoMock) GetByID(ctx context.Context, loanID uuid.UUID) (domain.Loan, error) {
	return m.GetByIDFunc(ctx, loanID)
}

func (m *loanRepoMock) Create(ctx context.Context, memberID, itemID uuid.UUID, loanDate, dueDate time.Time, notes *string) (domain.Loan, error) {
	return m.CreateFunc(ctx, memberID, itemID, loanDate, dueDate, notes)
}

func (m *loanRepoMock) MarkReturned(ctx context.Context, loanID uuid.UUID, returnDate time.Time, note *string) error {
	return m.MarkReturnedFunc(ctx, loanID, returnDate, note)
}

func (m *loanRepoMock) Extend(ctx context.Context, loanID uuid.UUID, days int, note string, maxExtensions int) error {
	return m.ExtendFunc(ctx, loanID, days, note, maxExtensions)
}

func (m *loanRepoMock) MarkLost(ctx context.Context, loanID uuid.UUID, note string) error {
	return m.MarkLostFunc(ctx, loanID, note)
}

func (m *loanRepoMock) CountOutstandingByMember(ctx context.Context, memberID uuid.UUID) (int, int, error) {
	if m.CountOutstandingByMemberFunc == nil {
		return 0, 0, nil
	}
	return m.CountOutstandingByMemberFunc(ctx, memberID)
}

type fineRepoMock struct {
	CreateFunc         func(ctx context.Context, f domain.Fine) (domain.Fine, error)
	UnpaidByMemberFunc func(ctx context.Context, memberID uuid.UUID) (int, int64, error)
}

func (m *fineRepoMock) Create(ctx context.Context, f domain.Fine) (domain.Fine, error) {
	return m.CreateFunc(ctx, f)
}

func (m *fineRepoMock) UnpaidByMember(ctx context.Context, memberID uuid.UUID) (int, int64, error) {
	if m.UnpaidByMemberFunc == nil {
		return 0, 0, nil
	}
	return m.UnpaidByMemberFunc(ctx, memberID)
}

type memberRepoMock struct {
	GetByIDFunc func(ctx context.Context, memberID uuid.UUID) (domain.Member, error)
}

func (m *memberRepoMock) GetByID(ctx context.Context, memberID uuid.UUID) (domain.Member, error) {
	if m.GetByIDFunc == nil {
		return domain.Member{ID: memberID}, nil
	}
	return m.GetByIDFunc(ctx, memberID)
}

type auditLoggerMock struct {
	LogFunc func(ctx context.Context, record domain.AuditRecord) error

	records []domain.AuditRecord
}

func (m *auditLoggerMock) Log(ctx context.Context, record domain.AuditRecord) error {
	m.records = append(m.records, record)
	if m.LogFunc == nil {
		return nil
	}
	return m.LogFunc(ctx, record)
}

// txManagerMock runs the callback on the same context, no transaction.
type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type deps struct {
	items   *itemRepoMock
	loans   *loanRepoMock
	fines   *fineRepoMock
	members *memberRepoMock
	audit   *auditLoggerMock
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

func newTestService(d deps, rules config.LendingConfig, now time.Time) *Service {
	if d.items == nil {
		d.items = &itemRepoMock{}
	}
	if d.loans == nil {
		d.loans = &loanRepoMock{}
	}
	if d.fines == nil {
		d.fines = &fineRepoMock{}
	}
	if d.members == nil {
		d.members = &memberRepoMock{}
	}
	if d.audit == nil {
		d.audit = &auditLoggerMock{}
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewService(log, d.items, d.loans, d.fines, d.members, d.audit, txManagerMock{}, rules)
	s.now = func() time.Time { return now }
	return s
}
