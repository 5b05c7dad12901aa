// Package lending implements the loan lifecycle: eligibility checks,
// loan creation, return, extension, and the lost-copy administration
// path. Stock consistency rests on conditional updates executed by the
// repositories, never on application-level locks.
package lending

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openlibro/biblio-backend/internal/config"
	"github.com/openlibro/biblio-backend/internal/domain"
	"github.com/openlibro/biblio-backend/pkg/ctxutil"
)

type itemRepo interface {
	GetByID(ctx context.Context, itemID uuid.UUID) (domain.Item, error)
	DecrementAvailable(ctx context.Context, itemID uuid.UUID) error
	IncrementAvailable(ctx context.Context, itemID uuid.UUID) error
	DecrementTotal(ctx context.Context, itemID uuid.UUID) error
}

type loanRepo interface {
	GetByID(ctx context.Context, loanID uuid.UUID) (domain.Loan, error)
	Create(ctx context.Context, memberID, itemID uuid.UUID, loanDate, dueDate time.Time, notes *string) (domain.Loan, error)
	MarkReturned(ctx context.Context, loanID uuid.UUID, returnDate time.Time, note *string) error
	Extend(ctx context.Context, loanID uuid.UUID, days int, note string, maxExtensions int) error
	MarkLost(ctx context.Context, loanID uuid.UUID, note string) error
	CountOutstandingByMember(ctx context.Context, memberID uuid.UUID) (active, overdue int, err error)
}

type fineRepo interface {
	Create(ctx context.Context, f domain.Fine) (domain.Fine, error)
	UnpaidByMember(ctx context.Context, memberID uuid.UUID) (count int, totalCents int64, err error)
}

type memberRepo interface {
	GetByID(ctx context.Context, memberID uuid.UUID) (domain.Member, error)
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides loan lifecycle operations.
type Service struct {
	items   itemRepo
	loans   loanRepo
	fines   fineRepo
	members memberRepo
	audit   auditLogger
	tx      txManager
	rules   config.LendingConfig
	log     *slog.Logger
	now     func() time.Time
}

// NewService creates a new lending service.
func NewService(
	log *slog.Logger,
	items itemRepo,
	loans loanRepo,
	fines fineRepo,
	members memberRepo,
	audit auditLogger,
	tx txManager,
	rules config.LendingConfig,
) *Service {
	return &Service{
		items:   items,
		loans:   loans,
		fines:   fines,
		members: members,
		audit:   audit,
		tx:      tx,
		rules:   rules,
		log:     log.With("service", "lending"),
		now:     time.Now,
	}
}

// emitAudit writes one audit record after the business transaction has
// committed. Fire-and-forget: a failing audit sink is logged and never
// propagated.
func (s *Service) emitAudit(ctx context.Context, record domain.AuditRecord) {
	if err := s.audit.Log(ctx, record); err != nil {
		s.log.WarnContext(ctx, "audit emit failed",
			slog.String("action", record.Action.String()),
			slog.String("error", err.Error()),
		)
	}
}

// actorOrSystem returns the acting identity from context, falling back
// to "system" for scheduler-triggered operations.
func actorOrSystem(ctx context.Context) string {
	if actor, ok := ctxutil.ActorFromCtx(ctx); ok {
		return actor
	}
	return "system"
}
