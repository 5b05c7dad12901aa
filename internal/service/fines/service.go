// Package fines implements the overdue-fine workflow: the daily scan
// that assesses penalties on outstanding loans, and the pay/forgive
// settlement operations.
package fines

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openlibro/biblio-backend/internal/adapter/postgres/loan"
	"github.com/openlibro/biblio-backend/internal/config"
	"github.com/openlibro/biblio-backend/internal/domain"
	"github.com/openlibro/biblio-backend/pkg/ctxutil"
)

type loanRepo interface {
	List(ctx context.Context, f loan.Filter) ([]domain.Loan, error)
	MarkOverdue(ctx context.Context, loanID uuid.UUID) (bool, error)
}

type fineRepo interface {
	GetByID(ctx context.Context, fineID uuid.UUID) (domain.Fine, error)
	Create(ctx context.Context, f domain.Fine) (domain.Fine, error)
	Settle(ctx context.Context, fineID uuid.UUID, paidDate time.Time, paidBy string, reasonSuffix *string) error
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides fine assessment and settlement operations.
type Service struct {
	loans loanRepo
	fines fineRepo
	audit auditLogger
	tx    txManager
	rules config.LendingConfig
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates a new fines service.
func NewService(
	log *slog.Logger,
	loans loanRepo,
	fines fineRepo,
	audit auditLogger,
	tx txManager,
	rules config.LendingConfig,
) *Service {
	return &Service{
		loans: loans,
		fines: fines,
		audit: audit,
		tx:    tx,
		rules: rules,
		log:   log.With("service", "fines"),
		now:   time.Now,
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
