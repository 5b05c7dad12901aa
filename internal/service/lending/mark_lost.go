package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// MarkLost writes an outstanding loan off as lost. The copy leaves the
// collection entirely: total_copies goes down instead of the copy going
// back on the shelf, keeping available = total - outstanding intact.
func (s *Service) MarkLost(ctx context.Context, input MarkLostInput) (*domain.Loan, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	l, err := s.loans.GetByID(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}
	if l.Status.IsTerminal() {
		return nil, domain.NewRuleError(
			fmt.Sprintf("cannot mark a loan in state %s as lost", l.Status))
	}

	note := "marked lost: " + strings.TrimSpace(input.Reason)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.loans.MarkLost(txCtx, l.ID, note); err != nil {
			return err
		}
		return s.items.DecrementTotal(txCtx, l.ItemID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewRuleError("loan is no longer outstanding")
		}
		return nil, err
	}

	lost, err := s.loans.GetByID(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, domain.AuditRecord{
		Actor:      actorOrSystem(ctx),
		EntityType: domain.EntityTypeLoan,
		EntityID:   &l.ID,
		Action:     domain.AuditActionLoanLost,
		Changes: map[string]any{
			"item_id": l.ItemID.String(),
			"reason":  strings.TrimSpace(input.Reason),
		},
	})

	s.log.InfoContext(ctx, "loan marked lost",
		slog.String("loan_id", l.ID.String()),
		slog.String("item_id", l.ItemID.String()),
	)

	return &lost, nil
}
