package fines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// PayFine settles an unpaid fine with a real payment. Exactly-once: the
// settle UPDATE carries the is_paid = FALSE precondition, so a second
// payment attempt is rejected no matter how the calls interleave.
func (s *Service) PayFine(ctx context.Context, input PayFineInput) (*domain.Fine, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	fine, err := s.fines.GetByID(ctx, input.FineID)
	if err != nil {
		return nil, err
	}

	var reasons []string
	if fine.IsPaid {
		reasons = append(reasons, "fine already paid")
	}
	if input.AmountCents != nil && *input.AmountCents != fine.AmountCents {
		reasons = append(reasons, "partial payments are not supported")
	}
	if len(reasons) > 0 {
		return nil, domain.NewRuleError(reasons...)
	}

	actor := actorOrSystem(ctx)
	paidDate := s.now().UTC()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.fines.Settle(txCtx, fine.ID, paidDate, actor, nil)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the race against another settlement.
			return nil, domain.NewRuleError("fine already paid")
		}
		return nil, fmt.Errorf("settle fine: %w", err)
	}

	settled, err := s.fines.GetByID(ctx, fine.ID)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, domain.AuditRecord{
		Actor:      actor,
		EntityType: domain.EntityTypeFine,
		EntityID:   &fine.ID,
		Action:     domain.AuditActionFinePaid,
		Changes: map[string]any{
			"method":       input.Method.String(),
			"amount_cents": fine.AmountCents,
		},
	})

	s.log.InfoContext(ctx, "fine paid",
		slog.String("fine_id", fine.ID.String()),
		slog.String("member_id", fine.MemberID.String()),
		slog.Int64("amount_cents", fine.AmountCents),
		slog.String("method", input.Method.String()),
	)

	return &settled, nil
}
