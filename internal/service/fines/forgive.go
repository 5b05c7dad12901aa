package fines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// ForgiveFine settles an unpaid fine without payment. The mandatory
// reason is appended to the fine's reason text so a forgiven fine is
// distinguishable from a paid one in the records; the forgiving actor
// lands in paid_by.
func (s *Service) ForgiveFine(ctx context.Context, input ForgiveFineInput) (*domain.Fine, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	fine, err := s.fines.GetByID(ctx, input.FineID)
	if err != nil {
		return nil, err
	}
	if fine.IsPaid {
		return nil, domain.NewRuleError("fine already settled")
	}

	actor := actorOrSystem(ctx)
	paidDate := s.now().UTC()
	suffix := "; forgiven: " + strings.TrimSpace(input.Reason)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.fines.Settle(txCtx, fine.ID, paidDate, actor, &suffix)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewRuleError("fine already settled")
		}
		return nil, fmt.Errorf("settle fine: %w", err)
	}

	forgiven, err := s.fines.GetByID(ctx, fine.ID)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, domain.AuditRecord{
		Actor:      actor,
		EntityType: domain.EntityTypeFine,
		EntityID:   &fine.ID,
		Action:     domain.AuditActionFineForgiven,
		Changes: map[string]any{
			"amount_cents": fine.AmountCents,
			"reason":       strings.TrimSpace(input.Reason),
		},
	})

	s.log.InfoContext(ctx, "fine forgiven",
		slog.String("fine_id", fine.ID.String()),
		slog.String("member_id", fine.MemberID.String()),
		slog.Int64("amount_cents", fine.AmountCents),
	)

	return &forgiven, nil
}
