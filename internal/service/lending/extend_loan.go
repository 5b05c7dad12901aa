package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// ExtendLoan pushes an active loan's due date out by the requested
// number of days. Extensions are capped per loan and barred for members
// with unpaid fines; the guarded UPDATE re-checks status and the
// extension counter so concurrent extensions cannot exceed the cap.
func (s *Service) ExtendLoan(ctx context.Context, input ExtendLoanInput) (*domain.Loan, error) {
	if err := input.Validate(s.rules.MaxExtensionDays); err != nil {
		return nil, err
	}

	l, err := s.loans.GetByID(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}

	var reasons []string
	if l.Status != domain.LoanStatusActive {
		reasons = append(reasons, "loan is not active")
	}
	if l.Extensions >= s.rules.MaxExtensions {
		reasons = append(reasons, "extension limit reached")
	}

	unpaidCount, unpaidCents, err := s.fines.UnpaidByMember(ctx, l.MemberID)
	if err != nil {
		return nil, fmt.Errorf("sum unpaid fines: %w", err)
	}
	if unpaidCount > 0 {
		reasons = append(reasons, fmt.Sprintf("unpaid fines of %d cents", unpaidCents))
	}

	if len(reasons) > 0 {
		return nil, domain.NewRuleError(reasons...)
	}

	days := s.rules.ExtensionDays
	if input.Days != nil {
		days = *input.Days
	}

	note := fmt.Sprintf("extended by %d days", days)
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		note += ": " + reason
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.loans.Extend(txCtx, l.ID, days, note, s.rules.MaxExtensions)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent call changed the status or used the last
			// extension after our read.
			return nil, domain.NewRuleError("loan can no longer be extended")
		}
		return nil, err
	}

	extended, err := s.loans.GetByID(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, domain.AuditRecord{
		Actor:      actorOrSystem(ctx),
		EntityType: domain.EntityTypeLoan,
		EntityID:   &l.ID,
		Action:     domain.AuditActionLoanExtended,
		Changes: map[string]any{
			"days":         days,
			"old_due_date": l.DueDate,
			"new_due_date": extended.DueDate,
		},
	})

	s.log.InfoContext(ctx, "loan extended",
		slog.String("loan_id", l.ID.String()),
		slog.Int("days", days),
		slog.Time("new_due_date", extended.DueDate),
	)

	return &extended, nil
}
