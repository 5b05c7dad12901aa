package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openlibro/biblio-backend/internal/domain"
	"github.com/openlibro/biblio-backend/internal/service/fines"
)

// ReturnResult is the outcome of a loan return: the closed loan plus
// the overdue fine assessed at the counter, if the copy came back late.
type ReturnResult struct {
	Loan        domain.Loan
	OverdueDays int
	Fine        *domain.Fine
}

// ReturnLoan closes an outstanding loan, restores the copy to stock and
// assesses a late fine when the return is past due. The status flip is
// conditional on the loan still being outstanding, so a double return
// settles once and rejects the second attempt.
func (s *Service) ReturnLoan(ctx context.Context, input ReturnLoanInput) (*ReturnResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	l, err := s.loans.GetByID(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}
	if !l.IsReturnable() {
		return nil, domain.NewRuleError(
			fmt.Sprintf("cannot return a loan in state %s", l.Status))
	}

	now := s.now().UTC()
	result := &ReturnResult{}

	if l.IsPastDue(now) {
		result.OverdueDays = fines.OverdueDays(l.DueDate, now, s.rules.GracePeriodDays)
	}
	amountCents := fines.Amount(result.OverdueDays, s.rules.FinePerDayCents, s.rules.MaxFineCents)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.loans.MarkReturned(txCtx, l.ID, now, input.Notes); err != nil {
			return err
		}

		if amountCents > 0 {
			fine, createErr := s.fines.Create(txCtx, domain.Fine{
				LoanID:      l.ID,
				MemberID:    l.MemberID,
				AmountCents: amountCents,
				Reason:      fmt.Sprintf("late return - %d days overdue", result.OverdueDays),
				Origin:      domain.FineOriginReturn,
				FineDate:    fines.DayOf(now),
			})
			if createErr != nil {
				return fmt.Errorf("create return fine: %w", createErr)
			}
			result.Fine = &fine
		}

		return s.items.IncrementAvailable(txCtx, l.ItemID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Someone else closed the loan first.
			return nil, domain.NewRuleError("loan is no longer outstanding")
		}
		return nil, err
	}

	returned, err := s.loans.GetByID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	result.Loan = returned

	changes := map[string]any{
		"item_id":      l.ItemID.String(),
		"overdue_days": result.OverdueDays,
	}
	if result.Fine != nil {
		changes["fine_id"] = result.Fine.ID.String()
		changes["fine_cents"] = result.Fine.AmountCents
	}
	s.emitAudit(ctx, domain.AuditRecord{
		Actor:      actorOrSystem(ctx),
		EntityType: domain.EntityTypeLoan,
		EntityID:   &l.ID,
		Action:     domain.AuditActionLoanReturned,
		Changes:    changes,
	})

	s.log.InfoContext(ctx, "loan returned",
		slog.String("loan_id", l.ID.String()),
		slog.String("member_id", l.MemberID.String()),
		slog.Int("overdue_days", result.OverdueDays),
		slog.Bool("fined", result.Fine != nil),
	)

	return result, nil
}
