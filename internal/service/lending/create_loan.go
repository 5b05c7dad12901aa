package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// CreateLoan checks the member out with one copy of the item. The
// eligibility check runs first; the availability decrement inside the
// transaction is conditional on available_copies > 0, so two checkouts
// racing for the last copy cannot both succeed.
func (s *Service) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	if err := input.Validate(s.rules.MaxLoanPeriodDays); err != nil {
		return nil, err
	}

	elig, err := s.CheckEligibility(ctx, input.MemberID, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !elig.Eligible {
		return nil, domain.NewRuleError(elig.Reasons...)
	}

	periodDays := s.rules.LoanPeriodDays
	if input.LoanPeriodDays != nil {
		periodDays = *input.LoanPeriodDays
	}

	loanDate := s.now().UTC()
	dueDate := loanDate.AddDate(0, 0, periodDays)

	var created domain.Loan
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.loans.Create(txCtx, input.MemberID, input.ItemID, loanDate, dueDate, input.Notes)
		if createErr != nil {
			return fmt.Errorf("insert loan: %w", createErr)
		}
		return s.items.DecrementAvailable(txCtx, input.ItemID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// The last copy went out between the check and the decrement.
			return nil, domain.NewRuleError("no copies available")
		}
		return nil, err
	}

	s.emitAudit(ctx, domain.AuditRecord{
		Actor:      actorOrSystem(ctx),
		EntityType: domain.EntityTypeLoan,
		EntityID:   &created.ID,
		Action:     domain.AuditActionLoanCreated,
		Changes: map[string]any{
			"member_id": input.MemberID.String(),
			"item_id":   input.ItemID.String(),
			"due_date":  dueDate,
		},
	})

	s.log.InfoContext(ctx, "loan created",
		slog.String("loan_id", created.ID.String()),
		slog.String("member_id", input.MemberID.String()),
		slog.String("item_id", input.ItemID.String()),
		slog.Time("due_date", dueDate),
	)

	return &created, nil
}
