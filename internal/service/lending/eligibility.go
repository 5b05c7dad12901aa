package lending

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openlibro/biblio-backend/internal/domain"
)

// EligibilityResult is the outcome of a borrowing eligibility check.
// Reasons lists every failed rule, not just the first one, so the
// caller can present the full picture to the member.
type EligibilityResult struct {
	Eligible bool
	Reasons  []string
	Posture  domain.MemberPosture
	Item     *domain.Item
}

// CheckEligibility evaluates whether a member may borrow the given item
// right now. All rules are evaluated; a member over the loan limit with
// unpaid fines sees both reasons.
//
// The check is advisory: stock can change between the check and the
// checkout, which is why CreateLoan re-verifies availability with a
// conditional decrement.
func (s *Service) CheckEligibility(ctx context.Context, memberID, itemID uuid.UUID) (*EligibilityResult, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}

	active, overdue, err := s.loans.CountOutstandingByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("count outstanding loans: %w", err)
	}

	unpaidCount, unpaidCents, err := s.fines.UnpaidByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("sum unpaid fines: %w", err)
	}

	result := &EligibilityResult{
		Posture: domain.MemberPosture{
			ActiveLoans:      active,
			OverdueLoans:     overdue,
			UnpaidFines:      unpaidCount,
			UnpaidFinesCents: unpaidCents,
		},
	}

	if active >= s.rules.MaxLoansPerMember {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("loan limit reached (%d of %d)", active, s.rules.MaxLoansPerMember))
	}
	if overdue > 0 {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("%d overdue loan(s) outstanding", overdue))
	}
	if unpaidCount > 0 && !s.rules.AllowLoansWithFines {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("unpaid fines of %d cents", unpaidCents))
	}

	item, err := s.items.GetByID(ctx, itemID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		result.Reasons = append(result.Reasons, "item not found")
	case err != nil:
		return nil, fmt.Errorf("load item: %w", err)
	default:
		result.Item = &item
		if !item.HasAvailableCopy() {
			result.Reasons = append(result.Reasons, "no copies available")
		}
	}

	result.Eligible = len(result.Reasons) == 0
	return result, nil
}
