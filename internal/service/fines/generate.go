package fines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/openlibro/biblio-backend/internal/adapter/postgres/loan"
	"github.com/openlibro/biblio-backend/internal/domain"
)

// LoanScanResult is the per-loan outcome of one overdue scan run.
type LoanScanResult struct {
	LoanID      uuid.UUID
	MemberID    uuid.UUID
	OverdueDays int
	AmountCents int64
	FineID      *uuid.UUID
	// Skipped means no fine was needed: still inside the grace period,
	// or a concurrent run already assessed today's fine.
	Skipped bool
	// Error holds the per-loan failure, if any. One loan failing does
	// not abort the rest of the scan.
	Error string
}

// ScanReport aggregates one overdue scan run.
type ScanReport struct {
	Scanned      int
	FinesCreated int
	Skipped      int
	Failed       int
	TotalCents   int64
	Results      []LoanScanResult
}

const scanBatchLimit = 1000

// GenerateOverdueFines scans all outstanding loans past due and assesses
// at most one fine per loan per calendar day. Safe to re-run and to run
// concurrently: the candidate listing pre-filters loans already fined
// today, and the (loan_id, fine_date) unique index catches the race
// between two concurrent scans; the loser counts the loan as skipped.
func (s *Service) GenerateOverdueFines(ctx context.Context) (*ScanReport, error) {
	now := s.now().UTC()
	today := DayOf(now)

	candidates, err := s.loans.List(ctx, loan.Filter{
		Statuses:          []domain.LoanStatus{domain.LoanStatusActive, domain.LoanStatusOverdue},
		DueBefore:         &today,
		WithoutScanFineOn: &today,
		Limit:             scanBatchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list overdue candidates: %w", err)
	}

	report := &ScanReport{Scanned: len(candidates)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.rules.ScanConcurrency)

	for _, l := range candidates {
		g.Go(func() error {
			res := s.assessLoan(gctx, l)

			mu.Lock()
			defer mu.Unlock()
			report.Results = append(report.Results, res)
			switch {
			case res.Error != "":
				report.Failed++
			case res.Skipped:
				report.Skipped++
			default:
				report.FinesCreated++
				report.TotalCents += res.AmountCents
			}
			return nil
		})
	}

	// Workers never return errors; per-loan failures live in the report.
	_ = g.Wait()

	s.log.InfoContext(ctx, "overdue scan finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("fines_created", report.FinesCreated),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Int64("total_cents", report.TotalCents),
	)

	return report, nil
}

// assessLoan computes and persists today's fine for a single overdue
// loan, transitioning the loan to OVERDUE in the same transaction.
func (s *Service) assessLoan(ctx context.Context, l domain.Loan) LoanScanResult {
	now := s.now().UTC()
	res := LoanScanResult{LoanID: l.ID, MemberID: l.MemberID}

	res.OverdueDays = OverdueDays(l.DueDate, now, s.rules.GracePeriodDays)
	res.AmountCents = Amount(res.OverdueDays, s.rules.FinePerDayCents, s.rules.MaxFineCents)

	if res.AmountCents == 0 {
		// Past due but inside the grace period.
		res.Skipped = true
		return res
	}

	var created domain.Fine
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.fines.Create(txCtx, domain.Fine{
			LoanID:      l.ID,
			MemberID:    l.MemberID,
			AmountCents: res.AmountCents,
			Reason:      fmt.Sprintf("late return - %d days overdue", res.OverdueDays),
			Origin:      domain.FineOriginOverdueScan,
			FineDate:    DayOf(now),
		})
		if createErr != nil {
			return createErr
		}

		if _, err := s.loans.MarkOverdue(txCtx, l.ID); err != nil {
			return fmt.Errorf("mark loan overdue: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// A concurrent run won the same-day insert. Expected
			// steady-state behavior, not a failure.
			res.Skipped = true
			res.AmountCents = 0
			return res
		}
		res.Error = err.Error()
		res.AmountCents = 0
		return res
	}

	res.FineID = &created.ID

	s.emitAudit(ctx, domain.AuditRecord{
		Actor:      actorOrSystem(ctx),
		EntityType: domain.EntityTypeFine,
		EntityID:   &created.ID,
		Action:     domain.AuditActionFineCreated,
		Changes: map[string]any{
			"loan_id":      l.ID.String(),
			"amount_cents": res.AmountCents,
			"overdue_days": res.OverdueDays,
		},
	})

	return res
}
