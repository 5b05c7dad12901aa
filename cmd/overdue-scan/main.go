// Command overdue-scan assesses fines on all loans past their due date.
// It is intended to be invoked daily by an external cron job, not as an
// in-process goroutine; re-running it on the same day is harmless.
//
// Exit codes: 0 = success, 1 = error, 2 = finished with per-loan failures.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/openlibro/biblio-backend/internal/adapter/postgres"
	"github.com/openlibro/biblio-backend/internal/adapter/postgres/audit"
	fineRepo "github.com/openlibro/biblio-backend/internal/adapter/postgres/fine"
	loanRepo "github.com/openlibro/biblio-backend/internal/adapter/postgres/loan"
	"github.com/openlibro/biblio-backend/internal/app"
	"github.com/openlibro/biblio-backend/internal/config"
	"github.com/openlibro/biblio-backend/internal/service/fines"
	"github.com/openlibro/biblio-backend/pkg/ctxutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting overdue scan", slog.String("version", app.BuildVersion()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = ctxutil.WithActor(ctx, "overdue-scan")

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := fines.NewService(
		logger,
		loanRepo.New(pool),
		fineRepo.New(pool),
		audit.New(pool),
		postgres.NewTxManager(pool),
		cfg.Lending,
	)

	report, err := svc.GenerateOverdueFines(ctx)
	if err != nil {
		logger.Error("overdue scan failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("overdue scan completed",
		slog.Int("scanned", report.Scanned),
		slog.Int("fines_created", report.FinesCreated),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Int64("total_cents", report.TotalCents),
	)

	if report.Failed > 0 {
		os.Exit(2)
	}
}
