package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/internal/reconcile"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/config"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
)

// Recomputes account balances and stock levels from the underlying
// entry and movement logs, reporting or repairing any drift.
func main() {
	logg := logger.New(logger.Options{ServiceName: "reconcile"})

	_ = godotenv.Load()

	tenantFlag := flag.String("tenant", "", "tenant id to reconcile (required)")
	scope := flag.String("scope", "all", "what to reconcile: accounts|stock|all")
	fix := flag.Bool("fix", false, "write recomputed values back and audit each correction")
	actorName := flag.String("actor", "reconcile-cli", "actor name recorded on repairs")
	flag.Parse()

	tenantID, err := uuid.Parse(*tenantFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid or missing -tenant:", err)
		os.Exit(1)
	}
	if *scope != "accounts" && *scope != "stock" && *scope != "all" {
		fmt.Fprintln(os.Stderr, "unknown -scope value:", *scope)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "reconcile",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"tenant_id": tenantID.String(),
		"scope":     *scope,
		"fix":       *fix,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create audit service", err)
		os.Exit(1)
	}

	svc, err := reconcile.NewService(reconcile.NewRepository(dbClient.DB()), dbClient, auditService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create reconcile service", err)
		os.Exit(1)
	}

	actor := audit.Actor{Name: *actorName}
	drift := false

	if *scope == "accounts" || *scope == "all" {
		report, err := runPass(ctx, svc, tenantID, actor, *fix, "accounts")
		if err != nil {
			logg.Error(ctx, "account reconciliation failed", err)
			os.Exit(1)
		}
		printReport("accounts", report)
		drift = drift || len(report.Mismatches) > 0
	}

	if *scope == "stock" || *scope == "all" {
		report, err := runPass(ctx, svc, tenantID, actor, *fix, "stock")
		if err != nil {
			logg.Error(ctx, "stock reconciliation failed", err)
			os.Exit(1)
		}
		printReport("stock", report)
		drift = drift || len(report.Mismatches) > 0
	}

	if drift && !*fix {
		os.Exit(2)
	}
}

func runPass(ctx context.Context, svc reconcile.Service, tenantID uuid.UUID, actor audit.Actor, fix bool, pass string) (*reconcile.Report, error) {
	if pass == "accounts" {
		if fix {
			return svc.RebuildAccounts(ctx, tenantID, actor)
		}
		return svc.CheckAccounts(ctx, tenantID)
	}
	if fix {
		return svc.RebuildStock(ctx, tenantID, actor)
	}
	return svc.CheckStock(ctx, tenantID)
}

func printReport(pass string, report *reconcile.Report) {
	fmt.Printf("%s: checked %d, mismatches %d, repaired %v\n", pass, report.Checked, len(report.Mismatches), report.Repaired)
	for _, m := range report.Mismatches {
		fmt.Printf("  %s %s (%s): stored %s, computed %s\n", m.Code, m.Name, m.EntityID, m.Stored.String(), m.Computed.String())
	}
}
