package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
)

const (
	entityTypeAccount = "account"
	entityTypeItem    = "inventory_item"
)

// Service verifies the denormalized caches against the append-only logs and
// can rewrite them from scratch. Check never writes; Rebuild writes and
// audits every corrected row.
type Service interface {
	CheckAccounts(ctx context.Context, tenantID uuid.UUID) (*Report, error)
	CheckStock(ctx context.Context, tenantID uuid.UUID) (*Report, error)
	RebuildAccounts(ctx context.Context, tenantID uuid.UUID, actor audit.Actor) (*Report, error)
	RebuildStock(ctx context.Context, tenantID uuid.UUID, actor audit.Actor) (*Report, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor auditRecorder
	log     *logger.Logger
}

// NewService constructs the reconciliation service.
func NewService(repo Repository, tx txRunner, auditor auditRecorder, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reconcile repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, auditor: auditor, log: log}, nil
}

// Mismatch is one cached value that disagrees with its recomputation.
type Mismatch struct {
	EntityID uuid.UUID       `json:"entity_id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Stored   decimal.Decimal `json:"stored"`
	Computed decimal.Decimal `json:"computed"`
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("%s %s: stored %s, computed %s", m.Code, m.Name, m.Stored, m.Computed)
}

// Report is the outcome of one check or rebuild pass.
type Report struct {
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
	Repaired   bool       `json:"repaired"`
}

// Err combines every mismatch into a single error, nil when the pass found
// the caches consistent.
func (r *Report) Err() error {
	var err error
	for _, m := range r.Mismatches {
		err = multierr.Append(err, m)
	}
	return err
}

func (s *service) CheckAccounts(ctx context.Context, tenantID uuid.UUID) (*Report, error) {
	return s.accountsPass(ctx, tenantID, nil)
}

func (s *service) CheckStock(ctx context.Context, tenantID uuid.UUID) (*Report, error) {
	return s.stockPass(ctx, tenantID, nil)
}

func (s *service) RebuildAccounts(ctx context.Context, tenantID uuid.UUID, actor audit.Actor) (*Report, error) {
	return s.accountsPass(ctx, tenantID, &actor)
}

func (s *service) RebuildStock(ctx context.Context, tenantID uuid.UUID, actor audit.Actor) (*Report, error) {
	return s.stockPass(ctx, tenantID, &actor)
}

type cacheSnapshot struct {
	Value string `json:"value"`
}

func (s *service) accountsPass(ctx context.Context, tenantID uuid.UUID, actor *audit.Actor) (*Report, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	accounts, err := s.repo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	sums, err := s.repo.EntrySums(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum entries")
	}

	report := &Report{Checked: len(accounts)}
	for _, account := range accounts {
		computed := account.OpeningBalance.Add(sums[account.ID])
		if computed.Equal(account.Balance) {
			continue
		}
		report.Mismatches = append(report.Mismatches, Mismatch{
			EntityID: account.ID,
			Code:     account.Code,
			Name:     account.Name,
			Stored:   account.Balance,
			Computed: computed,
		})
	}

	if actor == nil || len(report.Mismatches) == 0 {
		return report, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, m := range report.Mismatches {
			if err := repo.SetAccountBalance(ctx, m.EntityID, m.Computed); err != nil {
				return fmt.Errorf("rewrite balance for %s: %w", m.Code, err)
			}
			s.recordAudit(ctx, tx, audit.RecordInput{
				TenantID:    tenantID,
				EntityType:  entityTypeAccount,
				EntityID:    m.EntityID,
				Action:      enums.AuditActionUpdate,
				OldValue:    cacheSnapshot{Value: m.Stored.String()},
				NewValue:    cacheSnapshot{Value: m.Computed.String()},
				Actor:       *actor,
				Description: "balance rebuilt from voucher entries",
			})
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rebuild balances")
	}
	report.Repaired = true
	return report, nil
}

func (s *service) stockPass(ctx context.Context, tenantID uuid.UUID, actor *audit.Actor) (*Report, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	items, err := s.repo.ListItems(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	sums, err := s.repo.MovementSums(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum movements")
	}

	report := &Report{Checked: len(items)}
	for _, item := range items {
		// Opening stock is itself a movement, so the log alone is the truth.
		computed := sums[item.ID]
		if computed.Equal(item.CurrentStock) {
			continue
		}
		report.Mismatches = append(report.Mismatches, Mismatch{
			EntityID: item.ID,
			Code:     item.Code,
			Name:     item.Name,
			Stored:   item.CurrentStock,
			Computed: computed,
		})
	}

	if actor == nil || len(report.Mismatches) == 0 {
		return report, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, m := range report.Mismatches {
			if err := repo.SetItemStock(ctx, m.EntityID, m.Computed); err != nil {
				return fmt.Errorf("rewrite stock for %s: %w", m.Code, err)
			}
			s.recordAudit(ctx, tx, audit.RecordInput{
				TenantID:    tenantID,
				EntityType:  entityTypeItem,
				EntityID:    m.EntityID,
				Action:      enums.AuditActionUpdate,
				OldValue:    cacheSnapshot{Value: m.Stored.String()},
				NewValue:    cacheSnapshot{Value: m.Computed.String()},
				Actor:       *actor,
				Description: "stock rebuilt from movement log",
			})
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rebuild stock")
	}
	report.Repaired = true
	return report, nil
}

// recordAudit appends the trail row inside the open transaction. A failed
// audit write is logged and swallowed.
func (s *service) recordAudit(ctx context.Context, tx *gorm.DB, input audit.RecordInput) {
	if err := s.auditor.RecordTx(ctx, tx, input); err != nil {
		s.log.Warn(s.log.WithField(ctx, "entity_id", input.EntityID.String()), "audit write failed: "+err.Error())
	}
}
