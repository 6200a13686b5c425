package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/internal/inventory"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/config"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/metrics"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

const entityTypeVoucher = "voucher"

// numberConflictBackoff spaces numbering retries under contention.
const numberConflictBackoff = 10 * time.Millisecond

// balanceEpsilon is the largest tolerated debit/credit drift per voucher.
var balanceEpsilon = decimal.NewFromFloat(0.01)

// Service exposes the voucher posting engine.
type Service interface {
	Create(ctx context.Context, input CreateVoucherInput) (*models.Voucher, error)
	Regularize(ctx context.Context, input RegularizeInput) (*models.Voucher, error)
	Get(ctx context.Context, tenantID, voucherID uuid.UUID) (*models.Voucher, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error
}

type stockRecorder interface {
	RecordMovementTx(ctx context.Context, tx *gorm.DB, input inventory.RecordMovementInput) (*models.StockMovement, error)
}

// EntryInput is one debit or credit line of a voucher to post.
type EntryInput struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Narration string
}

// StockLineInput links a posting to an inventory quantity change.
type StockLineInput struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

// CreateVoucherInput holds the validated payload to post a voucher.
type CreateVoucherInput struct {
	TenantID     uuid.UUID
	Type         enums.VoucherType
	Date         time.Time
	Narration    string
	ManualNumber string
	IsPostDated  bool
	PDCDate      *time.Time
	Entries      []EntryInput
	StockLines   []StockLineInput
	Actor        audit.Actor
}

// RegularizeInput converts a post-dated voucher into a regular one.
type RegularizeInput struct {
	TenantID  uuid.UUID
	VoucherID uuid.UUID
	Date      *time.Time
	Actor     audit.Actor
}

// ListParams configures filtering and pagination for voucher reads.
type ListParams struct {
	TenantID uuid.UUID
	Type     *enums.VoucherType
	From     *time.Time
	To       *time.Time
	Limit    int
	Cursor   string
}

// ListResult wraps returned vouchers and the cursor for the next page.
type ListResult struct {
	Items  []models.Voucher `json:"items"`
	Cursor string           `json:"cursor"`
}

type service struct {
	repo      Repository
	tx        txRunner
	auditor   auditRecorder
	stock     stockRecorder
	numbering config.NumberingConfig
	metrics   *metrics.PostingMetrics
	log       *logger.Logger
	now       func() time.Time
}

// NewService constructs the voucher engine.
func NewService(
	repo Repository,
	tx txRunner,
	auditor auditRecorder,
	stock stockRecorder,
	numbering config.NumberingConfig,
	posting *metrics.PostingMetrics,
	log *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vouchers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock recorder required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if numbering.MaxRetries <= 0 {
		numbering.MaxRetries = 5
	}
	return &service{
		repo:      repo,
		tx:        tx,
		auditor:   auditor,
		stock:     stock,
		numbering: numbering,
		metrics:   posting,
		log:       log,
		now:       time.Now,
	}, nil
}

// voucherSnapshot is the audit-trail view of a voucher header.
type voucherSnapshot struct {
	VoucherNumber   string  `json:"voucher_number"`
	Type            string  `json:"type"`
	Date            string  `json:"date"`
	TotalDebit      string  `json:"total_debit"`
	TotalCredit     string  `json:"total_credit"`
	IsPostDated     bool    `json:"is_post_dated"`
	PDCDate         *string `json:"pdc_date,omitempty"`
	RegularizedDate *string `json:"regularized_date,omitempty"`
}

func snapshotOf(voucher *models.Voucher) voucherSnapshot {
	snap := voucherSnapshot{
		VoucherNumber: voucher.VoucherNumber,
		Type:          string(voucher.Type),
		Date:          voucher.Date.UTC().Format("2006-01-02"),
		TotalDebit:    voucher.TotalDebit.String(),
		TotalCredit:   voucher.TotalCredit.String(),
		IsPostDated:   voucher.IsPostDated,
	}
	if voucher.PDCDate != nil {
		formatted := voucher.PDCDate.UTC().Format("2006-01-02")
		snap.PDCDate = &formatted
	}
	if voucher.RegularizedDate != nil {
		formatted := voucher.RegularizedDate.UTC().Format("2006-01-02")
		snap.RegularizedDate = &formatted
	}
	return snap
}

// Create validates and posts a voucher atomically: number assignment, entry
// rows, account balance deltas, stock movements, and the audit row all land
// in one transaction or not at all.
func (s *service) Create(ctx context.Context, input CreateVoucherInput) (*models.Voucher, error) {
	start := time.Now()

	totalDebit, totalCredit, err := s.validateCreate(ctx, input)
	if err != nil {
		return nil, err
	}

	voucher, err := s.post(ctx, input, totalDebit, totalCredit)
	if err != nil {
		return nil, err
	}

	s.metrics.IncPosted(string(input.Type))
	s.metrics.ObserveDuration(string(input.Type), time.Since(start))
	return voucher, nil
}

func (s *service) validateCreate(ctx context.Context, input CreateVoucherInput) (decimal.Decimal, decimal.Decimal, error) {
	zero := decimal.Zero
	fail := func(code pkgerrors.Code, msg string) (decimal.Decimal, decimal.Decimal, error) {
		s.metrics.IncFailure("validation")
		return zero, zero, pkgerrors.New(code, msg)
	}

	if input.TenantID == uuid.Nil {
		return fail(pkgerrors.CodeValidation, "tenant id required")
	}
	if !input.Type.IsValid() {
		return fail(pkgerrors.CodeValidation, "invalid voucher type")
	}
	if input.Date.IsZero() {
		return fail(pkgerrors.CodeValidation, "voucher date required")
	}
	if len(input.Entries) == 0 {
		return fail(pkgerrors.CodeValidation, "voucher requires at least one entry")
	}
	if len(input.StockLines) > 0 && !input.Type.AffectsInventory() {
		return fail(pkgerrors.CodeValidation, "voucher type does not move inventory")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	accountIDs := make([]uuid.UUID, 0, len(input.Entries))
	seen := make(map[uuid.UUID]struct{}, len(input.Entries))
	for i, entry := range input.Entries {
		if entry.AccountID == uuid.Nil {
			return fail(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: account id required", i))
		}
		if entry.Debit.IsNegative() || entry.Credit.IsNegative() {
			return fail(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: amounts cannot be negative", i))
		}
		debitSet := entry.Debit.IsPositive()
		creditSet := entry.Credit.IsPositive()
		if debitSet == creditSet {
			return fail(pkgerrors.CodeValidation, fmt.Sprintf("entry %d: exactly one of debit or credit must be set", i))
		}
		totalDebit = totalDebit.Add(entry.Debit)
		totalCredit = totalCredit.Add(entry.Credit)
		if _, ok := seen[entry.AccountID]; !ok {
			seen[entry.AccountID] = struct{}{}
			accountIDs = append(accountIDs, entry.AccountID)
		}
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(balanceEpsilon) {
		s.metrics.IncFailure("unbalanced")
		return zero, zero, pkgerrors.New(pkgerrors.CodeUnbalanced, "voucher debits and credits do not balance").
			WithDetails(map[string]string{
				"total_debit":  totalDebit.String(),
				"total_credit": totalCredit.String(),
				"difference":   totalDebit.Sub(totalCredit).String(),
			})
	}

	accounts, err := s.repo.FindAccountsByIDs(ctx, input.TenantID, accountIDs)
	if err != nil {
		s.metrics.IncFailure("dependency")
		return zero, zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load accounts")
	}
	active := make(map[uuid.UUID]bool, len(accounts))
	for _, account := range accounts {
		active[account.ID] = account.IsActive
	}
	for _, id := range accountIDs {
		isActive, found := active[id]
		if !found {
			return fail(pkgerrors.CodeValidation, fmt.Sprintf("account %s not found", id))
		}
		if !isActive {
			return fail(pkgerrors.CodeValidation, fmt.Sprintf("account %s is inactive", id))
		}
	}

	for i, line := range input.StockLines {
		if line.ItemID == uuid.Nil {
			return fail(pkgerrors.CodeValidation, fmt.Sprintf("stock line %d: item id required", i))
		}
		if !line.Quantity.IsPositive() {
			return fail(pkgerrors.CodeValidation, fmt.Sprintf("stock line %d: quantity must be positive", i))
		}
	}

	return totalDebit, totalCredit, nil
}

func (s *service) post(ctx context.Context, input CreateVoucherInput, totalDebit, totalCredit decimal.Decimal) (*models.Voucher, error) {
	var pdcDate *time.Time
	if input.IsPostDated {
		date := input.Date
		if input.PDCDate != nil {
			date = *input.PDCDate
		}
		pdcDate = &date
	}

	var created *models.Voucher
	backoff := retry.WithMaxRetries(uint64(s.numbering.MaxRetries), retry.NewConstant(numberConflictBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		voucher := &models.Voucher{
			TenantID:    input.TenantID,
			Type:        input.Type,
			Date:        input.Date,
			Narration:   input.Narration,
			TotalDebit:  totalDebit,
			TotalCredit: totalCredit,
			IsPosted:    true,
			IsPostDated: input.IsPostDated,
			PDCDate:     pdcDate,
			IsImmutable: true,
		}
		voucher.Entries = make([]models.VoucherEntry, len(input.Entries))
		for i, entry := range input.Entries {
			voucher.Entries[i] = models.VoucherEntry{
				AccountID: entry.AccountID,
				Debit:     entry.Debit,
				Credit:    entry.Credit,
				Narration: entry.Narration,
				Position:  i,
			}
		}

		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)

			if s.numbering.AutoNumbering {
				// numbers group by posting day, not by the voucher's ledger date
				prefix := s.numbering.PrefixFor(string(input.Type))
				postingDay := s.now().UTC()
				datedPrefix := fmt.Sprintf("%s-%s", prefix, postingDay.Format("020106"))
				last, err := txRepo.MaxNumber(ctx, input.TenantID, datedPrefix)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: read last voucher number")
				}
				voucher.VoucherNumber = formatNumber(prefix, postingDay, nextSequence(last))
			} else {
				voucher.VoucherNumber = strings.TrimSpace(input.ManualNumber)
			}

			if err := txRepo.Create(ctx, voucher); err != nil {
				return err
			}

			for _, entry := range voucher.Entries {
				delta := entry.Debit.Sub(entry.Credit)
				if err := txRepo.AdjustAccountBalance(ctx, entry.AccountID, delta); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: adjust account balance")
				}
			}

			if len(input.StockLines) > 0 {
				direction := input.Type.StockDirection()
				for _, line := range input.StockLines {
					voucherID := voucher.ID
					_, err := s.stock.RecordMovementTx(ctx, tx, inventory.RecordMovementInput{
						TenantID:  input.TenantID,
						ItemID:    line.ItemID,
						VoucherID: &voucherID,
						Type:      direction,
						Quantity:  line.Quantity,
						Rate:      line.Rate,
						Narration: voucher.VoucherNumber,
						Date:      input.Date,
					})
					if err != nil {
						return err
					}
				}
			}

			s.recordAudit(ctx, tx, audit.RecordInput{
				TenantID:    input.TenantID,
				EntityType:  entityTypeVoucher,
				EntityID:    voucher.ID,
				Action:      enums.AuditActionCreate,
				NewValue:    snapshotOf(voucher),
				Actor:       input.Actor,
				Description: fmt.Sprintf("voucher %s posted", voucher.VoucherNumber),
			})
			return nil
		})
		if txErr != nil {
			if s.numbering.AutoNumbering && db.IsUniqueViolation(txErr, "idx_vouchers_tenant_number") {
				s.metrics.IncNumberRetry()
				return retry.RetryableError(txErr)
			}
			return txErr
		}

		created = voucher
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			if appErr.Code() == pkgerrors.CodeDependency {
				s.metrics.IncFailure("dependency")
			}
			return nil, err
		}
		if db.IsUniqueViolation(err, "idx_vouchers_tenant_number") {
			s.metrics.IncFailure("conflict")
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate a voucher number")
		}
		s.metrics.IncFailure("dependency")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post voucher")
	}
	return created, nil
}

// Regularize converts a post-dated voucher into a regular one. Calling it on
// a voucher that is not post-dated, including a second time, is a state
// conflict.
func (s *service) Regularize(ctx context.Context, input RegularizeInput) (*models.Voucher, error) {
	voucher, err := s.loadVoucher(ctx, input.TenantID, input.VoucherID)
	if err != nil {
		return nil, err
	}
	if !voucher.IsPostDated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "voucher is not post-dated")
	}

	before := snapshotOf(voucher)

	newDate := voucher.Date
	switch {
	case input.Date != nil:
		newDate = *input.Date
	case voucher.PDCDate != nil:
		newDate = *voucher.PDCDate
	}
	now := s.now().UTC()
	voucher.IsPostDated = false
	voucher.RegularizedDate = &now
	voucher.Date = newDate

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Save(ctx, voucher); err != nil {
			return err
		}
		s.recordAudit(ctx, tx, audit.RecordInput{
			TenantID:    input.TenantID,
			EntityType:  entityTypeVoucher,
			EntityID:    voucher.ID,
			Action:      enums.AuditActionUpdate,
			OldValue:    before,
			NewValue:    snapshotOf(voucher),
			Actor:       input.Actor,
			Description: fmt.Sprintf("voucher %s regularized", voucher.VoucherNumber),
		})
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: regularize voucher")
	}
	return voucher, nil
}

func (s *service) Get(ctx context.Context, tenantID, voucherID uuid.UUID) (*models.Voucher, error) {
	return s.loadVoucher(ctx, tenantID, voucherID)
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if params.Type != nil && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid voucher type filter")
	}

	query := listParams{
		TenantID: params.TenantID,
		Type:     params.Type,
		From:     params.From,
		To:       params.To,
		Limit:    params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) loadVoucher(ctx context.Context, tenantID, voucherID uuid.UUID) (*models.Voucher, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if voucherID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher id required")
	}
	voucher, err := s.repo.FindByID(ctx, tenantID, voucherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	return voucher, nil
}

func (s *service) recordAudit(ctx context.Context, tx *gorm.DB, input audit.RecordInput) {
	if err := s.auditor.RecordTx(ctx, tx, input); err != nil {
		s.log.Warn(s.log.WithField(ctx, "entity_id", input.EntityID.String()), "audit write failed: "+err.Error())
	}
}
