package vouchers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

// Repository exposes persistence helpers for vouchers and their entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, voucher *models.Voucher) error
	Save(ctx context.Context, voucher *models.Voucher) error
	FindByID(ctx context.Context, tenantID, voucherID uuid.UUID) (*models.Voucher, error)
	List(ctx context.Context, params listParams) ([]models.Voucher, *pagination.Cursor, error)
	MaxNumber(ctx context.Context, tenantID uuid.UUID, datedPrefix string) (string, error)
	FindAccountsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Account, error)
	AdjustAccountBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a vouchers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listParams struct {
	TenantID uuid.UUID
	Type     *enums.VoucherType
	From     *time.Time
	To       *time.Time
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Create inserts the voucher together with its entries.
func (r *repositoryImpl) Create(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

// Save persists voucher header changes without touching entries.
func (r *repositoryImpl) Save(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Omit("Entries").Save(voucher).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, tenantID, voucherID uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&voucher, "id = ? AND tenant_id = ?", voucherID, tenantID).
		Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listParams) ([]models.Voucher, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Voucher{}).Where("tenant_id = ?", params.TenantID)
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.From != nil {
		query = query.Where("date >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("date <= ?", *params.To)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var vouchers []models.Voucher
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&vouchers).Error; err != nil {
		return nil, nil, err
	}

	if len(vouchers) > normalized {
		next := vouchers[normalized]
		vouchers = vouchers[:normalized]
		return vouchers, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return vouchers, nil, nil
}

// MaxNumber returns the lexically greatest voucher number issued for the
// dated prefix, or empty when none exists yet.
func (r *repositoryImpl) MaxNumber(ctx context.Context, tenantID uuid.UUID, datedPrefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("tenant_id = ? AND voucher_number LIKE ?", tenantID, datedPrefix+"%").
		Order("voucher_number DESC").
		Limit(1).
		Pluck("voucher_number", &numbers).
		Error
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (r *repositoryImpl) FindAccountsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&accounts).
		Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// AdjustAccountBalance moves the running balance by delta in a single
// statement so concurrent postings never lose updates.
func (r *repositoryImpl) AdjustAccountBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta)).
		Error
}
