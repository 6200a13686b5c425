package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
)

// Repository exposes persistence helpers for the chart of accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.Account) error
	Save(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error)
	List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]models.Account, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an accounts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repositoryImpl) Save(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		First(&account, "id = ? AND tenant_id = ?", accountID, tenantID).
		Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repositoryImpl) List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]models.Account, error) {
	query := r.db.WithContext(ctx).Model(&models.Account{}).Where("tenant_id = ?", tenantID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var accounts []models.Account
	if err := query.Order("code ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
