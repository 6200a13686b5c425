package accounts

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
)

// maxCodeAttempts bounds retries when a generated code collides.
const maxCodeAttempts = 5

const entityTypeAccount = "account"

// Service exposes chart-of-accounts operations.
type Service interface {
	Create(ctx context.Context, input CreateAccountInput) (*models.Account, error)
	Deactivate(ctx context.Context, tenantID, accountID uuid.UUID, actor audit.Actor) (*models.Account, error)
	Get(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error)
	List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]models.Account, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, input audit.RecordInput) error
}

// CreateAccountInput holds the validated payload to create an account.
type CreateAccountInput struct {
	TenantID       uuid.UUID
	Name           string
	Type           enums.AccountType
	Code           string
	ParentID       *uuid.UUID
	OpeningBalance decimal.Decimal
	TaxCategory    enums.TaxCategory
	Actor          audit.Actor
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor auditRecorder
	log     *logger.Logger
}

// NewService constructs an accounts service instance.
func NewService(repo Repository, tx txRunner, auditor auditRecorder, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, auditor: auditor, log: log}, nil
}

// accountSnapshot is the audit-trail view of an account.
type accountSnapshot struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	OpeningBalance string `json:"opening_balance"`
	Balance        string `json:"balance"`
	TaxCategory    string `json:"tax_category"`
	IsActive       bool   `json:"is_active"`
}

func snapshotOf(account *models.Account) accountSnapshot {
	return accountSnapshot{
		Code:           account.Code,
		Name:           account.Name,
		Type:           string(account.Type),
		OpeningBalance: account.OpeningBalance.String(),
		Balance:        account.Balance.String(),
		TaxCategory:    string(account.TaxCategory),
		IsActive:       account.IsActive,
	}
}

// Create inserts an account, generating a code when none is supplied. The
// opening balance seeds the running balance.
func (s *service) Create(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account name required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type")
	}
	taxCategory := input.TaxCategory
	if taxCategory == "" {
		taxCategory = enums.TaxCategoryNone
	}
	if !taxCategory.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tax category")
	}

	explicitCode := strings.TrimSpace(input.Code)

	var created *models.Account
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := explicitCode
		if code == "" {
			code = generateCode(name)
		}

		account := &models.Account{
			TenantID:       input.TenantID,
			Code:           code,
			Name:           name,
			Type:           input.Type,
			ParentID:       input.ParentID,
			OpeningBalance: input.OpeningBalance,
			Balance:        input.OpeningBalance,
			TaxCategory:    taxCategory,
			IsActive:       true,
		}

		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if err := txRepo.Create(ctx, account); err != nil {
				return err
			}
			s.recordAudit(ctx, tx, audit.RecordInput{
				TenantID:    input.TenantID,
				EntityType:  entityTypeAccount,
				EntityID:    account.ID,
				Action:      enums.AuditActionCreate,
				NewValue:    snapshotOf(account),
				Actor:       input.Actor,
				Description: fmt.Sprintf("account %s created", account.Code),
			})
			return nil
		})
		if err == nil {
			created = account
			break
		}
		if db.IsUniqueViolation(err, "idx_accounts_tenant_code") {
			if explicitCode != "" {
				return nil, pkgerrors.New(pkgerrors.CodeDuplicateCode, "account code already in use")
			}
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert account")
	}
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique account code")
	}
	return created, nil
}

// Deactivate turns the account off without deleting it. Deactivating an
// already inactive account is a no-op.
func (s *service) Deactivate(ctx context.Context, tenantID, accountID uuid.UUID, actor audit.Actor) (*models.Account, error) {
	account, err := s.loadAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return account, nil
	}

	before := snapshotOf(account)
	account.IsActive = false

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Save(ctx, account); err != nil {
			return err
		}
		s.recordAudit(ctx, tx, audit.RecordInput{
			TenantID:    tenantID,
			EntityType:  entityTypeAccount,
			EntityID:    account.ID,
			Action:      enums.AuditActionUpdate,
			OldValue:    before,
			NewValue:    snapshotOf(account),
			Actor:       actor,
			Description: fmt.Sprintf("account %s deactivated", account.Code),
		})
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate account")
	}
	return account, nil
}

func (s *service) Get(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error) {
	return s.loadAccount(ctx, tenantID, accountID)
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]models.Account, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	accounts, err := s.repo.List(ctx, tenantID, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	return accounts, nil
}

func (s *service) loadAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	account, err := s.repo.FindByID(ctx, tenantID, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

// recordAudit appends the trail row inside the open transaction. A failed
// audit write never aborts the business mutation.
func (s *service) recordAudit(ctx context.Context, tx *gorm.DB, input audit.RecordInput) {
	if err := s.auditor.RecordTx(ctx, tx, input); err != nil {
		s.log.Warn(s.log.WithField(ctx, "entity_id", input.EntityID.String()), "audit write failed: "+err.Error())
	}
}

// generateCode derives a short human code from the account name, three
// uppercased letters plus three digits.
func generateCode(name string) string {
	var letters []rune
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return fmt.Sprintf("%s%03d", string(letters), rand.Intn(1000))
}
