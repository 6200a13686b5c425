package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
)

func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Account{}))
	return conn
}

func seedAccount(t *testing.T, repo Repository, tenantID uuid.UUID, code, name string, accountType enums.AccountType, active bool) *models.Account {
	t.Helper()
	account := &models.Account{
		TenantID:       tenantID,
		Code:           code,
		Name:           name,
		Type:           accountType,
		OpeningBalance: decimal.Zero,
		Balance:        decimal.Zero,
		TaxCategory:    enums.TaxCategoryNone,
		IsActive:       active,
	}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

func TestRepositoryFindByIDScopesTenant(t *testing.T) {
	repo := NewRepository(newRepoDB(t))
	tenantA := uuid.New()
	tenantB := uuid.New()
	cash := seedAccount(t, repo, tenantA, "1001", "Cash in Hand", enums.AccountTypeAsset, true)

	found, err := repo.FindByID(context.Background(), tenantA, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cash in Hand", found.Name)

	_, err = repo.FindByID(context.Background(), tenantB, cash.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListOrdersByCodeAndFiltersInactive(t *testing.T) {
	repo := NewRepository(newRepoDB(t))
	tenantID := uuid.New()
	seedAccount(t, repo, tenantID, "4001", "Sales", enums.AccountTypeRevenue, true)
	seedAccount(t, repo, tenantID, "1001", "Cash in Hand", enums.AccountTypeAsset, true)
	seedAccount(t, repo, tenantID, "2001", "Old Loan", enums.AccountTypeLiability, false)
	seedAccount(t, repo, uuid.New(), "1001", "Other Tenant Cash", enums.AccountTypeAsset, true)

	active, err := repo.List(context.Background(), tenantID, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "1001", active[0].Code)
	assert.Equal(t, "4001", active[1].Code)

	all, err := repo.List(context.Background(), tenantID, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepositorySavePersistsBalance(t *testing.T) {
	repo := NewRepository(newRepoDB(t))
	tenantID := uuid.New()
	cash := seedAccount(t, repo, tenantID, "1001", "Cash in Hand", enums.AccountTypeAsset, true)

	cash.Balance = decimal.RequireFromString("2500.75")
	require.NoError(t, repo.Save(context.Background(), cash))

	found, err := repo.FindByID(context.Background(), tenantID, cash.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.Equal(decimal.RequireFromString("2500.75")))
}
