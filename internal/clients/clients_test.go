package clients

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summitfg/planfee-api/internal/database"
	"github.com/summitfg/planfee-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func setupService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db)
}

func TestCreateClient(t *testing.T) {
	service := setupService(t)

	client := &types.Client{
		DisplayName: "Acme Manufacturing 401k",
		FullName:    strPtr("Acme Manufacturing Company Retirement Plan"),
	}
	require.NoError(t, service.CreateClient(client))
	assert.NotZero(t, client.ClientID)

	stored, err := service.db.GetClient(client.ClientID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Acme Manufacturing 401k", stored.DisplayName)
}

func TestCreateClientRequiresDisplayName(t *testing.T) {
	service := setupService(t)

	err := service.CreateClient(&types.Client{})
	assert.ErrorIs(t, err, ErrMissingDisplayName)
}

func TestUpdateClient(t *testing.T) {
	service := setupService(t)

	client := &types.Client{DisplayName: "Acme 401k"}
	require.NoError(t, service.CreateClient(client))

	updated, err := service.UpdateClient(client.ClientID, UpdateRequest{
		DisplayName:   strPtr("Acme Manufacturing 401k"),
		IMASignedDate: strPtr("2023-02-14"),
	})

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Acme Manufacturing 401k", updated.DisplayName)
	require.NotNil(t, updated.IMASignedDate)
	assert.Equal(t, "2023-02-14", *updated.IMASignedDate)
}

func TestUpdateClientRejectsEmptyName(t *testing.T) {
	service := setupService(t)

	client := &types.Client{DisplayName: "Acme 401k"}
	require.NoError(t, service.CreateClient(client))

	_, err := service.UpdateClient(client.ClientID, UpdateRequest{DisplayName: strPtr("")})
	assert.ErrorIs(t, err, ErrMissingDisplayName)
}

func TestUpdateClientNotFound(t *testing.T) {
	service := setupService(t)

	updated, err := service.UpdateClient(999, UpdateRequest{DisplayName: strPtr("x")})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestDeleteClientSoftDeletes(t *testing.T) {
	service := setupService(t)

	client := &types.Client{DisplayName: "Acme 401k"}
	require.NoError(t, service.CreateClient(client))
	require.NoError(t, service.db.DeleteClient(client.ClientID))

	gone, err := service.db.GetClient(client.ClientID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, service.db.DeleteClient(client.ClientID), gorm.ErrRecordNotFound)
}

func TestListClientsByDisplayName(t *testing.T) {
	service := setupService(t)

	require.NoError(t, service.CreateClient(&types.Client{DisplayName: "Acme Manufacturing 401k"}))
	require.NoError(t, service.CreateClient(&types.Client{DisplayName: "Harborview Dental 401k"}))

	rows, total, err := service.db.List(ListFilter{DisplayName: strPtr("Harbor"), Limit: 100})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Harborview Dental 401k", rows[0].DisplayName)
}

func TestContactsRequireExistingClient(t *testing.T) {
	service := setupService(t)

	err := service.CreateContact(&types.Contact{ClientID: 999, ContactType: "Primary"})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestContactsByClient(t *testing.T) {
	service := setupService(t)

	client := &types.Client{DisplayName: "Acme 401k"}
	require.NoError(t, service.CreateClient(client))

	require.NoError(t, service.CreateContact(&types.Contact{
		ClientID:    client.ClientID,
		ContactType: "Primary",
		ContactName: strPtr("Dana Whitfield"),
		Email:       strPtr("dana@acme.example"),
	}))
	require.NoError(t, service.CreateContact(&types.Contact{
		ClientID:    client.ClientID,
		ContactType: "Provider",
		ContactName: strPtr("Plan Services Desk"),
	}))

	all, err := service.db.GetContactsByClient(client.ClientID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	primary, err := service.db.GetContactsByClient(client.ClientID, strPtr("Primary"))
	require.NoError(t, err)
	require.Len(t, primary, 1)
	assert.Equal(t, "Dana Whitfield", *primary[0].ContactName)
}

func TestClientProviderLinks(t *testing.T) {
	service := setupService(t)

	client := &types.Client{DisplayName: "Acme 401k"}
	require.NoError(t, service.CreateClient(client))

	require.NoError(t, service.CreateClientProvider(&types.ClientProvider{
		ClientID:   client.ClientID,
		ProviderID: 1,
		StartDate:  strPtr("2022-01-01"),
		IsActive:   true,
	}))
	require.NoError(t, service.CreateClientProvider(&types.ClientProvider{
		ClientID:   client.ClientID,
		ProviderID: 2,
		EndDate:    strPtr("2021-12-31"),
		IsActive:   false,
	}))

	active, err := service.db.GetProvidersByClient(client.ClientID, boolPtr(true))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint(1), active[0].ProviderID)

	all, err := service.db.GetProvidersByClient(client.ClientID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
