package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/glowdesk/backend/internal/domain/crm"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClientRepository_Integration tests the GormClientRepository against a real PostgreSQL database
func TestClientRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormClientRepository(testDB.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Create and FindByID", func(t *testing.T) {
		client, err := crm.NewClient(tenantID, "Maria Santos")
		require.NoError(t, err)
		require.NoError(t, client.SetPhone("+1 555 0100"))
		require.NoError(t, client.SetEmail("Maria@Example.com"))

		err = repo.Create(ctx, client)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, tenantID, client.ID)
		require.NoError(t, err)
		assert.Equal(t, client.ID, found.ID)
		assert.Equal(t, "Maria Santos", found.Name)
		assert.Equal(t, tenantID, found.TenantID)
		// Emails are normalized to lowercase on the aggregate.
		assert.Equal(t, "maria@example.com", found.Email)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		client, err := crm.NewClient(tenantID, "Isolated Client")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, client))

		otherTenant := uuid.New()
		_, err = repo.FindByID(ctx, otherTenant, client.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindByTaxID", func(t *testing.T) {
		client, err := crm.NewClient(tenantID, "Tax Client")
		require.NoError(t, err)
		require.NoError(t, client.SetTaxID("123.456.789-00"))
		require.NoError(t, repo.Create(ctx, client))

		found, err := repo.FindByTaxID(ctx, tenantID, "123.456.789-00")
		require.NoError(t, err)
		assert.Equal(t, client.ID, found.ID)

		_, err = repo.FindByTaxID(ctx, tenantID, "000.000.000-00")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Update persists changes", func(t *testing.T) {
		client, err := crm.NewClient(tenantID, "Before Update")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, client))

		require.NoError(t, client.SetName("After Update"))
		require.NoError(t, client.SetPhone("+1 555 0199"))
		require.NoError(t, repo.Update(ctx, client))

		found, err := repo.FindByID(ctx, tenantID, client.ID)
		require.NoError(t, err)
		assert.Equal(t, "After Update", found.Name)
		assert.Equal(t, "+1 555 0199", found.Phone)
	})

	t.Run("FindAll with keyword search", func(t *testing.T) {
		searchTenant := uuid.New()
		names := []string{"Ana Oliveira", "Beatriz Costa", "Ana Paula Lima"}
		for _, name := range names {
			client, err := crm.NewClient(searchTenant, name)
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, client))
		}

		// Keyword matching is case-insensitive against the normalized name.
		filter := crm.NewClientFilter().WithKeyword("ana")
		found, total, err := repo.FindAll(ctx, searchTenant, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, found, 2)
	})

	t.Run("FindAll with pagination", func(t *testing.T) {
		pageTenant := uuid.New()
		for i := 0; i < 7; i++ {
			client, err := crm.NewClient(pageTenant, fmt.Sprintf("Page Client %d", i))
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, client))
		}

		filter := crm.NewClientFilter().WithPagination(1, 3)
		page1, total, err := repo.FindAll(ctx, pageTenant, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
		assert.Len(t, page1, 3)

		filter = crm.NewClientFilter().WithPagination(3, 3)
		page3, _, err := repo.FindAll(ctx, pageTenant, filter)
		require.NoError(t, err)
		assert.Len(t, page3, 1)
	})

	t.Run("deactivation is a status flip, not a delete", func(t *testing.T) {
		statusTenant := uuid.New()

		active, err := crm.NewClient(statusTenant, "Active Client")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, active))

		inactive, err := crm.NewClient(statusTenant, "Inactive Client")
		require.NoError(t, err)
		require.NoError(t, inactive.Deactivate())
		require.NoError(t, repo.Create(ctx, inactive))

		filter := crm.NewClientFilter().WithStatus(crm.ClientStatusInactive)
		found, total, err := repo.FindAll(ctx, statusTenant, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, found, 1)
		assert.Equal(t, "Inactive Client", found[0].Name)

		// The record is still reachable by ID.
		byID, err := repo.FindByID(ctx, statusTenant, inactive.ID)
		require.NoError(t, err)
		assert.Equal(t, crm.ClientStatusInactive, byID.Status)
	})
}
