package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/storebot/internal/config"
	"github.com/m3rciful/storebot/internal/storage/memory"
)

const catalogYAML = `
categories:
  - title: Tea
    description: Loose leaf
    products:
      - title: Green tea
        price: "4.50"
        stock: 10
        image: https://cdn.example.com/green.jpg
      - title: Black tea
        description: Strong
        price: 3
  - title: Accessories
    products:
      - title: Cup
        price: "7.25"
`

func TestCatalogSeederIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	store := memory.New()
	seeder := CatalogSeeder(store, path)
	assert.Equal(t, "catalog", seeder.Name())
	require.NoError(t, seeder.Seed(ctx))
	require.NoError(t, seeder.Seed(ctx))

	cats, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Tea", cats[0].Title)

	products, err := store.ListProducts(ctx, cats[0].ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "4.5", products[0].Price.String())
	assert.Equal(t, 10, products[0].Stock)
	assert.Nil(t, products[0].Description)
	require.NotNil(t, products[1].Description)
	assert.Equal(t, "Strong", *products[1].Description)
}

func TestCatalogSeederEmptyPath(t *testing.T) {
	require.NoError(t, CatalogSeeder(memory.New(), "").Seed(context.Background()))
}

func TestParseCatalogRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"bad price":      "categories:\n  - title: T\n    products:\n      - {title: X, price: abc}\n",
		"negative price": "categories:\n  - title: T\n    products:\n      - {title: X, price: \"-1\"}\n",
		"no title":       "categories:\n  - description: nameless\n",
		"negative stock": "categories:\n  - title: T\n    products:\n      - {title: X, price: 1, stock: -2}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestManagersSeeder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	revoked := false
	seeder := ManagersSeeder(store, []config.ManagerSeed{
		{TelegramID: 42, FirstName: "Ann", Phone: "+1 555 000 1111"},
		{TelegramID: 43, Phone: "+15550002222", Staff: &revoked},
	})
	require.NoError(t, seeder.Seed(ctx))

	m, err := store.ManagerByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, m.IsStaff)
	assert.Equal(t, "+15550001111", m.Phone)

	m, err = store.ManagerByTelegramID(ctx, 43)
	require.NoError(t, err)
	assert.False(t, m.IsStaff)
}

func TestManagersSeederRejectsBadPhone(t *testing.T) {
	err := ManagersSeeder(memory.New(), []config.ManagerSeed{{TelegramID: 1, Phone: "12"}}).Seed(context.Background())
	assert.Error(t, err)
}
