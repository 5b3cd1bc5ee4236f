package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func testProduct(id, sku, name string, price domain.Money, stock int32) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID: id, SKU: sku, Name: name, Price: price, Stock: stock,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
}

func TestProductRepositoryCreate(t *testing.T) {
	repo := NewProductRepository()

	require.NoError(t, repo.Create(testProduct("p1", "SKU-1", "Widget", 1000, 5)))

	// Повтор SKU отклоняется.
	err := repo.Create(testProduct("p2", "SKU-1", "Other", 500, 1))
	assert.ErrorIs(t, err, domain.ErrSKUConflict)

	// Отрицательный остаток отклоняется.
	err = repo.Create(testProduct("p3", "SKU-3", "Broken", 500, -1))
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
}

func TestProductRepositoryUpdate(t *testing.T) {
	repo := NewProductRepository()
	require.NoError(t, repo.Create(testProduct("p1", "SKU-1", "Widget", 1000, 5)))
	require.NoError(t, repo.Create(testProduct("p2", "SKU-2", "Gadget", 500, 3)))

	newStock := int32(7)
	newPrice := domain.Money(1500)
	updated, err := repo.Update("p1", domain.ProductPatch{Stock: &newStock, Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, int32(7), updated.Stock)
	assert.Equal(t, domain.Money(1500), updated.Price)

	// nil-поля не трогаются.
	assert.Equal(t, "Widget", updated.Name)

	negative := int32(-1)
	_, err = repo.Update("p1", domain.ProductPatch{Stock: &negative})
	assert.ErrorIs(t, err, domain.ErrNegativeStock)

	takenSKU := "SKU-2"
	_, err = repo.Update("p1", domain.ProductPatch{SKU: &takenSKU})
	assert.ErrorIs(t, err, domain.ErrSKUConflict)

	_, err = repo.Update("missing", domain.ProductPatch{})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductRepositoryList(t *testing.T) {
	repo := NewProductRepository()
	require.NoError(t, repo.Create(testProduct("p1", "SKU-1", "Blue Widget", 1000, 5)))
	require.NoError(t, repo.Create(testProduct("p2", "SKU-2", "Red Gadget", 2500, 3)))
	inactive := testProduct("p3", "SKU-3", "Old Widget", 100, 0)
	inactive.IsActive = false
	require.NoError(t, repo.Create(inactive))

	all, err := repo.List(domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byQuery, err := repo.List(domain.ProductFilter{Query: "widget"})
	require.NoError(t, err)
	assert.Len(t, byQuery, 2)

	minPrice := domain.Money(2000)
	byPrice, err := repo.List(domain.ProductFilter{MinPrice: &minPrice})
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	assert.Equal(t, "p2", byPrice[0].ID)

	active := true
	byActive, err := repo.List(domain.ProductFilter{IsActive: &active})
	require.NoError(t, err)
	assert.Len(t, byActive, 2)
}

func TestProductRepositoryDelete(t *testing.T) {
	repo := NewProductRepository()
	require.NoError(t, repo.Create(testProduct("p1", "SKU-1", "Widget", 1000, 5)))

	require.NoError(t, repo.Delete("p1"))
	_, err := repo.Get("p1")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	// Удаление отсутствующего — no-op.
	assert.NoError(t, repo.Delete("p1"))
}
