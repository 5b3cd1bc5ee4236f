package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// productRepositoryInMemory — in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет товар, проверяя уникальность SKU.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.SKU == product.SKU {
			return domain.ErrSKUConflict
		}
	}
	if product.Stock < 0 {
		return domain.ErrNegativeStock
	}
	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// List возвращает товары по фильтру, отсортированные по имени.
func (r *productRepositoryInMemory) List(filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if !matchesFilter(product, filter) {
			continue
		}
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Update применяет частичное обновление. Отрицательный остаток и занятый
// SKU отклоняются до записи.
func (r *productRepositoryInMemory) Update(id string, patch domain.ProductPatch) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}

	if patch.SKU != nil && *patch.SKU != product.SKU {
		for otherID, other := range r.items {
			if otherID != id && other.SKU == *patch.SKU {
				return domain.Product{}, domain.ErrSKUConflict
			}
		}
		product.SKU = *patch.SKU
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return domain.Product{}, domain.ErrNegativeStock
		}
		product.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	product.UpdatedAt = time.Now().UTC()

	r.items[id] = product
	return product, nil
}

// Delete удаляет товар; отсутствие записи ошибкой не считается.
func (r *productRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func matchesFilter(product domain.Product, filter domain.ProductFilter) bool {
	if filter.Query != "" {
		query := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(product.Name), query) &&
			!strings.Contains(strings.ToLower(product.Description), query) {
			return false
		}
	}
	if filter.MinPrice != nil && product.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && product.Price > *filter.MaxPrice {
		return false
	}
	if filter.IsActive != nil && product.IsActive != *filter.IsActive {
		return false
	}
	return true
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
