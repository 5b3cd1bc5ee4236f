package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartRepositoryInMemory — in-memory реализация CartRepository.
// Повторяет семантику redis-хранилища: хеш корзины на покупателя,
// журнал сводок заказов и индекс сводок по ID заказа.
type cartRepositoryInMemory struct {
	mu     sync.RWMutex
	carts  map[string]map[string]int32
	orders map[string][][]byte
	byID   map[string][]byte
}

// NewCartRepository возвращает in-memory хранилище корзин.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		carts:  make(map[string]map[string]int32),
		orders: make(map[string][][]byte),
		byID:   make(map[string][]byte),
	}
}

// Items возвращает копию содержимого корзины.
func (r *cartRepositoryInMemory) Items(identity string) (map[string]int32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make(map[string]int32, len(r.carts[identity]))
	for productID, qty := range r.carts[identity] {
		items[productID] = qty
	}
	return items, nil
}

// Add увеличивает количество товара на qty.
func (r *cartRepositoryInMemory) Add(identity, productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrCartQtyInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[identity]
	if cart == nil {
		cart = make(map[string]int32)
		r.carts[identity] = cart
	}
	cart[productID] += qty
	return nil
}

// Set выставляет количество; qty <= 0 удаляет позицию.
func (r *cartRepositoryInMemory) Set(identity, productID string, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if qty <= 0 {
		delete(r.carts[identity], productID)
		return nil
	}

	cart := r.carts[identity]
	if cart == nil {
		cart = make(map[string]int32)
		r.carts[identity] = cart
	}
	cart[productID] = qty
	return nil
}

// Remove удаляет позицию из корзины.
func (r *cartRepositoryInMemory) Remove(identity, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts[identity], productID)
	return nil
}

// Clear удаляет корзину целиком.
func (r *cartRepositoryInMemory) Clear(identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, identity)
	return nil
}

// AppendOrder дописывает сводку заказа в журнал покупателя, новые первыми.
func (r *cartRepositoryInMemory) AppendOrder(identity, orderID string, summary []byte) error {
	summaryCopy := append([]byte(nil), summary...)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[identity] = append([][]byte{summaryCopy}, r.orders[identity]...)
	r.byID[orderID] = summaryCopy
	return nil
}

// ListOrders возвращает журнал сводок покупателя.
func (r *cartRepositoryInMemory) ListOrders(identity string) ([][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([][]byte, 0, len(r.orders[identity]))
	for _, summary := range r.orders[identity] {
		result = append(result, append([]byte(nil), summary...))
	}
	return result, nil
}

// GetOrder возвращает сводку по ID заказа или ErrOrderNotFound.
func (r *cartRepositoryInMemory) GetOrder(orderID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary, ok := r.byID[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return append([]byte(nil), summary...), nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
