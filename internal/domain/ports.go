package domain

import (
	"context"
	"time"
)

// OrderRepository описывает требования к хранилищу заказов (ledger оркестратора).
type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями одной атомарной записью.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы покупателя, новые первыми.
	ListByCustomer(customer string, limit int) ([]Order, error)
	// ListAll возвращает заказы по административному фильтру.
	ListAll(filter OrderFilter) ([]Order, error)
	// Cancel переводит заказ в статус canceled. Повторная отмена — no-op.
	Cancel(id string) (Order, error)
}

// ProductRepository описывает хранилище каталога.
type ProductRepository interface {
	Create(product Product) error
	Get(id string) (Product, error)
	List(filter ProductFilter) ([]Product, error)
	// Update применяет частичное обновление. Отрицательный остаток
	// отклоняется с ErrNegativeStock, занятый SKU — с ErrSKUConflict.
	Update(id string, patch ProductPatch) (Product, error)
	// Delete удаляет товар; отсутствие записи ошибкой не считается.
	Delete(id string) error
}

// UserRepository описывает хранилище учётных записей.
type UserRepository interface {
	Create(user User) error
	GetByEmail(email string) (User, error)
	UpdatePassword(email, passwordHash string) error
}

// CartRepository описывает хранилище корзин и журнала сводок заказов.
type CartRepository interface {
	// Items возвращает содержимое корзины product_id -> qty.
	Items(identity string) (map[string]int32, error)
	// Add увеличивает количество товара на qty.
	Add(identity, productID string, qty int32) error
	// Set выставляет количество; qty <= 0 удаляет позицию.
	Set(identity, productID string, qty int32) error
	Remove(identity, productID string) error
	Clear(identity string) error

	// AppendOrder дописывает сводку заказа в журнал покупателя.
	AppendOrder(identity, orderID string, summary []byte) error
	ListOrders(identity string) ([][]byte, error)
	GetOrder(orderID string) ([]byte, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// CartGateway — клиент сервиса корзины, используемый оркестратором.
// Вызовы идут от имени покупателя (его bearer-токен прокидывается дальше).
type CartGateway interface {
	// Fetch читает снапшот корзины покупателя.
	Fetch(ctx context.Context, bearer string) (CartSnapshot, error)
	// Clear очищает корзину. Вызов best-effort: неуспех не валит оформление.
	Clear(ctx context.Context, bearer string) error
	// MirrorOrder дописывает сводку заказа в журнал корзинного сервиса (best-effort).
	MirrorOrder(ctx context.Context, bearer string, summary []byte) error
}

// CatalogGateway — клиент каталога. Чтение публичное, запись остатка
// требует сервисного токена с ролью admin.
type CatalogGateway interface {
	// Quote возвращает свежие данные товара (point-in-time чтение).
	Quote(ctx context.Context, productID string) (Product, error)
	// SetStock записывает новый остаток от имени сервисной учётки.
	SetStock(ctx context.Context, serviceBearer, productID string, stock int32) error
}

// ServiceTokenMinter чеканит короткоживущий сервисный токен с повышенной
// ролью. Токен создаётся непосредственно перед использованием и не кешируется.
type ServiceTokenMinter interface {
	MintServiceToken() (string, error)
}
