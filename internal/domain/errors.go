package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart возвращается, когда оформление запущено для пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductNotFound — товар из корзины отсутствует в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductUnavailable — товар снят с продажи (is_active = false).
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock — на складе меньше единиц, чем запрошено.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUpstreamUnavailable — таймаут или сетевая ошибка при обращении к смежному сервису.
	// Повтор остаётся на усмотрение вызывающего, оркестратор сам не ретраит.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrOrderPersist — запись заказа в ledger не удалась.
	ErrOrderPersist = errors.New("order persist failed")
	// ErrStockUpdate — каталог отверг запись нового остатка.
	ErrStockUpdate = errors.New("stock update failed")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists — попытка создать заказ с занятым ID.
	ErrOrderAlreadyExists = errors.New("order already exists")

	// ErrCustomerRequired — у заказа не указан покупатель.
	ErrCustomerRequired = errors.New("customer is required")
	// ErrLinesRequired — заказ обязан содержать хотя бы одну позицию.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// ErrLineQtyInvalid — некорректное количество в позиции (<= 0).
	ErrLineQtyInvalid = errors.New("line qty must be greater than zero")
	// ErrLinePriceInvalid — отрицательная цена позиции.
	ErrLinePriceInvalid = errors.New("line price must be non-negative")
	// ErrSubtotalMismatch — subtotal позиции не равен price * qty.
	ErrSubtotalMismatch = errors.New("line subtotal does not match price * qty")
	// ErrTotalMismatch — сумма заказа не равна сумме позиций.
	ErrTotalMismatch = errors.New("order total does not match lines sum")

	// ErrMoneyInvalid — строка не является корректной денежной суммой.
	ErrMoneyInvalid = errors.New("invalid money value")

	// ErrSKUConflict — SKU уже занят другим товаром.
	ErrSKUConflict = errors.New("sku must be unique")
	// ErrNegativeStock — попытка записать отрицательный остаток.
	ErrNegativeStock = errors.New("stock must be non-negative")

	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — токен не прошёл проверку подписи или истёк.
	ErrInvalidToken = errors.New("invalid token")

	// ErrCartQtyInvalid — некорректное количество при изменении корзины.
	ErrCartQtyInvalid = errors.New("cart qty must be greater than zero")

	// ErrIdempotencyKeyRequired — пустой idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — пустой хеш запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyNotFound — запись по ключу отсутствует.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// ErrIdempotencyKeyAlreadyExists — ключ уже занят записью с тем же хешем.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ переиспользован с другим запросом.
	ErrIdempotencyHashMismatch = errors.New("idempotency key is already used with different request")
)

// DetailError связывает доменную ошибку с текстом для клиента.
// Классификация идёт через errors.Is по полю Err, текст уходит в поле detail ответа.
type DetailError struct {
	Err    error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Err }

// Detailf создаёт DetailError с форматированным текстом.
func Detailf(sentinel error, format string, args ...interface{}) error {
	return &DetailError{Err: sentinel, Detail: fmt.Sprintf(format, args...)}
}

// DetailOf возвращает пользовательский текст ошибки, если он есть.
func DetailOf(err error) (string, bool) {
	var de *DetailError
	if errors.As(err, &de) {
		return de.Detail, true
	}
	return "", false
}
