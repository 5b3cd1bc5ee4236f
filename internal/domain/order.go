package domain

import "time"

// OrderStatus описывает состояние заказа в ledger.
type OrderStatus string

const (
	// OrderStatusPaid — заказ оформлен; оплата в этой системе фиксируется
	// без реального списания средств.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusCanceled — заказ отменён административным действием.
	OrderStatusCanceled OrderStatus = "canceled"
)

// OrderLine — замороженная копия данных каталога на момент покупки.
// Последующие правки товара в каталоге позицию не затрагивают.
type OrderLine struct {
	ID        string
	ProductID string
	SKU       string
	Name      string
	// UnitPrice — цена за единицу, зафиксированная на валидационном чтении.
	UnitPrice Money
	Qty       int32
	Subtotal  Money
}

// Order агрегирует заказ и его позиции. После создания заказ неизменяем,
// кроме перехода статуса paid -> canceled.
type Order struct {
	ID        string
	Customer  string
	Status    OrderStatus
	Total     Money
	Lines     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Customer == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}

	// Сверяем сумму заказа с суммой позиций.
	var calc Money
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.UnitPrice < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		if line.Subtotal != line.UnitPrice.Mul(line.Qty) {
			errs = append(errs, ErrSubtotalMismatch)
		}
		calc += line.Subtotal
	}
	if calc != o.Total {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// OrderFilter задаёт критерии административной выборки заказов.
type OrderFilter struct {
	Status   OrderStatus
	Customer string
}
