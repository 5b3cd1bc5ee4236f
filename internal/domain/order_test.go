package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validOrder() Order {
	now := time.Now().UTC()
	return Order{
		ID:       "order-1",
		Customer: "user@example.com",
		Status:   OrderStatusPaid,
		Total:    3000,
		Lines: []OrderLine{
			{ID: "line-1", ProductID: "p1", SKU: "SKU-1", Name: "Widget", UnitPrice: 1000, Qty: 2, Subtotal: 2000},
			{ID: "line-2", ProductID: "p2", SKU: "SKU-2", Name: "Gadget", UnitPrice: 1000, Qty: 1, Subtotal: 1000},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants(t *testing.T) {
	cases := []struct {
		name    string
		mut     func(*Order)
		wantErr error
	}{
		{name: "корректный заказ", mut: func(o *Order) {}},
		{name: "без покупателя", mut: func(o *Order) { o.Customer = "" }, wantErr: ErrCustomerRequired},
		{name: "без позиций", mut: func(o *Order) { o.Lines = nil; o.Total = 0 }, wantErr: ErrLinesRequired},
		{name: "нулевое количество", mut: func(o *Order) { o.Lines[0].Qty = 0 }, wantErr: ErrLineQtyInvalid},
		{name: "отрицательная цена", mut: func(o *Order) {
			o.Lines[0].UnitPrice = -100
		}, wantErr: ErrLinePriceInvalid},
		{name: "subtotal не сходится", mut: func(o *Order) { o.Lines[0].Subtotal = 1 }, wantErr: ErrSubtotalMismatch},
		{name: "total не сходится", mut: func(o *Order) { o.Total = 1 }, wantErr: ErrTotalMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := validOrder()
			tc.mut(&order)

			errs := order.ValidateInvariants()
			if tc.wantErr == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Contains(t, errs, tc.wantErr)
		})
	}
}
