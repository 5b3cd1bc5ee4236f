package domain

import "sort"

// CartLine — одна позиция снапшота корзины.
type CartLine struct {
	ProductID string
	Qty       int32
}

// CartSnapshot — снимок корзины на момент старта оформления.
// Читается один раз и дальше не мутируется; позиции обрабатываются
// строго в порядке итерации снапшота.
type CartSnapshot struct {
	Identity string
	Lines    []CartLine
}

// NewCartSnapshot строит снапшот из отображения product_id -> qty.
// Порядок позиций фиксируется сортировкой по product_id, чтобы итерация
// была детерминированной независимо от источника данных.
func NewCartSnapshot(identity string, items map[string]int32) CartSnapshot {
	lines := make([]CartLine, 0, len(items))
	for pid, qty := range items {
		lines = append(lines, CartLine{ProductID: pid, Qty: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return CartSnapshot{Identity: identity, Lines: lines}
}

// Empty сообщает, пуста ли корзина.
func (s CartSnapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Validate проверяет позиции снапшота: количества должны быть положительными.
func (s CartSnapshot) Validate() []error {
	var errs []error
	for _, line := range s.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrCartQtyInvalid)
		}
	}
	return errs
}
