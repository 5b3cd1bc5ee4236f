package domain

// ReservationResult фиксирует исход записи остатка по одной позиции
// коммит-прохода. Автоматического отката при последующей неудаче нет:
// результат нужен для логов и ручной сверки оператором.
type ReservationResult struct {
	ProductID      string
	RequestedQty   int32
	ResultingStock int32
}
