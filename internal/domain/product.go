package domain

import "time"

// Product — запись каталога. Поле Stock — единственный разделяемый
// изменяемый ресурс системы; пишется только через эндпоинт каталога.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Price       Money
	Stock       int32
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductPatch описывает частичное обновление товара: nil-поля не трогаются.
type ProductPatch struct {
	SKU         *string
	Name        *string
	Description *string
	Price       *Money
	Stock       *int32
	IsActive    *bool
}

// ProductFilter задаёт параметры выборки каталога.
type ProductFilter struct {
	// Query ищется по подстроке в name и sku без учёта регистра.
	Query    string
	MinPrice *Money
	MaxPrice *Money
	IsActive *bool
}
