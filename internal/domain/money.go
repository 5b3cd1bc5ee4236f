package domain

import (
	"fmt"
	"strings"
)

// Money — денежная сумма в минимальных единицах (центах).
// Все денежные значения хранятся и считаются как целые числа,
// чтобы исключить накопление ошибок плавающей точки при суммировании позиций.
type Money int64

// ParseMoney разбирает десятичную запись суммы ("10", "10.5", "10.50").
// Более двух знаков после точки считаются ошибкой: шкала валюты фиксирована.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMoneyInvalid
	}

	negative := false
	if s[0] == '-' {
		negative = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || len(frac) > 2 {
		return 0, ErrMoneyInvalid
	}
	// 15 десятичных знаков целой части плюс два дробных укладываются в
	// int64 без переполнения; более длинная запись суммы — не деньги.
	if len(whole) > 15 {
		return 0, ErrMoneyInvalid
	}
	// Дополняем дробную часть до двух знаков: "10.5" -> 1050.
	for len(frac) < 2 {
		frac += "0"
	}

	var minor int64
	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0, ErrMoneyInvalid
		}
		minor = minor*10 + int64(r-'0')
	}
	if negative {
		minor = -minor
	}

	return Money(minor), nil
}

// Mul возвращает сумму за qty единиц. Умножение в минимальных единицах
// точное, округление не требуется.
func (m Money) Mul(qty int32) Money {
	return m * Money(qty)
}

// String форматирует сумму с двумя знаками после точки.
func (m Money) String() string {
	minor := int64(m)
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// MarshalJSON сериализует сумму как JSON-число с фиксированной точностью.
// Число формируется из целого значения, поэтому "20.00" остаётся ровно 20.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON принимает как число (10.5), так и строку ("10.50").
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
