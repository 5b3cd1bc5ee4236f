package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    Money
		wantErr bool
	}{
		{name: "целое", input: "10", want: 1000},
		{name: "один знак после точки", input: "10.5", want: 1050},
		{name: "два знака после точки", input: "10.50", want: 1050},
		{name: "ноль", input: "0", want: 0},
		{name: "копейки", input: "0.07", want: 7},
		{name: "отрицательная сумма", input: "-3.25", want: -325},
		{name: "пробелы по краям", input: "  19.99  ", want: 1999},
		{name: "три знака после точки", input: "10.505", wantErr: true},
		{name: "пустая строка", input: "", wantErr: true},
		{name: "мусор", input: "abc", wantErr: true},
		{name: "точка без целой части", input: ".5", wantErr: true},
		{name: "максимальная длина целой части", input: "999999999999999.99", want: 99999999999999999},
		{name: "переполнение int64", input: "99999999999999999999", wantErr: true},
		{name: "переполнение с дробной частью", input: "9999999999999999.99", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMoney(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrMoneyInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMoneyMulIsExact(t *testing.T) {
	// 19.99 * 3 = 59.97 без дрейфа округления.
	price, err := ParseMoney("19.99")
	require.NoError(t, err)

	assert.Equal(t, Money(5997), price.Mul(3))
	assert.Equal(t, "59.97", price.Mul(3).String())
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "20.00", Money(2000).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-1.50", Money(-150).String())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Money(2000))
	require.NoError(t, err)
	// Фиксированная запись с двумя знаками, не "2e+01" и не "20".
	assert.Equal(t, "20.00", string(data))

	var fromNumber Money
	require.NoError(t, json.Unmarshal([]byte("10.5"), &fromNumber))
	assert.Equal(t, Money(1050), fromNumber)

	var fromString Money
	require.NoError(t, json.Unmarshal([]byte(`"10.50"`), &fromString))
	assert.Equal(t, Money(1050), fromString)
}
