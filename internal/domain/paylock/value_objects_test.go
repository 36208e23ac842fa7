//go:build unit

package paylock_test

import (
	"testing"

	"upi-checkout/internal/domain/paylock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAmount(t *testing.T) {
	t.Run("accepts zero and positive paise", func(t *testing.T) {
		zero, err := paylock.NewAmount(0)
		require.NoError(t, err)
		assert.True(t, zero.IsZero())

		amount, err := paylock.NewAmount(40005)
		require.NoError(t, err)
		assert.Equal(t, int64(40005), amount.Paise())
		assert.True(t, amount.IsPositive())
	})

	t.Run("rejects negative paise", func(t *testing.T) {
		_, err := paylock.NewAmount(-1)
		assert.ErrorIs(t, err, paylock.ErrNegativeAmount)
	})
}

func TestNewAmountFromDecimal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		paise int64
		errIs error
	}{
		{name: "whole rupees", input: "400", paise: 40000},
		{name: "one decimal place", input: "400.5", paise: 40050},
		{name: "two decimal places", input: "400.05", paise: 40005},
		{name: "trailing zeros beyond two places", input: "400.0500", paise: 40005},
		{name: "sub-paisa precision", input: "400.005", errIs: paylock.ErrSubunitPrecision},
		{name: "negative", input: "-1.00", errIs: paylock.ErrNegativeAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tc.input)
			require.NoError(t, err)

			amount, err := paylock.NewAmountFromDecimal(d)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.paise, amount.Paise())
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	mustAmount := func(paise int64) paylock.Amount {
		a, err := paylock.NewAmount(paise)
		require.NoError(t, err)
		return a
	}

	t.Run("add and add paise", func(t *testing.T) {
		a := mustAmount(40000)
		assert.Equal(t, int64(40005), a.Add(mustAmount(5)).Paise())
		assert.Equal(t, int64(40001), a.AddPaise(1).Paise())
	})

	t.Run("sub saturates at zero", func(t *testing.T) {
		a := mustAmount(100)
		assert.Equal(t, int64(40), a.Sub(mustAmount(60)).Paise())
		assert.True(t, a.Sub(mustAmount(500)).IsZero())
	})

	t.Run("string renders rupees with two places", func(t *testing.T) {
		assert.Equal(t, "400.05", mustAmount(40005).String())
		assert.Equal(t, "400.00", mustAmount(40000).String())
		assert.Equal(t, "0.01", mustAmount(1).String())
	})

	t.Run("decimal round trips", func(t *testing.T) {
		a := mustAmount(40005)
		back, err := paylock.NewAmountFromDecimal(a.Decimal())
		require.NoError(t, err)
		assert.True(t, a.Equal(back))
	})
}
