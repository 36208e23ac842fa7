package paylock

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrSubunitPrecision  = errors.New("amount has more than two decimal places")
)

// Amount is a rupee amount held as paise. The smallest currency unit (one
// paisa) doubles as the allocation increment.
type Amount struct {
	paise int64
}

const PaisePerRupee = 100

func NewAmount(paise int64) (Amount, error) {
	if paise < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{paise: paise}, nil
}

// NewAmountFromDecimal converts an externally parsed decimal value, rejecting
// anything finer than one paisa so "400.005" never rounds into a lock match.
func NewAmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return Amount{}, ErrSubunitPrecision
	}
	paise := d.Shift(2)
	if !paise.IsInteger() {
		return Amount{}, ErrSubunitPrecision
	}
	if paise.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{paise: paise.IntPart()}, nil
}

func ZeroAmount() Amount {
	return Amount{}
}

func (a Amount) Paise() int64 {
	return a.paise
}

func (a Amount) IsZero() bool {
	return a.paise == 0
}

func (a Amount) IsPositive() bool {
	return a.paise > 0
}

func (a Amount) Add(other Amount) Amount {
	return Amount{paise: a.paise + other.paise}
}

func (a Amount) AddPaise(n int64) Amount {
	return Amount{paise: a.paise + n}
}

// Sub saturates at zero; amounts never go negative.
func (a Amount) Sub(other Amount) Amount {
	remaining := a.paise - other.paise
	if remaining < 0 {
		remaining = 0
	}
	return Amount{paise: remaining}
}

func (a Amount) Equal(other Amount) bool {
	return a.paise == other.paise
}

func (a Amount) String() string {
	return fmt.Sprintf("%d.%02d", a.paise/PaisePerRupee, a.paise%PaisePerRupee)
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.paise, -2)
}
