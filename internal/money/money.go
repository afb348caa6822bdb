package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid money amount")
)

// MaxScale is the finest granularity stored: rupiah with two decimal places.
const MaxScale = 2

// ParseAmount parses a user-supplied decimal string into a positive amount.
// Every client-entered amount goes through here; balances computed
// internally never do.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return CheckAmount(d)
}

// CheckAmount validates an already-parsed amount: strictly positive and no
// more than MaxScale decimal places.
func CheckAmount(d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if d.Exponent() < -MaxScale {
		return decimal.Zero, fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, MaxScale)
	}
	return d, nil
}

// FormatIDR renders an amount the way the client displays rupiah,
// e.g. "Rp 12.500.000". Used in notification payloads and logs only.
func FormatIDR(d decimal.Decimal) string {
	neg := d.IsNegative()
	whole := d.Abs().Truncate(0).String()

	var grouped []byte
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, whole[i])
	}

	if neg {
		return "-Rp " + string(grouped)
	}
	return "Rp " + string(grouped)
}
