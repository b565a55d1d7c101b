package projector

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatTokenAmount renders a smallest-unit amount with the token's decimals.
// Only for display; never feed the result back into a computation.
func FormatTokenAmount(amount *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(orZero(amount), -int32(decimals)).String()
}

// ParseTokenAmount converts human input such as "1.5" into smallest units.
// Digits beyond the token's precision are rejected rather than rounded.
func ParseTokenAmount(text string, decimals uint8) (*big.Int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return big.NewInt(0), nil
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", text, err)
	}
	scaled := value.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %q exceeds %d decimals", text, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatFlowRate renders a per-second rate as an amount per unit.
func FormatFlowRate(rate *big.Int, decimals uint8, unit TimeUnit) string {
	return FormatTokenAmount(AmountPerUnit(rate, unit), decimals) + "/" + unit.String()
}
