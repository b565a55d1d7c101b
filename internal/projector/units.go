package projector

import (
	"fmt"
	"math/big"
	"strings"
)

// TimeUnit is a flow-rate period in seconds.
type TimeUnit int64

const (
	Second TimeUnit = 1
	Minute TimeUnit = 60
	Hour   TimeUnit = 3600
	Day    TimeUnit = 86400
	Week   TimeUnit = 604800
	Month  TimeUnit = 2628000
	Year   TimeUnit = 31536000
)

// ParseTimeUnit accepts the unit names used on the command line.
func ParseTimeUnit(name string) (TimeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "s", "sec", "second":
		return Second, nil
	case "min", "minute":
		return Minute, nil
	case "h", "hour":
		return Hour, nil
	case "d", "day":
		return Day, nil
	case "w", "week":
		return Week, nil
	case "mo", "month", "":
		return Month, nil
	case "y", "year":
		return Year, nil
	default:
		return 0, fmt.Errorf("unknown time unit: %s", name)
	}
}

func (u TimeUnit) String() string {
	switch u {
	case Second:
		return "second"
	case Minute:
		return "minute"
	case Hour:
		return "hour"
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return fmt.Sprintf("%ds", int64(u))
	}
}

// FlowRateFromAmountPerUnit converts an amount per period into a per-second rate,
// truncating toward zero like the on-chain conversion.
func FlowRateFromAmountPerUnit(amount *big.Int, unit TimeUnit) *big.Int {
	if unit <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Quo(orZero(amount), big.NewInt(int64(unit)))
}

// AmountPerUnit converts a per-second rate into the amount streamed per period.
func AmountPerUnit(rate *big.Int, unit TimeUnit) *big.Int {
	return new(big.Int).Mul(orZero(rate), big.NewInt(int64(unit)))
}
