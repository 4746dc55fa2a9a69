package rate

import (
	"math"

	"github.com/shopspring/decimal"
)

// Rate is an annualized interest rate expressed as a decimal fraction
// (0.05 == 5%). It is used for presentation only; simulation runs on float64.
type Rate struct {
	decimal.Decimal
}

var (
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
)

// NewRate creates a Rate from a float64. NaN and infinities become zero;
// use IsRepresentable to detect them first.
func NewRate(value float64) Rate {
	if !IsRepresentable(value) {
		return Rate{decimal.Zero}
	}
	return Rate{decimal.NewFromFloat(value)}
}

// NewRateFromString parses a decimal fraction such as "0.0325".
func NewRateFromString(value string) (Rate, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Rate{}, err
	}
	return Rate{d}, nil
}

// IsRepresentable reports whether v can be held by a Rate.
func IsRepresentable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Percent returns the rate multiplied by 100.
func (r Rate) Percent() decimal.Decimal {
	return r.Decimal.Mul(hundred)
}

// BasisPoints returns the rate multiplied by 10,000.
func (r Rate) BasisPoints() decimal.Decimal {
	return r.Decimal.Mul(tenThousand)
}

// Sub subtracts another rate.
func (r Rate) Sub(other Rate) Rate {
	return Rate{r.Decimal.Sub(other.Decimal)}
}

// IsNegative checks if the rate is below zero.
func (r Rate) IsNegative() bool {
	return r.Decimal.IsNegative()
}

// String returns the rate as a percentage with 3 decimals, e.g. "5.000%".
func (r Rate) String() string {
	return r.Percent().StringFixed(3) + "%"
}

// FormatBps formats the rate in basis points with 1 decimal, e.g. "325.0bp".
func (r Rate) FormatBps() string {
	return r.BasisPoints().StringFixed(1) + "bp"
}

// FormatFixed formats the raw fraction with the given number of decimals.
func (r Rate) FormatFixed(places int32) string {
	return r.Decimal.StringFixed(places)
}

// Spread returns a - b in basis points, formatted with a sign.
func Spread(a, b Rate) string {
	d := a.Sub(b).BasisPoints()
	s := d.StringFixed(1) + "bp"
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}
