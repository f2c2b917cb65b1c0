package fixed

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Precision is the number of fractional digits carried by a Decimal.
const Precision = 18

var fractional = uint256.NewInt(1_000_000_000_000_000_000)

// Decimal is an unsigned fixed-point number with 18 fractional digits.
// The zero value is 0. Decimals are values: operations never mutate the
// receiver.
type Decimal struct {
	raw uint256.Int
}

// Zero returns 0.
func Zero() Decimal { return Decimal{} }

// One returns 1.
func One() Decimal { return Decimal{raw: *fractional} }

// NewFromRaw wraps an integer already scaled by 10^18.
func NewFromRaw(raw *uint256.Int) Decimal {
	var d Decimal
	d.raw.Set(raw)
	return d
}

// NewFromUint returns the Decimal equal to the integer v.
func NewFromUint(v *uint256.Int) (Decimal, error) {
	var d Decimal
	if _, overflow := d.raw.MulOverflow(v, fractional); overflow {
		return Decimal{}, fmt.Errorf("decimal from %s: %w", v.Dec(), ErrOverflow)
	}
	return d, nil
}

// NewFromUint64 returns the Decimal equal to v. It cannot overflow.
func NewFromUint64(v uint64) Decimal {
	var d Decimal
	d.raw.Mul(uint256.NewInt(v), fractional)
	return d
}

// Percent returns v/100.
func Percent(v uint64) Decimal {
	var d Decimal
	d.raw.Mul(uint256.NewInt(v), uint256.NewInt(10_000_000_000_000_000))
	return d
}

// Permille returns v/1000.
func Permille(v uint64) Decimal {
	var d Decimal
	d.raw.Mul(uint256.NewInt(v), uint256.NewInt(1_000_000_000_000_000))
	return d
}

// FromRatio returns floor(num/den) at 18-digit precision.
func FromRatio(num, den *uint256.Int) (Decimal, error) {
	raw, err := MulDiv(num, fractional, den)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{raw: *raw}, nil
}

// Parse reads "123", "0.5" or "1.000000000000000001". At most 18 fractional
// digits are accepted and both sides of the point must be present.
func Parse(input string) (Decimal, error) {
	parts := strings.Split(input, ".")
	if len(parts) > 2 {
		return Decimal{}, fmt.Errorf("%w: more than one decimal point in %q", ErrInvalidDecimal, input)
	}

	whole, err := ParseUint(parts[0])
	if err != nil {
		return Decimal{}, fmt.Errorf("whole part of %q: %w", input, err)
	}
	d, err := NewFromUint(whole)
	if err != nil {
		return Decimal{}, err
	}
	if len(parts) == 1 {
		return d, nil
	}

	frac := parts[1]
	if len(frac) > Precision {
		return Decimal{}, fmt.Errorf("%w: more than %d fractional digits in %q", ErrInvalidDecimal, Precision, input)
	}
	digits, err := ParseUint(frac)
	if err != nil {
		return Decimal{}, fmt.Errorf("fractional part of %q: %w", input, err)
	}
	shift, err := Pow10(uint(Precision - len(frac)))
	if err != nil {
		return Decimal{}, err
	}
	digits.Mul(digits, shift)
	if _, overflow := d.raw.AddOverflow(&d.raw, digits); overflow {
		return Decimal{}, fmt.Errorf("parse %q: %w", input, ErrOverflow)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(input string) Decimal {
	d, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return d
}

// String renders the shortest form: "12", "0.5", "0.000000000000000001".
func (d Decimal) String() string {
	whole := new(uint256.Int).Div(&d.raw, fractional)
	frac := new(uint256.Int).Mod(&d.raw, fractional)
	if frac.IsZero() {
		return whole.Dec()
	}
	fs := frac.Dec()
	fs = strings.Repeat("0", Precision-len(fs)) + fs
	return whole.Dec() + "." + strings.TrimRight(fs, "0")
}

// MarshalText implements encoding.TextMarshaler.
func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decimal) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Raw returns a copy of the underlying integer scaled by 10^18.
func (d Decimal) Raw() *uint256.Int {
	return new(uint256.Int).Set(&d.raw)
}

// IsZero reports whether d == 0.
func (d Decimal) IsZero() bool { return d.raw.IsZero() }

// Cmp returns -1, 0 or +1.
func (d Decimal) Cmp(o Decimal) int { return d.raw.Cmp(&o.raw) }

// Lt reports d < o.
func (d Decimal) Lt(o Decimal) bool { return d.raw.Lt(&o.raw) }

// Gt reports d > o.
func (d Decimal) Gt(o Decimal) bool { return d.raw.Gt(&o.raw) }

// Equal reports d == o.
func (d Decimal) Equal(o Decimal) bool { return d.raw.Eq(&o.raw) }

// Add returns d+o.
func (d Decimal) Add(o Decimal) (Decimal, error) {
	var z Decimal
	if _, overflow := z.raw.AddOverflow(&d.raw, &o.raw); overflow {
		return Decimal{}, ErrOverflow
	}
	return z, nil
}

// Sub returns d-o.
func (d Decimal) Sub(o Decimal) (Decimal, error) {
	var z Decimal
	if _, underflow := z.raw.SubOverflow(&d.raw, &o.raw); underflow {
		return Decimal{}, ErrUnderflow
	}
	return z, nil
}

// SaturatingSub returns d-o, or zero when o > d.
func (d Decimal) SaturatingSub(o Decimal) Decimal {
	return Decimal{raw: *SaturatingSub(&d.raw, &o.raw)}
}

// AbsDiff returns |d-o|.
func (d Decimal) AbsDiff(o Decimal) Decimal {
	if d.Lt(o) {
		return o.SaturatingSub(d)
	}
	return d.SaturatingSub(o)
}

// WithinAtoms reports whether |d-o| is at most n units of 10^-18.
func (d Decimal) WithinAtoms(o Decimal, n uint64) bool {
	diff := d.AbsDiff(o)
	return diff.raw.Cmp(uint256.NewInt(n)) <= 0
}

// Mul returns floor(d*o).
func (d Decimal) Mul(o Decimal) (Decimal, error) {
	raw, err := MulDiv(&d.raw, &o.raw, fractional)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{raw: *raw}, nil
}

// Quo returns floor(d/o).
func (d Decimal) Quo(o Decimal) (Decimal, error) {
	raw, err := MulDiv(&d.raw, fractional, &o.raw)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{raw: *raw}, nil
}

// MulInt returns d*k.
func (d Decimal) MulInt(k *uint256.Int) (Decimal, error) {
	raw, err := Mul(&d.raw, k)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{raw: *raw}, nil
}

// MulUint64 returns d*k.
func (d Decimal) MulUint64(k uint64) (Decimal, error) {
	return d.MulInt(uint256.NewInt(k))
}

// QuoInt returns floor(d/k) at 18-digit precision.
func (d Decimal) QuoInt(k *uint256.Int) (Decimal, error) {
	raw, err := Quo(&d.raw, k)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{raw: *raw}, nil
}

// MulUint returns floor(v*d) as an integer.
func (d Decimal) MulUint(v *uint256.Int) (*uint256.Int, error) {
	return MulDiv(v, &d.raw, fractional)
}

// Floor returns the integer part of d.
func (d Decimal) Floor() *uint256.Int {
	return new(uint256.Int).Div(&d.raw, fractional)
}

// MulQuo returns floor(a*b/c) without rounding the intermediate product.
func MulQuo(a, b, c Decimal) (Decimal, error) {
	raw, err := MulDiv(&a.raw, &b.raw, &c.raw)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{raw: *raw}, nil
}

// Sum adds all values.
func Sum(values []Decimal) (Decimal, error) {
	total := Zero()
	for _, v := range values {
		next, err := total.Add(v)
		if err != nil {
			return Decimal{}, err
		}
		total = next
	}
	return total, nil
}
