package fixed

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	cases := []struct {
		input string
		raw   string
		out   string
	}{
		{input: "0", raw: "0", out: "0"},
		{input: "1", raw: "1000000000000000000", out: "1"},
		{input: "1.23", raw: "1230000000000000000", out: "1.23"},
		{input: "000012", raw: "12000000000000000000", out: "12"},
		{input: "0.000000000000000001", raw: "1", out: "0.000000000000000001"},
		{input: "0.500", raw: "500000000000000000", out: "0.5"},
		{input: "340282366920938463463.374607431768211455", raw: "340282366920938463463374607431768211455", out: "340282366920938463463.374607431768211455"},
	}
	for _, tc := range cases {
		d, err := Parse(tc.input)
		require.NoError(t, err, tc.input)
		require.Equal(t, tc.raw, d.Raw().Dec(), tc.input)
		require.Equal(t, tc.out, d.String(), tc.input)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "1.2.3", "1.0000000000000000001", "1a", "-1", ".5", "5.", " 1"} {
		_, err := Parse(input)
		require.ErrorIs(t, err, ErrInvalidDecimal, input)
	}
}

func TestParseOverflow(t *testing.T) {
	// 2^256 / 10^18 rounds up to this whole part, which cannot be scaled.
	_, err := Parse("115792089237316195423570985008687907853269984665640564039458")
	require.ErrorIs(t, err, ErrOverflow)

	max := NewFromRaw(new(uint256.Int).SetAllOne())
	parsed, err := Parse(max.String())
	require.NoError(t, err)
	require.True(t, parsed.Equal(max))
}

func TestArithmeticFloors(t *testing.T) {
	product, err := MustParse("1.5").Mul(MustParse("1.5"))
	require.NoError(t, err)
	require.Equal(t, "2.25", product.String())

	third, err := One().Quo(NewFromUint64(3))
	require.NoError(t, err)
	require.Equal(t, "0.333333333333333333", third.String())

	ratio, err := FromRatio(uint256.NewInt(2), uint256.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, "0.666666666666666666", ratio.String())

	amount, err := Percent(3).MulUint(MustParseUint("170141183460469231731687303715884105727"))
	require.NoError(t, err)
	require.Equal(t, "5104235503814076951950619111476523171", amount.Dec())

	require.Equal(t, "0.003", Permille(3).String())
}

func TestArithmeticErrors(t *testing.T) {
	_, err := One().Quo(Zero())
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = FromRatio(uint256.NewInt(1), uint256.NewInt(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = One().Sub(NewFromUint64(2))
	require.ErrorIs(t, err, ErrUnderflow)

	max := NewFromRaw(new(uint256.Int).SetAllOne())
	_, err = max.Add(NewFromRaw(uint256.NewInt(1)))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = max.Mul(NewFromUint64(2))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = Sub(uint256.NewInt(1), uint256.NewInt(2))
	require.ErrorIs(t, err, ErrUnderflow)

	_, err = Pow10(78)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMulQuoKeepsIntermediatePrecision(t *testing.T) {
	a := NewFromRaw(uint256.NewInt(3))
	b := NewFromRaw(uint256.NewInt(5))
	c := NewFromRaw(uint256.NewInt(2))

	// a*b at 18 digits is zero, but the exact product survives MulQuo.
	lossy, err := a.Mul(b)
	require.NoError(t, err)
	require.True(t, lossy.IsZero())

	exact, err := MulQuo(a, b, c)
	require.NoError(t, err)
	require.Equal(t, "7", exact.Raw().Dec())
}

func TestSaturatingAndAbsDiff(t *testing.T) {
	require.True(t, One().SaturatingSub(NewFromUint64(5)).IsZero())
	require.Equal(t, "4", NewFromUint64(5).SaturatingSub(One()).String())
	require.Equal(t, "4", One().AbsDiff(NewFromUint64(5)).String())
	require.True(t, NewFromRaw(uint256.NewInt(10)).WithinAtoms(NewFromRaw(uint256.NewInt(11)), 1))
	require.False(t, NewFromRaw(uint256.NewInt(10)).WithinAtoms(NewFromRaw(uint256.NewInt(12)), 1))
}

func TestDecimalJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Rate Decimal `json:"rate"`
	}{Rate: MustParse("0.003")})
	require.NoError(t, err)
	require.JSONEq(t, `{"rate":"0.003"}`, string(payload))

	var decoded struct {
		Rate Decimal `json:"rate"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.True(t, decoded.Rate.Equal(Permille(3)))

	require.Error(t, json.Unmarshal([]byte(`{"rate":"0.1.2"}`), &decoded))
}

func FuzzDecimalRoundTrip(f *testing.F) {
	f.Add(uint64(0), uint64(0), uint64(0), uint64(0))
	f.Add(uint64(1), uint64(0), uint64(0), uint64(0))
	f.Add(uint64(1_000_000_000_000_000_000), uint64(0), uint64(0), uint64(0))
	f.Add(^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0))

	f.Fuzz(func(t *testing.T, w0, w1, w2, w3 uint64) {
		d := NewFromRaw(&uint256.Int{w0, w1, w2, w3})
		parsed, err := Parse(d.String())
		require.NoError(t, err)
		require.True(t, parsed.Equal(d), "round trip of %s", d.String())
	})
}
