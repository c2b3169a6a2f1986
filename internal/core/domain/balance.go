package domain

import (
	"fmt"
	"math/big"

	"chain-connector/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Unit names a denomination of the native currency.
type Unit string

const (
	UnitWei   Unit = "wei"
	UnitGwei  Unit = "gwei"
	UnitEther Unit = "ether"
)

var unitDecimals = map[Unit]int32{
	UnitWei:   0,
	UnitGwei:  9,
	UnitEther: 18,
}

// Decimals returns how many smallest units make up one u, as a power of ten.
func (u Unit) Decimals() (int32, error) {
	d, ok := unitDecimals[u]
	if !ok {
		return 0, apperror.ErrInvalidArgument(fmt.Sprintf("unknown unit %q", u))
	}
	return d, nil
}

// BalanceLength is the canonical byte length of a Balance (uint256).
const BalanceLength = 32

var maxBalance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 8*BalanceLength), big.NewInt(1))

// Balance is a non-negative amount in the smallest unit, stored as a
// big-endian uint256. The zero value is a zero balance.
type Balance [BalanceLength]byte

// NewBalance converts v into a Balance. Negative values and values above
// 2^256-1 fail with an arithmetic error.
func NewBalance(v *big.Int) (Balance, error) {
	var b Balance
	if v == nil {
		return b, nil
	}
	if v.Sign() < 0 {
		return b, apperror.ErrArithmetic("balance cannot be negative")
	}
	if v.Cmp(maxBalance) > 0 {
		return b, apperror.ErrArithmetic("balance exceeds uint256")
	}
	v.FillBytes(b[:])
	return b, nil
}

// BalanceFromUint64 returns a Balance of v smallest units.
func BalanceFromUint64(v uint64) Balance {
	b, _ := NewBalance(new(big.Int).SetUint64(v))
	return b
}

// ParseBalance parses a decimal amount expressed in unit.
func ParseBalance(amount string, unit Unit) (Balance, error) {
	wei, err := ConvertUnit(amount, unit, UnitWei)
	if err != nil {
		return Balance{}, err
	}
	v, ok := new(big.Int).SetString(wei, 10)
	if !ok {
		return Balance{}, apperror.ErrInvalidArgument(fmt.Sprintf("invalid amount %q", amount))
	}
	return NewBalance(v)
}

// MustBalance is ParseBalance for constants; it panics on error.
func MustBalance(amount string, unit Unit) Balance {
	b, err := ParseBalance(amount, unit)
	if err != nil {
		panic(err)
	}
	return b
}

// BigInt returns the amount as a fresh big.Int.
func (b Balance) BigInt() *big.Int {
	return new(big.Int).SetBytes(b[:])
}

func (b Balance) IsZero() bool {
	return b == Balance{}
}

func (b Balance) Cmp(other Balance) int {
	return b.BigInt().Cmp(other.BigInt())
}

func (b Balance) Equal(other Balance) bool {
	return b == other
}

// Add returns b+other or an arithmetic error on uint256 overflow.
func (b Balance) Add(other Balance) (Balance, error) {
	return NewBalance(new(big.Int).Add(b.BigInt(), other.BigInt()))
}

// Sub returns b-other or an arithmetic error if the result would be negative.
func (b Balance) Sub(other Balance) (Balance, error) {
	return NewBalance(new(big.Int).Sub(b.BigInt(), other.BigInt()))
}

// String formats the amount in the smallest unit.
func (b Balance) String() string {
	return b.BigInt().String()
}

// Format renders the amount in unit without losing precision.
func (b Balance) Format(unit Unit) (string, error) {
	return ConvertUnit(b.String(), UnitWei, unit)
}

func (b Balance) MarshalBinary() ([]byte, error) {
	out := make([]byte, BalanceLength)
	copy(out, b[:])
	return out, nil
}

func (b *Balance) UnmarshalBinary(data []byte) error {
	if len(data) != BalanceLength {
		return apperror.ErrInvalidArgument(fmt.Sprintf("balance must be %d bytes, got %d", BalanceLength, len(data)))
	}
	copy(b[:], data)
	return nil
}

func (b Balance) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Balance) UnmarshalText(text []byte) error {
	v, err := ParseBalance(string(text), UnitWei)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ConvertUnit converts a decimal amount between denominations. It is a pure
// decimal shift: ConvertUnit("1000000000000000000", wei, ether) == "1".
// Converting into wei fails if the result would have a fractional part.
func ConvertUnit(amount string, source, target Unit) (string, error) {
	srcDecimals, err := source.Decimals()
	if err != nil {
		return "", err
	}
	dstDecimals, err := target.Decimals()
	if err != nil {
		return "", err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", apperror.ErrInvalidArgument(fmt.Sprintf("invalid amount %q", amount))
	}
	if d.IsNegative() {
		return "", apperror.ErrArithmetic("amount cannot be negative")
	}

	out := d.Shift(srcDecimals - dstDecimals)
	if dstDecimals == 0 && !out.IsInteger() {
		return "", apperror.ErrArithmetic(fmt.Sprintf("%s %s is not a whole number of %s", amount, source, target))
	}
	return out.String(), nil
}
