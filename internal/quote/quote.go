package quote

import (
	"math/big"

	"gardendex/internal/model"
)

// ProportionalDeposit returns floor(amountA * reserveB / reserveA),
// the token-B amount the pool will pair with amountA. ok is false when
// reserveA is zero, meaning no quote is available.
func ProportionalDeposit(amountA, reserveA, reserveB *big.Int) (*big.Int, bool) {
	if amountA == nil || reserveA == nil || reserveB == nil || reserveA.Sign() == 0 {
		return nil, false
	}
	out := new(big.Int).Mul(amountA, reserveB)
	return out.Div(out, reserveA), true
}

// WithdrawalAmounts returns the proportional reserve amounts for
// burning lpAmount of LP supply. ok is false when totalLiquidity is
// zero.
func WithdrawalAmounts(lpAmount, reserveA, reserveB, totalLiquidity *big.Int) (amountA, amountB *big.Int, ok bool) {
	if lpAmount == nil || totalLiquidity == nil || totalLiquidity.Sign() == 0 {
		return nil, nil, false
	}
	amountA = new(big.Int).Mul(lpAmount, reserveA)
	amountA.Div(amountA, totalLiquidity)
	amountB = new(big.Int).Mul(lpAmount, reserveB)
	amountB.Div(amountB, totalLiquidity)
	return amountA, amountB, true
}

// PoolShare renders lpBalance / totalLiquidity as a percentage with
// four fractional digits, "0.0000" when the pool is empty.
func PoolShare(lpBalance, totalLiquidity *big.Int) string {
	if lpBalance == nil || totalLiquidity == nil || totalLiquidity.Sign() == 0 {
		return "0.0000"
	}
	// percent scaled by 10^4 to keep the division in integers
	scaled := new(big.Int).Mul(lpBalance, big.NewInt(1_000_000))
	scaled.Div(scaled, totalLiquidity)
	return FormatUnits(scaled, 4, 4)
}

// MinOutput applies the slippage tolerance to a quoted output:
// floor(quoted * (10000 - slippageBps) / 10000). The caller computes
// this from the quote the user last saw, not a fresh one.
func MinOutput(quoted *big.Int, slippageBps uint32) *big.Int {
	if quoted == nil {
		return new(big.Int)
	}
	if slippageBps > 10_000 {
		slippageBps = 10_000
	}
	out := new(big.Int).Mul(quoted, big.NewInt(int64(10_000-slippageBps)))
	return out.Div(out, big.NewInt(10_000))
}

// Direction selects the swap orientation between the two pool assets.
type Direction string

const (
	AToB Direction = "AtoB"
	BToA Direction = "BtoA"
)

// InDecimals is the fixed-point precision of the input asset.
func (d Direction) InDecimals() int {
	if d == BToA {
		return DecimalsB
	}
	return DecimalsA
}

// OutDecimals is the fixed-point precision of the output asset.
func (d Direction) OutDecimals() int {
	if d == BToA {
		return DecimalsA
	}
	return DecimalsB
}

// SwapReserves picks the input and output reserves for a direction.
func SwapReserves(pool model.PoolState, d Direction) (reserveIn, reserveOut *big.Int) {
	if d == BToA {
		return pool.ReserveB, pool.ReserveA
	}
	return pool.ReserveA, pool.ReserveB
}
