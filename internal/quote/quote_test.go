package quote

import (
	"math/big"
	"testing"

	"gardendex/internal/model"
)

func units(coeff int64, decimals int) *big.Int {
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return v.Mul(v, big.NewInt(coeff))
}

func TestParseUnitsTruncates(t *testing.T) {
	got, err := ParseUnits("1.23456789", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmp(big.NewInt(1234567)) != 0 {
		t.Fatalf("truncation mismatch: got %s", got)
	}
}

func TestParseUnitsPadsShortFractions(t *testing.T) {
	got, err := ParseUnits("10.5", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := new(big.Int).SetString("10500000000000000000", 10)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", got, want)
	}

	got, err = ParseUnits(".5", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmp(big.NewInt(500000)) != 0 {
		t.Fatalf("got %s want 500000", got)
	}
}

func TestParseUnitsRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", " ", ".", "-1", "+1", "1e5", "abc", "1.2.3", "0x10"} {
		if _, err := ParseUnits(input, 6); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	if got := FormatUnits(units(20, 6), 6, 6); got != "20.000000" {
		t.Fatalf("got %q", got)
	}
	if got := FormatUnits(big.NewInt(1234567), 6, 2); got != "1.23" {
		t.Fatalf("got %q", got)
	}
	if got := FormatUnits(nil, 6, 4); got != "0.0000" {
		t.Fatalf("got %q", got)
	}
}

func TestProportionalDeposit(t *testing.T) {
	out, ok := ProportionalDeposit(big.NewInt(100), big.NewInt(1000), big.NewInt(500))
	if !ok {
		t.Fatalf("expected quote")
	}
	if out.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("got %s want 50", out)
	}
}

func TestProportionalDepositZeroReserve(t *testing.T) {
	if _, ok := ProportionalDeposit(big.NewInt(100), big.NewInt(0), big.NewInt(500)); ok {
		t.Fatalf("expected no quote for zero reserveA")
	}
}

func TestProportionalDepositScenario(t *testing.T) {
	// reserveA = 1_000_000 SEED, reserveB = 2_000 USDC, deposit 10 SEED.
	amountA, err := ParseUnits("10", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, ok := ProportionalDeposit(amountA, units(1_000_000, 18), units(2_000, 6))
	if !ok {
		t.Fatalf("expected quote")
	}
	if out.Cmp(units(20, 6)) != 0 {
		t.Fatalf("got %s want %s", out, units(20, 6))
	}
	if got := FormatUnits(out, 6, 6); got != "20.000000" {
		t.Fatalf("display mismatch: %q", got)
	}
}

func TestWithdrawalAmountsScenario(t *testing.T) {
	lp, err := ParseUnits("10", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	amountA, amountB, ok := WithdrawalAmounts(lp, units(1_000_000, 18), units(2_000, 6), units(100, 18))
	if !ok {
		t.Fatalf("expected quote")
	}
	if amountA.Cmp(units(100_000, 18)) != 0 {
		t.Fatalf("amountA: got %s", amountA)
	}
	if amountB.Cmp(units(200, 6)) != 0 {
		t.Fatalf("amountB: got %s", amountB)
	}
}

func TestWithdrawalNeverExceedsReserves(t *testing.T) {
	reserveA := units(123, 18)
	reserveB := units(456, 6)
	total := units(100, 18)

	for _, lp := range []*big.Int{big.NewInt(1), units(37, 18), units(100, 18)} {
		amountA, amountB, ok := WithdrawalAmounts(lp, reserveA, reserveB, total)
		if !ok {
			t.Fatalf("expected quote for lp=%s", lp)
		}
		if amountA.Cmp(reserveA) > 0 {
			t.Fatalf("amountA %s exceeds reserveA %s", amountA, reserveA)
		}
		if amountB.Cmp(reserveB) > 0 {
			t.Fatalf("amountB %s exceeds reserveB %s", amountB, reserveB)
		}
	}
}

func TestWithdrawalZeroSupply(t *testing.T) {
	if _, _, ok := WithdrawalAmounts(big.NewInt(1), big.NewInt(1), big.NewInt(1), big.NewInt(0)); ok {
		t.Fatalf("expected no quote for zero total liquidity")
	}
}

func TestPoolShare(t *testing.T) {
	if got := PoolShare(units(10, 18), units(100, 18)); got != "10.0000" {
		t.Fatalf("got %q", got)
	}
	if got := PoolShare(units(1, 18), units(3, 18)); got != "33.3333" {
		t.Fatalf("got %q", got)
	}
	if got := PoolShare(units(10, 18), big.NewInt(0)); got != "0.0000" {
		t.Fatalf("got %q", got)
	}
}

func TestMinOutput(t *testing.T) {
	// 1% tolerance: floor(q * 0.99)
	if got := MinOutput(units(20, 6), 100); got.Cmp(big.NewInt(19_800_000)) != 0 {
		t.Fatalf("got %s", got)
	}
	if got := MinOutput(big.NewInt(101), 100); got.Cmp(big.NewInt(99)) != 0 {
		t.Fatalf("floor mismatch: got %s", got)
	}
	if got := MinOutput(nil, 100); got.Sign() != 0 {
		t.Fatalf("nil quote should bound to zero")
	}
}

func TestSwapReserves(t *testing.T) {
	pool := model.PoolState{
		ReserveA:       units(1_000_000, 18),
		ReserveB:       units(2_000, 6),
		TotalLiquidity: units(100, 18),
	}

	in, out := SwapReserves(pool, AToB)
	if in.Cmp(pool.ReserveA) != 0 || out.Cmp(pool.ReserveB) != 0 {
		t.Fatalf("AtoB reserve selection wrong")
	}

	in, out = SwapReserves(pool, BToA)
	if in.Cmp(pool.ReserveB) != 0 || out.Cmp(pool.ReserveA) != 0 {
		t.Fatalf("BtoA reserve selection wrong")
	}
}
