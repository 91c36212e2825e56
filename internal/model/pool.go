package model

import "math/big"

// PoolState is a wholesale snapshot of the remote pool. It is replaced
// on every poll tick or post-transaction refresh, never partially
// mutated. Price is contract-derived and informational; it may be
// stale relative to the reserves if fetched separately.
type PoolState struct {
	ReserveA       *big.Int
	ReserveB       *big.Int
	TotalLiquidity *big.Int
	Price          *big.Int
}

// HasReserves reports whether both reserves are positive.
func (p PoolState) HasReserves() bool {
	return p.ReserveA != nil && p.ReserveA.Sign() > 0 &&
		p.ReserveB != nil && p.ReserveB.Sign() > 0
}

// Balances holds the connected account's token holdings in native
// fixed-point units (token A: 18 decimals, token B: 6, LP: 18).
type Balances struct {
	TokenA *big.Int
	TokenB *big.Int
	LP     *big.Int
}
