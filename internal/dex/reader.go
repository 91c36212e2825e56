package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"gardendex/internal/chain"
	"gardendex/internal/model"
)

// Contracts holds the deployed addresses this client talks to. The
// pool contract is also the LP token.
type Contracts struct {
	Dex    common.Address
	TokenA common.Address
	TokenB common.Address
}

// ParseContracts validates and converts the configured address strings.
func ParseContracts(dexAddr, tokenAAddr, tokenBAddr string) (Contracts, error) {
	out := Contracts{}
	for _, in := range []struct {
		name  string
		value string
		dst   *common.Address
	}{
		{"dex", dexAddr, &out.Dex},
		{"token A", tokenAAddr, &out.TokenA},
		{"token B", tokenBAddr, &out.TokenB},
	} {
		if !common.IsHexAddress(in.value) {
			return Contracts{}, fmt.Errorf("invalid %s address: %s", in.name, in.value)
		}
		*in.dst = common.HexToAddress(in.value)
	}
	return out, nil
}

// Reader is the read-only accessor over the pool and token contracts.
// Each method is a single remote round trip.
type Reader struct {
	addrs  Contracts
	dex    *bind.BoundContract
	tokenA *bind.BoundContract
	tokenB *bind.BoundContract
}

// NewReader binds the view-call surface against the chain client.
func NewReader(client *chain.Client, addrs Contracts) (*Reader, error) {
	dexABI, err := SimpleDexABI()
	if err != nil {
		return nil, fmt.Errorf("parse dex abi: %w", err)
	}
	tokenABI, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	backend := client.Backend()
	return &Reader{
		addrs:  addrs,
		dex:    bind.NewBoundContract(addrs.Dex, dexABI, backend, backend, backend),
		tokenA: bind.NewBoundContract(addrs.TokenA, tokenABI, backend, backend, backend),
		tokenB: bind.NewBoundContract(addrs.TokenB, tokenABI, backend, backend, backend),
	}, nil
}

// Addresses returns the bound contract addresses.
func (r *Reader) Addresses() Contracts { return r.addrs }

// PoolInfo fetches the pool reserves, LP supply, and contract price.
func (r *Reader) PoolInfo(ctx context.Context) (model.PoolState, error) {
	var out []interface{}
	if err := r.dex.Call(&bind.CallOpts{Context: ctx}, &out, "getPoolInfo"); err != nil {
		return model.PoolState{}, &ReadError{Op: "getPoolInfo", Err: err}
	}
	if len(out) != 4 {
		return model.PoolState{}, &ReadError{Op: "getPoolInfo", Err: fmt.Errorf("unexpected result arity %d", len(out))}
	}

	pool := model.PoolState{}
	for i, dst := range []**big.Int{&pool.ReserveA, &pool.ReserveB, &pool.TotalLiquidity, &pool.Price} {
		v, err := asBigInt(out[i])
		if err != nil {
			return model.PoolState{}, &ReadError{Op: "getPoolInfo", Err: err}
		}
		*dst = v
	}
	return pool, nil
}

// AmountOut delegates the swap quote to the contract's own view
// computation so any fee or rounding rule it applies is honored.
func (r *Reader) AmountOut(ctx context.Context, amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	var out []interface{}
	if err := r.dex.Call(&bind.CallOpts{Context: ctx}, &out, "getAmountOut", amountIn, reserveIn, reserveOut); err != nil {
		return nil, &ReadError{Op: "getAmountOut", Err: err}
	}
	if len(out) != 1 {
		return nil, &ReadError{Op: "getAmountOut", Err: fmt.Errorf("unexpected result arity %d", len(out))}
	}
	v, err := asBigInt(out[0])
	if err != nil {
		return nil, &ReadError{Op: "getAmountOut", Err: err}
	}
	return v, nil
}

// TokenABalance returns the owner's token A balance.
func (r *Reader) TokenABalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return r.balanceOf(ctx, r.tokenA, "tokenA.balanceOf", owner)
}

// TokenBBalance returns the owner's token B balance.
func (r *Reader) TokenBBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return r.balanceOf(ctx, r.tokenB, "tokenB.balanceOf", owner)
}

// LPBalance returns the owner's LP token balance. The pool contract
// itself is the LP token.
func (r *Reader) LPBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return r.balanceOf(ctx, r.dex, "dex.balanceOf", owner)
}

func (r *Reader) balanceOf(ctx context.Context, contract *bind.BoundContract, op string, owner common.Address) (*big.Int, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner); err != nil {
		return nil, &ReadError{Op: op, Err: err}
	}
	if len(out) != 1 {
		return nil, &ReadError{Op: op, Err: fmt.Errorf("unexpected result arity %d", len(out))}
	}
	v, err := asBigInt(out[0])
	if err != nil {
		return nil, &ReadError{Op: op, Err: err}
	}
	return v, nil
}

func asBigInt(v interface{}) (*big.Int, error) {
	b, ok := v.(*big.Int)
	if !ok || b == nil {
		return nil, fmt.Errorf("expected uint256, got %T", v)
	}
	return b, nil
}
