package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"gardendex/internal/wallet"
)

// Writer issues state-changing calls. Every method sends one signed
// transaction and blocks until its receipt confirms, so callers can
// sequence approve-then-act safely.
type Writer struct {
	session *wallet.Session
	addrs   Contracts
	dex     *bind.BoundContract
	tokenA  *bind.BoundContract
	tokenB  *bind.BoundContract
	logger  *zap.Logger
}

// NewWriter binds the write surface against the session's client.
func NewWriter(session *wallet.Session, addrs Contracts, logger *zap.Logger) (*Writer, error) {
	dexABI, err := SimpleDexABI()
	if err != nil {
		return nil, fmt.Errorf("parse dex abi: %w", err)
	}
	tokenABI, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := session.Chain.Backend()
	return &Writer{
		session: session,
		addrs:   addrs,
		dex:     bind.NewBoundContract(addrs.Dex, dexABI, backend, backend, backend),
		tokenA:  bind.NewBoundContract(addrs.TokenA, tokenABI, backend, backend, backend),
		tokenB:  bind.NewBoundContract(addrs.TokenB, tokenABI, backend, backend, backend),
		logger:  logger,
	}, nil
}

// Approve grants the pool an allowance on the given token.
func (w *Writer) Approve(ctx context.Context, token common.Address, amount *big.Int) (*types.Receipt, error) {
	contract, err := w.tokenContract(token)
	if err != nil {
		return nil, err
	}
	return w.transact(ctx, contract, "approve", w.addrs.Dex, amount)
}

// SwapAForB swaps token A in for token B, bounded by minAmountBOut.
func (w *Writer) SwapAForB(ctx context.Context, amountAIn, minAmountBOut *big.Int) (*types.Receipt, error) {
	return w.transact(ctx, w.dex, "swapAforB", amountAIn, minAmountBOut)
}

// SwapBForA swaps token B in for token A, bounded by minAmountAOut.
func (w *Writer) SwapBForA(ctx context.Context, amountBIn, minAmountAOut *big.Int) (*types.Receipt, error) {
	return w.transact(ctx, w.dex, "swapBforA", amountBIn, minAmountAOut)
}

// AddLiquidity deposits both assets into the pool.
func (w *Writer) AddLiquidity(ctx context.Context, amountA, amountB *big.Int) (*types.Receipt, error) {
	return w.transact(ctx, w.dex, "addLiquidity", amountA, amountB)
}

// RemoveLiquidity burns LP tokens for the proportional reserves. No
// prior approval is needed: the LP token is the pool itself.
func (w *Writer) RemoveLiquidity(ctx context.Context, liquidity *big.Int) (*types.Receipt, error) {
	return w.transact(ctx, w.dex, "removeLiquidity", liquidity)
}

func (w *Writer) tokenContract(token common.Address) (*bind.BoundContract, error) {
	switch token {
	case w.addrs.TokenA:
		return w.tokenA, nil
	case w.addrs.TokenB:
		return w.tokenB, nil
	default:
		return nil, fmt.Errorf("unknown token %s", token.Hex())
	}
}

func (w *Writer) transact(ctx context.Context, contract *bind.BoundContract, method string, args ...interface{}) (*types.Receipt, error) {
	tx, err := contract.Transact(w.session.TransactOpts(ctx), method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	w.logger.Debug("transaction sent", zap.String("method", method), zap.String("tx", tx.Hash().Hex()))

	receipt, err := w.session.Chain.WaitMined(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	w.logger.Info("transaction confirmed",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()),
	)

	return receipt, nil
}
