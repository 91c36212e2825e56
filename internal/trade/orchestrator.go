// Package trade drives the approve-then-act transaction flow as a
// small state machine per operation surface.
package trade

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"gardendex/internal/model"
	"gardendex/internal/quote"
)

// Surface identifies an independent submission panel. Swap and
// liquidity operations may be in flight at the same time, but each
// surface admits only one.
type Surface string

const (
	SurfaceSwap      Surface = "swap"
	SurfaceLiquidity Surface = "liquidity"
)

// Submitter is the write surface of the pool. Every call blocks until
// the transaction's receipt confirms.
type Submitter interface {
	Approve(ctx context.Context, token common.Address, amount *big.Int) (*types.Receipt, error)
	SwapAForB(ctx context.Context, amountAIn, minAmountBOut *big.Int) (*types.Receipt, error)
	SwapBForA(ctx context.Context, amountBIn, minAmountAOut *big.Int) (*types.Receipt, error)
	AddLiquidity(ctx context.Context, amountA, amountB *big.Int) (*types.Receipt, error)
	RemoveLiquidity(ctx context.Context, liquidity *big.Int) (*types.Receipt, error)
}

// Options configures an Orchestrator.
type Options struct {
	TokenA      common.Address
	TokenB      common.Address
	SlippageBps uint32
	// TxTimeout bounds each confirmation wait; zero waits forever.
	TxTimeout time.Duration
	Logger    *zap.Logger
}

// Orchestrator owns the pending transaction for each surface and
// enforces the one-in-flight rule at the submission boundary.
type Orchestrator struct {
	submitter Submitter
	opts      Options
	logger    *zap.Logger

	mu      sync.Mutex
	pending map[Surface]*model.PendingTransaction
}

// New builds an Orchestrator over the given write surface.
func New(submitter Submitter, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		submitter: submitter,
		opts:      opts,
		logger:    logger,
		pending:   make(map[Surface]*model.PendingTransaction),
	}
}

// IsBusy reports whether an operation is in flight on the surface.
// Views use it to reject duplicate submissions before any remote call.
func (o *Orchestrator) IsBusy(surface Surface) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busyLocked(surface)
}

// Status returns a copy of the surface's pending transaction.
func (o *Orchestrator) Status(surface Surface) (model.PendingTransaction, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	pt := o.pending[surface]
	if pt == nil {
		return model.PendingTransaction{}, false
	}
	return *pt, true
}

// Outcome reports a confirmed operation back to the view.
type Outcome struct {
	TxHash  string
	Message string
}

// SwapRequest is the user's confirmed swap intent. DisplayedQuote is
// the output estimate the user saw at confirmation time; the slippage
// bound is derived from it, never recomputed after submission.
type SwapRequest struct {
	Direction      quote.Direction
	AmountIn       string
	DisplayedQuote string
}

// Swap runs approve-then-swap for the direction's input token.
func (o *Orchestrator) Swap(ctx context.Context, req SwapRequest) (*Outcome, error) {
	amountIn, err := positiveUnits(req.AmountIn, req.Direction.InDecimals())
	if err != nil {
		return nil, &ValidationError{Msg: "Enter a valid amount to swap."}
	}
	quoted, err := positiveUnits(req.DisplayedQuote, req.Direction.OutDecimals())
	if err != nil {
		return nil, &ValidationError{Msg: "No quote available. Try again in a moment."}
	}
	minOut := quote.MinOutput(quoted, o.opts.SlippageBps)

	approveToken := o.opts.TokenA
	execute := func(ctx context.Context) (*types.Receipt, error) {
		return o.submitter.SwapAForB(ctx, amountIn, minOut)
	}
	if req.Direction == quote.BToA {
		approveToken = o.opts.TokenB
		execute = func(ctx context.Context) (*types.Receipt, error) {
			return o.submitter.SwapBForA(ctx, amountIn, minOut)
		}
	}

	return o.run(ctx, plan{
		kind:      model.OpSwap,
		surface:   SurfaceSwap,
		approvals: []approval{{token: approveToken, amount: amountIn}},
		execute:   execute,
		minOut:    minOut,
		fallback:  "Swap failed. Please try again.",
		success:   fmt.Sprintf("Swapped %s for %s.", req.AmountIn, req.DisplayedQuote),
	})
}

// AddLiquidityRequest carries the deposit amounts: the entered token A
// amount and the displayed proportional token B amount.
type AddLiquidityRequest struct {
	AmountA string
	AmountB string
}

// AddLiquidity approves both tokens sequentially, then deposits.
func (o *Orchestrator) AddLiquidity(ctx context.Context, req AddLiquidityRequest) (*Outcome, error) {
	amountA, err := positiveUnits(req.AmountA, quote.DecimalsA)
	if err != nil {
		return nil, &ValidationError{Msg: "Enter a valid token A amount."}
	}
	amountB, err := positiveUnits(req.AmountB, quote.DecimalsB)
	if err != nil {
		return nil, &ValidationError{Msg: "No matching token B amount. Try again in a moment."}
	}

	return o.run(ctx, plan{
		kind:    model.OpAddLiquidity,
		surface: SurfaceLiquidity,
		approvals: []approval{
			{token: o.opts.TokenA, amount: amountA},
			{token: o.opts.TokenB, amount: amountB},
		},
		execute: func(ctx context.Context) (*types.Receipt, error) {
			return o.submitter.AddLiquidity(ctx, amountA, amountB)
		},
		fallback: "Failed to add liquidity. Please try again.",
		success:  fmt.Sprintf("Added %s + %s to the pool.", req.AmountA, req.AmountB),
	})
}

// RemoveLiquidityRequest carries the LP amount to burn.
type RemoveLiquidityRequest struct {
	LPAmount string
}

// RemoveLiquidity burns LP tokens. No approval is needed: the LP token
// is the pool contract itself.
func (o *Orchestrator) RemoveLiquidity(ctx context.Context, req RemoveLiquidityRequest) (*Outcome, error) {
	lpAmount, err := positiveUnits(req.LPAmount, quote.DecimalsLP)
	if err != nil {
		return nil, &ValidationError{Msg: "Enter a valid LP amount."}
	}

	return o.run(ctx, plan{
		kind:    model.OpRemoveLiquidity,
		surface: SurfaceLiquidity,
		execute: func(ctx context.Context) (*types.Receipt, error) {
			return o.submitter.RemoveLiquidity(ctx, lpAmount)
		},
		fallback: "Failed to remove liquidity. Please try again.",
		success:  fmt.Sprintf("Removed %s LP from the pool.", req.LPAmount),
	})
}

type approval struct {
	token  common.Address
	amount *big.Int
}

type plan struct {
	kind      model.OperationKind
	surface   Surface
	approvals []approval
	execute   func(ctx context.Context) (*types.Receipt, error)
	minOut    *big.Int
	fallback  string
	success   string
}

func (o *Orchestrator) run(ctx context.Context, p plan) (*Outcome, error) {
	o.mu.Lock()
	if o.busyLocked(p.surface) {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	pt := &model.PendingTransaction{Kind: p.kind, Phase: model.PhaseApproving, MinOut: p.minOut}
	o.pending[p.surface] = pt
	o.mu.Unlock()

	for _, ap := range p.approvals {
		o.logger.Info("approving",
			zap.String("kind", string(p.kind)),
			zap.String("token", ap.token.Hex()),
			zap.String("amount", ap.amount.String()),
		)
		token := ap.token
		amount := ap.amount
		if _, err := o.withTimeout(ctx, func(ctx context.Context) (*types.Receipt, error) {
			return o.submitter.Approve(ctx, token, amount)
		}); err != nil {
			return nil, o.fail(p, pt, model.PhaseApproving, err)
		}
	}

	o.setPhase(pt, model.PhaseExecuting)
	receipt, err := o.withTimeout(ctx, p.execute)
	if err != nil {
		return nil, o.fail(p, pt, model.PhaseExecuting, err)
	}

	o.mu.Lock()
	pt.Phase = model.PhaseSucceeded
	pt.TxHash = receipt.TxHash.Hex()
	o.mu.Unlock()

	o.logger.Info("operation confirmed",
		zap.String("kind", string(p.kind)),
		zap.String("tx", receipt.TxHash.Hex()),
	)

	return &Outcome{TxHash: receipt.TxHash.Hex(), Message: p.success}, nil
}

func (o *Orchestrator) busyLocked(surface Surface) bool {
	pt := o.pending[surface]
	return pt != nil && (pt.Phase == model.PhaseApproving || pt.Phase == model.PhaseExecuting)
}

func (o *Orchestrator) setPhase(pt *model.PendingTransaction, phase model.Phase) {
	o.mu.Lock()
	pt.Phase = phase
	o.mu.Unlock()
}

func (o *Orchestrator) fail(p plan, pt *model.PendingTransaction, stage model.Phase, err error) error {
	opErr := &OperationError{Kind: p.kind, Stage: stage, Err: err, Fallback: p.fallback}

	o.mu.Lock()
	pt.Phase = model.PhaseFailed
	pt.Err = opErr
	o.mu.Unlock()

	o.logger.Warn("operation failed",
		zap.String("kind", string(p.kind)),
		zap.String("stage", stage.String()),
		zap.Error(err),
	)

	return opErr
}

// withTimeout bounds one confirmation wait when a timeout is
// configured; expiry surfaces as the remote call's error and the
// operation transitions to Failed.
func (o *Orchestrator) withTimeout(ctx context.Context, fn func(context.Context) (*types.Receipt, error)) (*types.Receipt, error) {
	if o.opts.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.TxTimeout)
		defer cancel()
	}
	return fn(ctx)
}

func positiveUnits(s string, decimals int) (*big.Int, error) {
	v, err := quote.ParseUnits(s, decimals)
	if err != nil {
		return nil, err
	}
	if v.Sign() <= 0 {
		return nil, quote.ErrInvalidAmount
	}
	return v, nil
}
