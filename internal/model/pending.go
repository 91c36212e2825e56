package model

import "math/big"

// OperationKind names a user-initiated write operation.
type OperationKind string

const (
	OpSwap            OperationKind = "swap"
	OpAddLiquidity    OperationKind = "add_liquidity"
	OpRemoveLiquidity OperationKind = "remove_liquidity"
)

// Phase is the lifecycle stage of a pending transaction.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseApproving
	PhaseExecuting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseApproving:
		return "approving"
	case PhaseExecuting:
		return "executing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PendingTransaction tracks one in-flight operation. The min-output
// bound is locked in at submission time from the displayed quote.
type PendingTransaction struct {
	Kind   OperationKind
	Phase  Phase
	MinOut *big.Int
	TxHash string
	Err    error
}
