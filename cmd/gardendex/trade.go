package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gardendex/internal/dex"
	"gardendex/internal/quote"
	"gardendex/internal/trade"
	"gardendex/internal/wallet"
)

func addTradeFlags(cmd *cobra.Command) {
	addChainFlags(cmd)
	cmd.Flags().String("private-key", "", "hex-encoded signing key")
	cmd.Flags().Uint32("slippage-bps", 100, "slippage tolerance in basis points")
	cmd.Flags().Duration("tx-timeout", 2*time.Minute, "per-transaction confirmation timeout, 0 waits forever")
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap between SEED and USDC",
		RunE:  runSwap,
	}

	addTradeFlags(cmd)
	cmd.Flags().String("direction", "AtoB", "swap direction (AtoB or BtoA)")
	cmd.Flags().String("amount", "", "input amount in display units")

	return cmd
}

func runSwap(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	var direction quote.Direction
	switch dir, _ := cmd.Flags().GetString("direction"); dir {
	case "AtoB":
		direction = quote.AToB
	case "BtoA":
		direction = quote.BToA
	default:
		return fmt.Errorf("invalid direction %q, want AtoB or BtoA", dir)
	}

	amount, _ := cmd.Flags().GetString("amount")
	amountIn, err := quote.ParseUnits(amount, direction.InDecimals())
	if err != nil || amountIn.Sign() <= 0 {
		return errors.New("enter a valid amount to swap")
	}

	pool, err := a.reader.PoolInfo(ctx)
	if err != nil {
		return err
	}
	if !pool.HasReserves() {
		return errors.New("pool has no liquidity")
	}

	reserveIn, reserveOut := quote.SwapReserves(pool, direction)
	out, err := a.reader.AmountOut(ctx, amountIn, reserveIn, reserveOut)
	if err != nil {
		return err
	}
	displayed := quote.FormatUnits(out, direction.OutDecimals(), 6)
	fmt.Printf("quote: %s in -> %s out\n", amount, displayed)

	orch, err := newOrchestrator(ctx, a)
	if err != nil {
		return err
	}

	outcome, err := orch.Swap(ctx, trade.SwapRequest{
		Direction:      direction,
		AmountIn:       amount,
		DisplayedQuote: displayed,
	})
	if err != nil {
		return errors.New(trade.UserMessage(err))
	}

	fmt.Println(outcome.Message)
	fmt.Printf("tx: %s\n", outcome.TxHash)
	return nil
}

func newAddLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Deposit SEED and the proportional USDC into the pool",
		RunE:  runAddLiquidity,
	}

	addTradeFlags(cmd)
	cmd.Flags().String("amount", "", "SEED amount to deposit in display units")

	return cmd
}

func runAddLiquidity(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	amount, _ := cmd.Flags().GetString("amount")
	amountA, err := quote.ParseUnits(amount, quote.DecimalsA)
	if err != nil || amountA.Sign() <= 0 {
		return errors.New("enter a valid SEED amount")
	}

	pool, err := a.reader.PoolInfo(ctx)
	if err != nil {
		return err
	}

	amountB, ok := quote.ProportionalDeposit(amountA, pool.ReserveA, pool.ReserveB)
	if !ok {
		return errors.New("pool has no liquidity, cannot derive the USDC amount")
	}
	displayedB := quote.FormatUnits(amountB, quote.DecimalsB, 6)
	fmt.Printf("deposit: %s SEED + %s USDC\n", amount, displayedB)

	orch, err := newOrchestrator(ctx, a)
	if err != nil {
		return err
	}

	outcome, err := orch.AddLiquidity(ctx, trade.AddLiquidityRequest{
		AmountA: amount,
		AmountB: displayedB,
	})
	if err != nil {
		return errors.New(trade.UserMessage(err))
	}

	fmt.Println(outcome.Message)
	fmt.Printf("tx: %s\n", outcome.TxHash)
	return nil
}

func newRemoveLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Burn LP tokens for the proportional reserves",
		RunE:  runRemoveLiquidity,
	}

	addTradeFlags(cmd)
	cmd.Flags().String("amount", "", "LP amount to burn in display units")

	return cmd
}

func runRemoveLiquidity(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	amount, _ := cmd.Flags().GetString("amount")
	lpAmount, err := quote.ParseUnits(amount, quote.DecimalsLP)
	if err != nil || lpAmount.Sign() <= 0 {
		return errors.New("enter a valid LP amount")
	}

	pool, err := a.reader.PoolInfo(ctx)
	if err != nil {
		return err
	}

	if amountA, amountB, ok := quote.WithdrawalAmounts(lpAmount, pool.ReserveA, pool.ReserveB, pool.TotalLiquidity); ok {
		fmt.Printf("withdraw: ~%s SEED + ~%s USDC\n",
			quote.FormatUnits(amountA, quote.DecimalsA, 6),
			quote.FormatUnits(amountB, quote.DecimalsB, 6),
		)
	}

	orch, err := newOrchestrator(ctx, a)
	if err != nil {
		return err
	}

	outcome, err := orch.RemoveLiquidity(ctx, trade.RemoveLiquidityRequest{LPAmount: amount})
	if err != nil {
		return errors.New(trade.UserMessage(err))
	}

	fmt.Println(outcome.Message)
	fmt.Printf("tx: %s\n", outcome.TxHash)
	return nil
}

func newOrchestrator(ctx context.Context, a *app) (*trade.Orchestrator, error) {
	session, err := wallet.Connect(ctx, a.client, a.cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	writer, err := dex.NewWriter(session, a.addrs, a.logger)
	if err != nil {
		return nil, err
	}

	return trade.New(writer, trade.Options{
		TokenA:      a.addrs.TokenA,
		TokenB:      a.addrs.TokenB,
		SlippageBps: a.cfg.SlippageBps,
		TxTimeout:   a.cfg.TxTimeout,
		Logger:      a.logger,
	}), nil
}
