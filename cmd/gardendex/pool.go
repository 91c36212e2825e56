package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"gardendex/internal/quote"
)

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Show pool reserves, price, and optionally an account's position",
		RunE:  runPool,
	}

	addChainFlags(cmd)
	cmd.Flags().String("address", "", "account to show balances and pool share for")

	return cmd
}

func runPool(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	pool, err := a.reader.PoolInfo(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("reserve SEED:    %s\n", quote.FormatUnits(pool.ReserveA, quote.DecimalsA, 6))
	fmt.Printf("reserve USDC:    %s\n", quote.FormatUnits(pool.ReserveB, quote.DecimalsB, 6))
	fmt.Printf("total liquidity: %s\n", quote.FormatUnits(pool.TotalLiquidity, quote.DecimalsLP, 6))
	fmt.Printf("price:           %s USDC/SEED\n", quote.FormatUnits(pool.Price, quote.DecimalsB, 6))

	owner, _ := cmd.Flags().GetString("address")
	if owner == "" {
		return nil
	}
	if !common.IsHexAddress(owner) {
		return fmt.Errorf("invalid address: %s", owner)
	}
	ownerAddr := common.HexToAddress(owner)

	balanceA, err := a.reader.TokenABalance(ctx, ownerAddr)
	if err != nil {
		return err
	}
	balanceB, err := a.reader.TokenBBalance(ctx, ownerAddr)
	if err != nil {
		return err
	}
	balanceLP, err := a.reader.LPBalance(ctx, ownerAddr)
	if err != nil {
		return err
	}

	fmt.Printf("\naccount %s\n", ownerAddr.Hex())
	fmt.Printf("balance SEED: %s\n", quote.FormatUnits(balanceA, quote.DecimalsA, 6))
	fmt.Printf("balance USDC: %s\n", quote.FormatUnits(balanceB, quote.DecimalsB, 6))
	fmt.Printf("balance LP:   %s\n", quote.FormatUnits(balanceLP, quote.DecimalsLP, 6))
	fmt.Printf("pool share:   %s%%\n", quote.PoolShare(balanceLP, pool.TotalLiquidity))

	return nil
}
