package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"gardendex/internal/quote"
	"gardendex/internal/state"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll pool state and quote swap amounts typed on stdin",
		Long: "Polls the pool and the account's balances on an interval and prints\n" +
			"them as they change. Each line typed on stdin is treated as a swap\n" +
			"input amount: a quote is recomputed after a short debounce, and an\n" +
			"empty or invalid line clears it.",
		RunE: runWatch,
	}

	addChainFlags(cmd)
	cmd.Flags().String("address", "", "account to watch balances for")
	cmd.Flags().String("direction", "AtoB", "quote direction (AtoB or BtoA)")
	cmd.Flags().Duration("poll-interval", 10*time.Second, "pool refresh interval")
	cmd.Flags().Duration("debounce", 300*time.Millisecond, "quote recomputation delay")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	owner, _ := cmd.Flags().GetString("address")
	if !common.IsHexAddress(owner) {
		return fmt.Errorf("invalid address: %s", owner)
	}
	ownerAddr := common.HexToAddress(owner)

	var direction quote.Direction
	switch dir, _ := cmd.Flags().GetString("direction"); dir {
	case "AtoB":
		direction = quote.AToB
	case "BtoA":
		direction = quote.BToA
	default:
		return fmt.Errorf("invalid direction %q, want AtoB or BtoA", dir)
	}

	synchronizer := state.New(a.reader, ownerAddr, state.Options{
		Interval: a.cfg.PollInterval,
		Debounce: a.cfg.Debounce,
		Logger:   a.logger,
		OnQuote: func(text string) {
			if text == "" {
				fmt.Println("quote: -")
				return
			}
			fmt.Printf("quote: %s\n", text)
		},
	})

	go synchronizer.Run(ctx)

	go printSnapshots(ctx, synchronizer, a.cfg.PollInterval)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		amountIn, err := quote.ParseUnits(line, direction.InDecimals())
		if line == "" || err != nil || amountIn.Sign() <= 0 {
			synchronizer.Clear()
			continue
		}

		snapshot, ok := synchronizer.Snapshot()
		if !ok || !snapshot.Pool.HasReserves() {
			synchronizer.Clear()
			continue
		}
		reserveIn, reserveOut := quote.SwapReserves(snapshot.Pool, direction)

		synchronizer.Schedule(ctx, func(ctx context.Context) (string, error) {
			out, err := a.reader.AmountOut(ctx, amountIn, reserveIn, reserveOut)
			if err != nil {
				return "", err
			}
			return quote.FormatUnits(out, direction.OutDecimals(), 6), nil
		})
	}

	return scanner.Err()
}

func printSnapshots(ctx context.Context, synchronizer *state.Synchronizer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastFetched time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot, ok := synchronizer.Snapshot()
			if !ok || snapshot.FetchedAt.Equal(lastFetched) {
				continue
			}
			lastFetched = snapshot.FetchedAt

			fmt.Printf("pool: %s SEED / %s USDC | balances: %s SEED, %s USDC, %s LP\n",
				quote.FormatUnits(snapshot.Pool.ReserveA, quote.DecimalsA, 6),
				quote.FormatUnits(snapshot.Pool.ReserveB, quote.DecimalsB, 6),
				quote.FormatUnits(snapshot.Balances.TokenA, quote.DecimalsA, 6),
				quote.FormatUnits(snapshot.Balances.TokenB, quote.DecimalsB, 6),
				quote.FormatUnits(snapshot.Balances.LP, quote.DecimalsLP, 6),
			)
		}
	}
}
