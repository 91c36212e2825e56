package main

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gardendex/internal/history"
	"gardendex/internal/model"
	"gardendex/internal/storage"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Rebuild an account's recent transactions from the event log",
		RunE:  runHistory,
	}

	addChainFlags(cmd)
	cmd.Flags().String("address", "", "account to reconstruct history for")
	cmd.Flags().Uint64("history-window", 10000, "blocks to look back from the chain head")
	cmd.Flags().Uint64("history-batch-size", 2000, "blocks per log query")
	cmd.Flags().Duration("block-time", time.Second, "nominal block interval for timestamp approximation")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts per log query")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("out", "", "optional JSONL export path")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	user, _ := cmd.Flags().GetString("address")
	if !common.IsHexAddress(user) {
		return fmt.Errorf("invalid address: %s", user)
	}

	reconstructor, err := history.NewReconstructor(a.client, a.addrs.Dex, history.Config{
		Window:       a.cfg.HistoryWindow,
		BatchSize:    a.cfg.HistoryBatchSize,
		BlockTime:    a.cfg.BlockTime,
		MaxRetries:   a.cfg.MaxRetries,
		RetryBackoff: a.cfg.RetryBackoff,
	}, a.logger)
	if err != nil {
		return err
	}

	records, err := reconstructor.Fetch(ctx, common.HexToAddress(user))
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no transactions in the lookback window")
		return nil
	}

	for _, record := range records {
		printRecord(record)
	}

	if a.cfg.Out != "" {
		sink := storage.NewJsonlStorage(a.cfg.Out)
		if err := sink.PutRecordBatch(records); err != nil {
			return err
		}
		a.logger.Info("history exported",
			zap.String("out", a.cfg.Out),
			zap.Int("records", len(records)),
		)
	}

	return nil
}

func printRecord(record model.TransactionRecord) {
	switch record.Type {
	case model.TxSwap:
		fmt.Printf("block %-8d swap    %s %s -> %s %s  tx %s\n",
			record.BlockNumber, record.FromAmount, record.FromToken,
			record.ToAmount, record.ToToken, record.TxHash)
	case model.TxAddLiquidity:
		fmt.Printf("block %-8d add     %s SEED + %s USDC -> %s LP  tx %s\n",
			record.BlockNumber, record.AmountA, record.AmountB, record.LPAmount, record.TxHash)
	case model.TxRemoveLiquidity:
		fmt.Printf("block %-8d remove  %s LP -> %s SEED + %s USDC  tx %s\n",
			record.BlockNumber, record.LPAmount, record.AmountA, record.AmountB, record.TxHash)
	}
}
