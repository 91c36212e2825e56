// Package history rebuilds a user's transaction list from the pool's
// event log. Records are re-derived on every scan, never stored or
// mutated; completeness is bounded by the lookback window.
package history

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gardendex/internal/dex"
	"gardendex/internal/model"
	"gardendex/internal/quote"
)

// Display symbols for the two pool assets, matching the deployed pair.
const (
	symbolA = "SEED"
	symbolB = "USDC"
)

const displayPlaces = 6

// LogSource is the chain surface the reconstructor scans.
type LogSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// Config bounds the scan.
type Config struct {
	// Window is how many blocks to look back from the chain head.
	Window uint64
	// BatchSize is the per-query block span.
	BatchSize uint64
	// BlockTime is the nominal block interval used to approximate
	// timestamps from block numbers.
	BlockTime    time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Reconstructor scans the pool's event log for one user's activity.
type Reconstructor struct {
	source LogSource
	pool   common.Address
	cfg    Config
	logger *zap.Logger
	dexABI abi.ABI
}

// NewReconstructor builds a Reconstructor over the given log source.
func NewReconstructor(source LogSource, pool common.Address, cfg Config, logger *zap.Logger) (*Reconstructor, error) {
	dexABI, err := dex.SimpleDexABI()
	if err != nil {
		return nil, fmt.Errorf("parse dex abi: %w", err)
	}
	if cfg.Window == 0 {
		cfg.Window = 10000
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 2000
	}
	if cfg.BlockTime <= 0 {
		cfg.BlockTime = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconstructor{
		source: source,
		pool:   pool,
		cfg:    cfg,
		logger: logger,
		dexABI: dexABI,
	}, nil
}

// Fetch scans the lookback window and returns the user's records,
// newest first. The three event kinds are scanned independently; a
// failed kind contributes nothing and is logged, the others still
// contribute. The worst case is an empty list, never an error that
// reaches the caller as a hard failure.
func (r *Reconstructor) Fetch(ctx context.Context, user common.Address) ([]model.TransactionRecord, error) {
	latest, err := r.source.LatestBlockNumber(ctx)
	if err != nil {
		r.logger.Warn("latest block fetch failed, returning empty history", zap.Error(err))
		return []model.TransactionRecord{}, nil
	}

	var from uint64
	if latest > r.cfg.Window {
		from = latest - r.cfg.Window
	}

	ranges, err := SplitRange(from, latest, r.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	records := make([]model.TransactionRecord, 0)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range []string{"Swap", "LiquidityAdded", "LiquidityRemoved"} {
		name := name
		g.Go(func() error {
			kindRecords, err := r.scanKind(gctx, name, user, ranges)
			if err != nil {
				// Partial history is acceptable: this kind's
				// remainder is omitted, the others still land.
				r.logger.Warn("event scan failed",
					zap.String("event", name),
					zap.Error(err),
				)
			}
			mu.Lock()
			records = append(records, kindRecords...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber > b.BlockNumber
		}
		return a.LogIndex > b.LogIndex
	})

	return records, nil
}

func (r *Reconstructor) scanKind(ctx context.Context, name string, user common.Address, ranges []BlockRange) ([]model.TransactionRecord, error) {
	event, ok := r.dexABI.Events[name]
	if !ok {
		return nil, fmt.Errorf("unknown event %s", name)
	}

	records := make([]model.TransactionRecord, 0)
	for _, blockRange := range ranges {
		var logs []types.Log
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			logs, err = r.source.FilterLogs(ctx, blockRange.From, blockRange.To, []common.Address{r.pool}, []common.Hash{event.ID})
			return err
		})
		if err != nil {
			return records, fmt.Errorf("filter %s logs %d-%d: %w", name, blockRange.From, blockRange.To, err)
		}

		for _, log := range logs {
			record, ok, err := r.buildRecord(name, log, user)
			if err != nil {
				r.logger.Warn("event decode failed",
					zap.String("event", name),
					zap.String("tx", log.TxHash.Hex()),
					zap.Uint64("log_index", uint64(log.Index)),
					zap.Error(err),
				)
				continue
			}
			if ok {
				records = append(records, record)
			}
		}
	}

	return records, nil
}

func (r *Reconstructor) buildRecord(name string, log types.Log, user common.Address) (model.TransactionRecord, bool, error) {
	if len(log.Topics) < 2 {
		return model.TransactionRecord{}, false, fmt.Errorf("missing subject topic")
	}

	// The subject address is the single indexed argument. Address
	// comparison is canonical, so the filter is case-insensitive by
	// construction.
	subject := common.BytesToAddress(log.Topics[1].Bytes())
	if subject != user {
		return model.TransactionRecord{}, false, nil
	}

	values, err := r.dexABI.Unpack(name, log.Data)
	if err != nil {
		return model.TransactionRecord{}, false, fmt.Errorf("unpack %s: %w", name, err)
	}

	record := model.TransactionRecord{
		ID:          fmt.Sprintf("%s-%d", log.TxHash.Hex(), log.Index),
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
		LogIndex:    uint64(log.Index),
		Timestamp:   int64(log.BlockNumber) * int64(r.cfg.BlockTime/time.Second),
		Status:      "success",
	}

	switch name {
	case "Swap":
		amounts, err := asBigInts(values, 4)
		if err != nil {
			return model.TransactionRecord{}, false, err
		}
		amountAIn, amountBIn, amountAOut, amountBOut := amounts[0], amounts[1], amounts[2], amounts[3]

		record.Type = model.TxSwap
		if amountAIn.Sign() > 0 {
			record.FromToken = symbolA
			record.ToToken = symbolB
			record.FromAmount = quote.FormatUnits(amountAIn, quote.DecimalsA, displayPlaces)
			record.ToAmount = quote.FormatUnits(amountBOut, quote.DecimalsB, displayPlaces)
		} else {
			record.FromToken = symbolB
			record.ToToken = symbolA
			record.FromAmount = quote.FormatUnits(amountBIn, quote.DecimalsB, displayPlaces)
			record.ToAmount = quote.FormatUnits(amountAOut, quote.DecimalsA, displayPlaces)
		}

	case "LiquidityAdded", "LiquidityRemoved":
		amounts, err := asBigInts(values, 3)
		if err != nil {
			return model.TransactionRecord{}, false, err
		}

		record.Type = model.TxAddLiquidity
		if name == "LiquidityRemoved" {
			record.Type = model.TxRemoveLiquidity
		}
		record.AmountA = quote.FormatUnits(amounts[0], quote.DecimalsA, displayPlaces)
		record.AmountB = quote.FormatUnits(amounts[1], quote.DecimalsB, displayPlaces)
		record.LPAmount = quote.FormatUnits(amounts[2], quote.DecimalsLP, displayPlaces)

	default:
		return model.TransactionRecord{}, false, fmt.Errorf("unhandled event %s", name)
	}

	return record, true, nil
}

func asBigInts(values []interface{}, want int) ([]*big.Int, error) {
	if len(values) != want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(values))
	}
	out := make([]*big.Int, want)
	for i, v := range values {
		b, ok := v.(*big.Int)
		if !ok || b == nil {
			return nil, fmt.Errorf("value %d: expected uint256, got %T", i, v)
		}
		out[i] = b
	}
	return out, nil
}
