package history

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"gardendex/internal/dex"
	"gardendex/internal/model"
)

var (
	poolAddr  = common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	alice     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob       = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testUnits = func(coeff int64, decimals int) *big.Int {
		v := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
		return v.Mul(v, big.NewInt(coeff))
	}
)

type fakeSource struct {
	latest    uint64
	latestErr error
	logs      map[common.Hash][]types.Log
	failTopic common.Hash
}

func (f *fakeSource) LatestBlockNumber(ctx context.Context) (uint64, error) {
	if f.latestErr != nil {
		return 0, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeSource) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	topic := topic0[0]
	if topic == f.failTopic {
		return nil, errors.New("decode failed upstream")
	}
	out := make([]types.Log, 0)
	for _, log := range f.logs[topic] {
		if log.BlockNumber >= fromBlock && log.BlockNumber <= toBlock {
			out = append(out, log)
		}
	}
	return out, nil
}

func eventLog(t *testing.T, name string, subject common.Address, block uint64, index uint, amounts ...*big.Int) types.Log {
	t.Helper()

	dexABI, err := dex.SimpleDexABI()
	require.NoError(t, err)
	event, ok := dexABI.Events[name]
	require.True(t, ok)

	args := make([]interface{}, len(amounts))
	for i, a := range amounts {
		args[i] = a
	}
	data, err := event.Inputs.NonIndexed().Pack(args...)
	require.NoError(t, err)

	return types.Log{
		Address:     poolAddr,
		Topics:      []common.Hash{event.ID, common.BytesToHash(subject.Bytes())},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BytesToHash([]byte{byte(block), byte(index)}),
		Index:       index,
	}
}

func topicOf(t *testing.T, name string) common.Hash {
	t.Helper()
	dexABI, err := dex.SimpleDexABI()
	require.NoError(t, err)
	return dexABI.Events[name].ID
}

func newReconstructor(t *testing.T, source LogSource) *Reconstructor {
	t.Helper()
	r, err := NewReconstructor(source, poolAddr, Config{
		Window:    10000,
		BatchSize: 2000,
		BlockTime: time.Second,
	}, nil)
	require.NoError(t, err)
	return r
}

func TestFetchFiltersByUserAndSortsNewestFirst(t *testing.T) {
	zero := big.NewInt(0)
	source := &fakeSource{
		latest: 5000,
		logs: map[common.Hash][]types.Log{
			topicOf(t, "Swap"): {
				// Alice swaps A for B at block 100.
				eventLog(t, "Swap", alice, 100, 0, testUnits(10, 18), zero, zero, testUnits(20, 6)),
				// Bob's swap must be filtered out.
				eventLog(t, "Swap", bob, 150, 0, testUnits(5, 18), zero, zero, testUnits(10, 6)),
				// Alice swaps B for A at block 300.
				eventLog(t, "Swap", alice, 300, 1, zero, testUnits(20, 6), testUnits(10, 18), zero),
			},
			topicOf(t, "LiquidityAdded"): {
				eventLog(t, "LiquidityAdded", alice, 200, 0, testUnits(10, 18), testUnits(20, 6), testUnits(1, 18)),
			},
			topicOf(t, "LiquidityRemoved"): {
				eventLog(t, "LiquidityRemoved", bob, 250, 0, testUnits(1, 18), testUnits(2, 6), testUnits(1, 18)),
			},
		},
	}

	records, err := newReconstructor(t, source).Fetch(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, []uint64{300, 200, 100}, []uint64{records[0].BlockNumber, records[1].BlockNumber, records[2].BlockNumber})

	// Block 300: B-for-A swap, direction inferred from the non-zero
	// input amount.
	require.Equal(t, model.TxSwap, records[0].Type)
	require.Equal(t, "USDC", records[0].FromToken)
	require.Equal(t, "SEED", records[0].ToToken)
	require.Equal(t, "20.000000", records[0].FromAmount)
	require.Equal(t, "10.000000", records[0].ToAmount)

	require.Equal(t, model.TxAddLiquidity, records[1].Type)
	require.Equal(t, "10.000000", records[1].AmountA)
	require.Equal(t, "20.000000", records[1].AmountB)
	require.Equal(t, "1.000000", records[1].LPAmount)

	require.Equal(t, model.TxSwap, records[2].Type)
	require.Equal(t, "SEED", records[2].FromToken)

	// Approximate timestamps scale with block number.
	require.Equal(t, int64(300), records[0].Timestamp)
}

func TestFetchPartialFailureStillReturnsOtherKinds(t *testing.T) {
	zero := big.NewInt(0)
	source := &fakeSource{
		latest:    5000,
		failTopic: topicOf(t, "LiquidityAdded"),
		logs: map[common.Hash][]types.Log{
			topicOf(t, "Swap"): {
				eventLog(t, "Swap", alice, 100, 0, testUnits(10, 18), zero, zero, testUnits(20, 6)),
			},
			topicOf(t, "LiquidityRemoved"): {
				eventLog(t, "LiquidityRemoved", alice, 200, 0, testUnits(1, 18), testUnits(2, 6), testUnits(1, 18)),
			},
		},
	}

	r, err := NewReconstructor(source, poolAddr, Config{
		Window:    10000,
		BatchSize: 2000,
		BlockTime: time.Second,
		// No retries so the failing kind gives up immediately.
	}, nil)
	require.NoError(t, err)

	records, err := r.Fetch(context.Background(), alice)
	require.NoError(t, err, "partial failure must not surface")
	require.Len(t, records, 2)
	require.Equal(t, model.TxRemoveLiquidity, records[0].Type)
	require.Equal(t, model.TxSwap, records[1].Type)
}

func TestFetchAllScansFailedDegradesToEmptyList(t *testing.T) {
	source := &fakeSource{latestErr: errors.New("rpc down")}

	records, err := newReconstructor(t, source).Fetch(context.Background(), alice)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestFetchWindowFloorsAtGenesis(t *testing.T) {
	// Chain shorter than the window: the scan starts at block 0 and
	// still finds early logs.
	zero := big.NewInt(0)
	source := &fakeSource{
		latest: 50,
		logs: map[common.Hash][]types.Log{
			topicOf(t, "Swap"): {
				eventLog(t, "Swap", alice, 1, 0, testUnits(1, 18), zero, zero, testUnits(2, 6)),
			},
		},
	}

	records, err := newReconstructor(t, source).Fetch(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, records, 1)
}
