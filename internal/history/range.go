package history

import "fmt"

// BlockRange is an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// SplitRange cuts [from, to] into batches of at most batchSize blocks,
// keeping each log query under the RPC provider's range limits.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0, (to-from)/batchSize+1)
	for start := from; ; start += batchSize {
		end := start + batchSize - 1
		if end >= to || end < start {
			ranges = append(ranges, BlockRange{From: start, To: to})
			return ranges, nil
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
	}
}
