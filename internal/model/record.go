package model

// TransactionType classifies a reconstructed history record.
type TransactionType string

const (
	TxSwap            TransactionType = "swap"
	TxAddLiquidity    TransactionType = "add_liquidity"
	TxRemoveLiquidity TransactionType = "remove_liquidity"
)

// TransactionRecord is an immutable reconstruction of a past on-chain
// event. Identity is tx hash + log index. Amounts are pre-formatted
// display strings; the timestamp is approximate (block number scaled
// by the nominal block time), not true block time.
type TransactionRecord struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	TxHash      string          `json:"tx_hash"`
	BlockNumber uint64          `json:"block_number"`
	LogIndex    uint64          `json:"log_index"`
	Timestamp   int64           `json:"timestamp"`

	// Swap fields.
	FromToken  string `json:"from_token,omitempty"`
	ToToken    string `json:"to_token,omitempty"`
	FromAmount string `json:"from_amount,omitempty"`
	ToAmount   string `json:"to_amount,omitempty"`

	// Liquidity fields.
	AmountA  string `json:"amount_a,omitempty"`
	AmountB  string `json:"amount_b,omitempty"`
	LPAmount string `json:"lp_amount,omitempty"`

	Status string `json:"status"`
}
