package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestTransactionRecordJSONRoundTrip(t *testing.T) {
	original := TransactionRecord{
		ID:          "0xdef456-12",
		Type:        TxSwap,
		TxHash:      "0xdef456",
		BlockNumber: 4200000,
		LogIndex:    12,
		Timestamp:   4200000000,
		FromToken:   "SEED",
		ToToken:     "USDC",
		FromAmount:  "10.000000",
		ToAmount:    "20.000000",
		Status:      "success",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded TransactionRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestTransactionRecordOmitsUnsetFields(t *testing.T) {
	record := TransactionRecord{
		ID:          "0xabc-0",
		Type:        TxRemoveLiquidity,
		TxHash:      "0xabc",
		BlockNumber: 1,
		Timestamp:   1,
		LPAmount:    "10.000000",
		Status:      "success",
	}

	b, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := decoded["from_token"]; ok {
		t.Fatalf("from_token should be omitted for liquidity records")
	}
	if _, ok := decoded["lp_amount"]; !ok {
		t.Fatalf("lp_amount should be present")
	}
}
