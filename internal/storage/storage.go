package storage

import "gardendex/internal/model"

// Storage is a sink for reconstructed history records.
type Storage interface {
	PutRecordBatch(records []model.TransactionRecord) error
}
