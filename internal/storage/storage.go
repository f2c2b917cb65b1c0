package storage

import (
	"context"

	"liquidityEngine/internal/model"
)

// Storage defines a sink for quote records.
type Storage interface {
	PutQuoteBatch(ctx context.Context, quotes []model.QuoteRecord) error
}

// Multi fans a batch out to every sink in order and stops at the first error.
type Multi []Storage

func (m Multi) PutQuoteBatch(ctx context.Context, quotes []model.QuoteRecord) error {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.PutQuoteBatch(ctx, quotes); err != nil {
			return err
		}
	}
	return nil
}
