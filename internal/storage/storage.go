package storage

import (
	"context"

	"liquidityEngine/internal/model"
)

// PoolStore persists full pool aggregates keyed by pool id.
type PoolStore interface {
	SavePool(ctx context.Context, state model.PoolState) error
	LoadPool(ctx context.Context, poolID string) (model.PoolState, bool, error)
	ListPools(ctx context.Context) ([]string, error)
}

// EventJournal records pool mutation events in order.
type EventJournal interface {
	Append(event model.PoolEvent) error
}
