package store

import (
	"context"
	"io"

	"github.com/aman-zulfiqar/anyswap-engine/internal/models"
	"github.com/aman-zulfiqar/anyswap-engine/internal/pool"
)

// PoolStore defines the interface for pool state storage. Commit is the
// serialization point: concurrent writers race on the pool version and
// exactly one wins.
type PoolStore interface {
	// Create stores a new pool. Fails if the ID is already taken.
	Create(ctx context.Context, p *pool.Pool) error

	// Get retrieves a pool by ID.
	Get(ctx context.Context, id string) (*pool.Pool, error)

	// List retrieves every stored pool.
	List(ctx context.Context) ([]*pool.Pool, error)

	// Commit replaces the stored pool if its version still equals
	// expectedVersion, bumping the version by one. Returns
	// ErrVersionConflict when another writer got there first.
	Commit(ctx context.Context, p *pool.Pool, expectedVersion uint64) (*pool.Pool, error)

	// Delete removes a pool.
	Delete(ctx context.Context, id string) error

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	io.Closer
}

// OpCache caches recent operations and fans them out to live subscribers.
type OpCache interface {
	// AddRecentOp pushes an operation onto the recent-operations list.
	AddRecentOp(ctx context.Context, op *models.Operation) error

	// GetRecentOps retrieves the most recent operations.
	GetRecentOps(ctx context.Context, limit int64) ([]*models.Operation, error)

	// PublishOp publishes an operation to the live Pub/Sub channel.
	PublishOp(ctx context.Context, op *models.Operation) error

	// SubscribeOps subscribes to live operation events.
	SubscribeOps(ctx context.Context) (<-chan *models.Operation, error)
}

// OpStore defines the interface for persistent operation history.
type OpStore interface {
	// InsertOp inserts a committed operation into the history.
	InsertOp(ctx context.Context, op *models.Operation) error

	// PoolOps returns the most recent operations committed to one pool,
	// newest first.
	PoolOps(ctx context.Context, poolID string, limit int) ([]*models.Operation, error)

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	io.Closer
}
