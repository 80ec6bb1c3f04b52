package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/anyswap-engine/internal/models"
)

// ClickHouseStore persists committed operations for analytics. It is an
// append-only history; the authoritative pool state lives in Redis.
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewClickHouseStore(cfg ClickHouseConfig, logger *logrus.Logger) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if logger == nil {
		logger = logrus.New()
	}
	logger.Info("Connected to ClickHouse")

	return &ClickHouseStore{conn: conn, logger: logger}, nil
}

func (c *ClickHouseStore) InsertOp(ctx context.Context, op *models.Operation) error {
	query := `
		INSERT INTO amm_operations (
			pool_id, kind, timestamp, version,
			amounts_in, amounts_out, fees, fee_total,
			lp_delta, new_lp_supply
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		op.PoolID,
		string(op.Kind),
		op.Timestamp,
		op.Version,
		op.AmountsIn,
		op.AmountsOut,
		op.Fees,
		op.FeeTotal,
		op.LPDelta,
		op.NewLPSupply,
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation: %w", err)
	}
	return nil
}

// PoolOps returns the most recent committed operations for one pool.
func (c *ClickHouseStore) PoolOps(ctx context.Context, poolID string, limit int) ([]*models.Operation, error) {
	query := `
		SELECT pool_id, kind, timestamp, version,
		       amounts_in, amounts_out, fees, fee_total,
		       lp_delta, new_lp_supply
		FROM amm_operations
		WHERE pool_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := c.conn.Query(ctx, query, poolID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var out []*models.Operation
	for rows.Next() {
		var op models.Operation
		var kind string
		if err := rows.Scan(
			&op.PoolID, &kind, &op.Timestamp, &op.Version,
			&op.AmountsIn, &op.AmountsOut, &op.Fees, &op.FeeTotal,
			&op.LPDelta, &op.NewLPSupply,
		); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Kind = models.OpKind(kind)
		out = append(out, &op)
	}
	return out, rows.Err()
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
