package graph

import (
	"Mosaic/internal/api/config"
	"Mosaic/internal/pkg/logger"
	"Mosaic/internal/pkg/metrics"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
)

var ErrNotFound = errors.New("graph: no matching vertex")

// Runner 图数据库查询入口。Read 只读查询走读副本路由，写操作通过 BeginTx
type Runner interface {
	Read(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx 显式事务句柄
type Tx interface {
	Run(ctx context.Context, query string, params map[string]any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Client 进程内共享的 Neo4j 连接
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	metrics  *metrics.Metrics
}

// NewClient 创建驱动并校验连通性
func NewClient(ctx context.Context, cfg config.Neo4jConfig, m *metrics.Metrics) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4jconfig.Config) {
			c.Log = logger.NewNeo4jLogger()
		},
	)
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}

	if err = driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("could not reach neo4j: %w", err)
	}

	log.Info("Connected to Neo4j", "uri", cfg.URI, "database", cfg.Database)
	return &Client{driver: driver, database: cfg.Database, metrics: m}, nil
}

func (c *Client) Read(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	start := time.Now()
	defer c.metrics.ObserveStore("neo4j", "query", start)

	res, err := neo4j.ExecuteQuery(ctx, c.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		log.ErrorContext(ctx, "Neo4j Error", "query", query, "latency", time.Since(start), "err", err)
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		log.WarnContext(ctx, "Neo4j Slow", "query", query, "latency", elapsed)
	}
	return res, nil
}

// BeginTx 开启写事务，Commit / Rollback 后会话随之关闭
func (c *Client) BeginTx(ctx context.Context) (Tx, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		_ = session.Close(ctx)
		return nil, fmt.Errorf("could not begin neo4j transaction: %w", err)
	}
	return &clientTx{session: session, tx: tx}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

type clientTx struct {
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
}

func (t *clientTx) Run(ctx context.Context, query string, params map[string]any) error {
	res, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (t *clientTx) Commit(ctx context.Context) error {
	defer t.session.Close(ctx)
	return t.tx.Commit(ctx)
}

func (t *clientTx) Rollback(ctx context.Context) error {
	defer t.session.Close(ctx)
	return t.tx.Rollback(ctx)
}

// InTx 在事务中执行 fn，出错时回滚
func InTx(ctx context.Context, r Runner, fn func(tx Tx) error) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.ErrorContext(ctx, "Neo4j rollback failed", "err", rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
