// Package table executes entity statements against a database: CRUD by
// example, query and update selectors, and pagination.
//
//	client, err := table.Open(ctx, cfg)
//	users := table.New[User](client)
//	if _, err := users.Create(ctx); err != nil { ... }
//	id, err := users.Insert(ctx, &User{Name: "a8m"})
//	page, err := table.NewPagination(users.Query().OrderBy("id", sql.OrderAsc), 10).Page(ctx, 0)
package table

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/syssam/entable"
	"github.com/syssam/entable/config"
	"github.com/syssam/entable/dialect"
	"github.com/syssam/entable/dialect/sql"
	"github.com/syssam/entable/dialect/sql/schema"
)

// RowPolicy decides what happens when a row cannot be mapped.
type RowPolicy uint8

const (
	// AbortOnRowError fails the whole read and returns no rows.
	AbortOnRowError RowPolicy = iota
	// SkipOnRowError logs the failing row and continues with the next.
	SkipOnRowError
)

// String returns the policy name.
func (p RowPolicy) String() string {
	if p == SkipOnRowError {
		return config.RowErrorsSkip
	}
	return config.RowErrorsAbort
}

// Client is the connection handle shared by every table and selector.
// It is safe for concurrent use.
type Client struct {
	driver   dialect.Driver
	strategy schema.Strategy
	logger   *slog.Logger
	policy   RowPolicy
	verbose  bool
	stats    []sql.StatsOption
	cache    entable.Cache
	cacheTTL time.Duration

	queryStats *sql.QueryStats
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for statement and row diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRowPolicy sets the default row error policy.
func WithRowPolicy(p RowPolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithVerbose logs every statement and its arguments at debug level.
func WithVerbose() Option {
	return func(c *Client) {
		c.verbose = true
	}
}

// WithStats collects statement statistics, readable from Client.Stats.
func WithStats(opts ...sql.StatsOption) Option {
	return func(c *Client) {
		c.stats = append([]sql.StatsOption{}, opts...)
	}
}

// WithCache caches selector results in cache for ttl. Writes through the
// client invalidate the cached results of the written table.
func WithCache(cache entable.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache, c.cacheTTL = cache, ttl
	}
}

// NewClient returns a Client over drv. The dialect strategy is selected
// once from drv.Dialect().
func NewClient(drv dialect.Driver, opts ...Option) (*Client, error) {
	c := &Client{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	strategy, err := schema.ForDialect(drv.Dialect())
	if err != nil {
		return nil, err
	}
	c.strategy = strategy
	if c.stats != nil {
		sd := sql.NewStatsDriver(drv, c.stats...)
		c.queryStats = sd.QueryStats()
		drv = sd
	}
	if c.verbose {
		drv = sql.NewDebugDriver(drv, sql.DebugWithLogger(c.logger))
	}
	c.driver = drv
	return c, nil
}

// Open opens the database described by cfg, applies the pool settings,
// verifies the connection and returns a Client configured from cfg.
// Options are applied after the configured ones.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	drv, err := sql.Open(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("entable: open %s: %w", cfg.Dialect, err)
	}
	db := drv.DB()
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("entable: ping %s: %w", cfg.Dialect, err)
	}
	var base []Option
	if cfg.RowErrors == config.RowErrorsSkip {
		base = append(base, WithRowPolicy(SkipOnRowError))
	}
	if cfg.Verbose {
		base = append(base, WithVerbose())
	}
	if cfg.SlowThreshold > 0 {
		base = append(base, func(c *Client) {
			c.stats = []sql.StatsOption{
				sql.WithSlowThreshold(cfg.SlowThreshold),
				sql.WithSlowQueryHook(func(ctx context.Context, query string, args []any, d time.Duration) {
					c.logger.WarnContext(ctx, "slow statement", "duration", d, "query", query, "args", args)
				}),
			}
		})
	}
	if cfg.Cache.Enabled {
		base = append(base, WithCache(entable.NewMemoryCache(), cfg.Cache.TTL))
	}
	c, err := NewClient(drv, append(base, opts...)...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Driver returns the driver statements are sent to.
func (c *Client) Driver() dialect.Driver {
	return c.driver
}

// Dialect returns the dialect name.
func (c *Client) Dialect() string {
	return c.strategy.Dialect()
}

// Strategy returns the dialect strategy selected at construction.
func (c *Client) Strategy() schema.Strategy {
	return c.strategy
}

// Stats returns the statement statistics, or nil when they are disabled.
func (c *Client) Stats() *sql.QueryStats {
	return c.queryStats
}

// Close closes the underlying database.
func (c *Client) Close() error {
	return c.driver.Close()
}

// exec runs a statement and returns its result. Driver failures are
// wrapped in a StatementError, constraint violations also in a
// ConstraintError.
func (c *Client) exec(ctx context.Context, op string, q sql.Querier) (sql.Result, error) {
	query, args := q.Query()
	var res sql.Result
	if err := c.driver.Exec(ctx, query, args, &res); err != nil {
		return nil, c.wrap(op, query, args, err)
	}
	return res, nil
}

// query runs a row-returning statement. The caller closes the rows.
func (c *Client) query(ctx context.Context, op, query string, args []any) (*sql.Rows, error) {
	rows := &sql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return nil, c.wrap(op, query, args, err)
	}
	return rows, nil
}

func (c *Client) wrap(op, query string, args []any, err error) error {
	serr := entable.NewStatementError(op, query, args, err)
	if sql.IsConstraintError(err) {
		return entable.NewConstraintError(err.Error(), serr)
	}
	return serr
}

// count runs a COUNT(*) statement.
func (c *Client) count(ctx context.Context, query string, args []any) (int, error) {
	rows, err := c.query(ctx, "count", query, args)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, entable.NewStatementError("count", query, args, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, entable.NewStatementError("count", query, args, err)
	}
	return n, nil
}
