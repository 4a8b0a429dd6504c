package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/entable/dialect"
)

// QueryStats holds statement execution counters.
type QueryStats struct {
	// Queries is the number of row-returning statements executed.
	Queries atomic.Int64
	// Execs is the number of statements executed without rows.
	Execs atomic.Int64
	// Duration is the total time spent in the driver, in nanoseconds.
	Duration atomic.Int64
	// Slow is the number of statements exceeding the slow threshold.
	Slow atomic.Int64
	// Errors is the number of failed statements.
	Errors atomic.Int64
}

// Snapshot returns a point-in-time copy of the counters.
func (s *QueryStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queries:  s.Queries.Load(),
		Execs:    s.Execs.Load(),
		Duration: time.Duration(s.Duration.Load()),
		Slow:     s.Slow.Load(),
		Errors:   s.Errors.Load(),
	}
}

// Reset zeroes all counters.
func (s *QueryStats) Reset() {
	s.Queries.Store(0)
	s.Execs.Store(0)
	s.Duration.Store(0)
	s.Slow.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	Queries  int64
	Execs    int64
	Duration time.Duration
	Slow     int64
	Errors   int64
}

// Avg returns the average statement duration.
func (s StatsSnapshot) Avg() time.Duration {
	total := s.Queries + s.Execs
	if total == 0 {
		return 0
	}
	return s.Duration / time.Duration(total)
}

// String returns a human-readable summary.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.Queries, s.Execs, s.Duration, s.Avg(), s.Slow, s.Errors)
}

// SlowQueryHook is called for every statement exceeding the slow threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver wraps a dialect.Driver with statement statistics.
type StatsDriver struct {
	dialect.Driver
	stats     *QueryStats
	mu        sync.RWMutex
	threshold time.Duration
	hook      SlowQueryHook
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement counts as
// slow. Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold = d
	}
}

// WithSlowQueryHook sets the callback invoked for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.hook = hook
	}
}

// WithSlowQueryLog logs slow statements to logger at warn level. A nil
// logger uses slog.Default().
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		logger.WarnContext(ctx, "slow statement", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsDriver wraps drv with statistics collection.
//
//	drv := sql.NewStatsDriver(sql.OpenDB(dialect.SQLite, db),
//		sql.WithSlowThreshold(200*time.Millisecond),
//		sql.WithSlowQueryLog(nil),
//	)
//	fmt.Println(drv.QueryStats().Snapshot())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:    drv,
		stats:     &QueryStats{},
		threshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// SetSlowThreshold updates the slow threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = threshold
}

// Query implements the dialect.ExecQuerier interface.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.record(ctx, query, args, start, err, &d.stats.Queries)
	return err
}

// Exec implements the dialect.ExecQuerier interface.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.record(ctx, query, args, start, err, &d.stats.Execs)
	return err
}

func (d *StatsDriver) record(ctx context.Context, query string, args any, start time.Time, err error, counter *atomic.Int64) {
	duration := time.Since(start)
	counter.Add(1)
	d.stats.Duration.Add(int64(duration))
	if err != nil {
		d.stats.Errors.Add(1)
	}
	d.mu.RLock()
	threshold, hook := d.threshold, d.hook
	d.mu.RUnlock()
	if duration > threshold {
		d.stats.Slow.Add(1)
		if hook != nil {
			argv, _ := args.([]any)
			hook(ctx, query, argv, duration)
		}
	}
}

// DebugDriver is a driver that logs every statement and its arguments.
type DebugDriver struct {
	dialect.Driver
	log func(context.Context, ...any)
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) {
		d.log = logFunc
	}
}

// DebugWithLogger logs statements to logger at debug level.
func DebugWithLogger(logger *slog.Logger) DebugOption {
	return DebugWithLog(func(ctx context.Context, v ...any) {
		logger.DebugContext(ctx, fmt.Sprint(v...))
	})
}

// NewDebugDriver wraps drv with statement logging. Without options it
// logs to slog.Default() at info level.
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Driver: drv,
		log: func(ctx context.Context, v ...any) {
			slog.InfoContext(ctx, fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query implements the dialect.ExecQuerier interface.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log(ctx, fmt.Sprintf("driver.Query: query=%v args=%v", query, args))
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements the dialect.ExecQuerier interface.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log(ctx, fmt.Sprintf("driver.Exec: query=%v args=%v", query, args))
	return d.Driver.Exec(ctx, query, args, v)
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
)
