package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/dbctx"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// TxRunner opens the transaction a label write runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

// Hooks receives one ObserveOperation per write, plus a conflict or retry signal when
// the write failed that way.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type gormRunner struct{ db *gorm.DB }

func NewGormTxRunner(db *gorm.DB) TxRunner { return gormRunner{db: db} }

func (r gormRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "no database", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// metricHooks forwards to Metrics; a nil *Metrics records nothing.
type metricHooks struct{ m *observability.Metrics }

func NewObservabilityHooks(m *observability.Metrics) Hooks { return metricHooks{m: m} }

func (h metricHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(name, status, dur)
}
func (h metricHooks) IncConflict(name string) { h.m.IncAggregateConflict(name) }
func (h metricHooks) IncRetry(name string)    { h.m.IncAggregateRetry(name) }

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = metricHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// executeWrite runs fn in one transaction, maps the error to an aggregate code and
// reports the outcome to the hooks.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = "aggregate.write"
	}
	start := time.Now()
	err := MapError(op, deps.Runner.InTx(ctx, fn))

	switch domainagg.CodeOf(err) {
	case domainagg.CodeConflict:
		deps.Hooks.IncConflict(op)
	case domainagg.CodeRetryable:
		deps.Hooks.IncRetry(op)
	}
	deps.Hooks.ObserveOperation(op, aggregateErrorStatus(err), time.Since(start))
	return err
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	return string(domainagg.CodeOf(MapError("aggregate.status", err)))
}
