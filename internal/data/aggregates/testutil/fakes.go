// Package testutil has in-memory stand-ins for the aggregate transaction runner and hooks.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/sayevvv/LearnUp-sub001/internal/data/aggregates"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/dbctx"
)

// InjectedTxRunner runs the write closure without a database and fails at the
// configured step. A nil Tx is handed to the closure.
type InjectedTxRunner struct {
	FailBegin  error
	FailCommit error

	mu            sync.Mutex
	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.count(&r.BeginCalls)
	if r.FailBegin != nil {
		return r.FailBegin
	}
	var err error
	if fn != nil {
		err = fn(dbctx.Context{Ctx: ctx})
	}
	if err == nil {
		err = r.FailCommit
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}

// HookEvent is one ObserveOperation call.
type HookEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

// HooksRecorder keeps every aggregate hook call in order.
type HooksRecorder struct {
	mu         sync.Mutex
	Operations []HookEvent
	Conflicts  []string
	Retries    []string
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, HookEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}
