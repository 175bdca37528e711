// Package memory provides in-memory store implementations used by tests and
// single-process local deployments.
package memory

import (
	"context"
	"sync"
)

// TxRunner serialises event application with a coarse lock. The postgres
// implementation uses a real transaction; in memory, mutual exclusion is all
// the guarantee the stores need.
type TxRunner struct {
	mu sync.Mutex
}

// NewTxRunner creates a TxRunner.
func NewTxRunner() *TxRunner {
	return &TxRunner{}
}

// InTx runs fn while holding the lock.
func (t *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
