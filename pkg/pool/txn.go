package pool

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Txn serializes every mutating operation on one Pool behind a single
// mutex and gives each operation a working-copy snapshot to mutate: on
// error, the snapshot is discarded and the live pool is untouched; on
// success, the snapshot's state replaces the live pool's (§7 propagation
// policy, §9 "centralize working-copy commit/abort in one place"). One
// mutex per pool, held for the whole of Execute, was the simplest design
// that satisfies the "no partial state may persist" invariant without a
// parallel per-field diff/undo log.
type Txn struct {
	mu   sync.Mutex
	pool *Pool
}

func NewTxn(p *Pool) *Txn {
	return &Txn{pool: p}
}

// Execute runs fn against a clone of the transaction's pool, stamping the
// attempt with a correlation id surfaced in the commit/abort log lines. If
// fn returns an error, the clone is discarded; otherwise the clone's state
// is committed back into the live pool.
func (t *Txn) Execute(fn func(*Pool) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	correlationID := uuid.New()
	working := t.pool.Clone()
	if err := fn(working); err != nil {
		if logrus.GetLevel() >= logrus.DebugLevel {
			logrus.Debugf("txn abort: pool=%s correlationID=%s err=%v", t.pool.ID, correlationID, err)
		}
		return err
	}
	t.pool.restoreFrom(working)
	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("txn commit: pool=%s correlationID=%s", t.pool.ID, correlationID)
	}
	return nil
}

// Pool returns the live pool. Callers must only read it outside of
// Execute; any mutation outside the transaction boundary bypasses the
// rollback guarantee.
func (t *Txn) Pool() *Pool {
	return t.pool
}
