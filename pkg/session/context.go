// Package session defines the collaborator contract the Pipeline Builder
// requires from the query session/context layer, plus a minimal reference
// implementation sufficient to drive and test the builder. The full
// session actor (current database, settings, cluster discovery, RPC
// transport) is an external collaborator and out of scope here.
package session

import (
	"sync"

	"github.com/latticedb/lattice/internal/xerrors"
	"github.com/latticedb/lattice/pkg/plan"
)

// ExecutionID identifies one query execution.
type ExecutionID string

// Context is everything the Pipeline Builder needs from a query session.
type Context interface {
	// Reset clears any partition/state bound by a previous Stage boundary.
	Reset()
	// ID returns the execution id, used for diagnostics and remote
	// transform addressing.
	ID() ExecutionID
	// MaxThreads returns the configured worker budget for ReadSource
	// fan-out.
	MaxThreads() uint64
	// TrySetPartitions binds the partitions a ReadSource should scan.
	TrySetPartitions(parts []plan.Partition) error
	// Clone returns a cheap, shared handle usable by a sibling build (e.g.
	// one per remote executor after a Stage reschedule).
	Clone() Context
}

// baseContext is a mutex-guarded reference Context: a single owner for the
// abort flag, execution id, thread budget, and bound partitions, matching
// spec §9's "Session mutable substate" note (prefer one owner over many
// fine-grained locks).
type baseContext struct {
	mu         sync.Mutex
	id         ExecutionID
	maxThreads uint64
	partitions []plan.Partition
	aborted    bool
}

// New returns a reference Context with the given id and thread budget.
func New(id ExecutionID, maxThreads uint64) Context {
	return &baseContext{id: id, maxThreads: maxThreads}
}

func (c *baseContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partitions = nil
}

func (c *baseContext) ID() ExecutionID { return c.id }

func (c *baseContext) MaxThreads() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxThreads
}

func (c *baseContext) TrySetPartitions(parts []plan.Partition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aborted {
		return xerrors.ErrAborted("session killed before partitions could be bound")
	}
	c.partitions = parts
	return nil
}

func (c *baseContext) Clone() Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &baseContext{
		id:         c.id,
		maxThreads: c.maxThreads,
		partitions: append([]plan.Partition(nil), c.partitions...),
	}
}

// Kill sets the abort flag. Callers observing Aborted from TrySetPartitions
// must stop producing and release resources, per spec §7.
func Kill(ctx Context) {
	if c, ok := ctx.(*baseContext); ok {
		c.mu.Lock()
		c.aborted = true
		c.mu.Unlock()
	}
}
