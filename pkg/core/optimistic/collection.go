// Package optimistic keeps a client-side copy of an ordered collection that
// reflects reorders immediately and reconciles with the server afterwards.
package optimistic

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/reorder"
)

type State int

const (
	Stable State = iota
	Pending
)

func (s State) String() string {
	switch s {
	case Stable:
		return "stable"
	case Pending:
		return "pending"
	}
	return "unknown"
}

var ErrClosed = errors.New("collection closed")

// Mover computes a drag-and-drop move on the current sequence.
type Mover[T any] func(items []T, sourceID, targetID string) (reorder.Result[T], error)

// Persister stores the order assignment carried by a move result.
type Persister[T any] func(ctx context.Context, r reorder.Result[T]) error

// Notice reports a persistence failure that has been rolled back.
type Notice struct {
	RequestID uint64
	Scope     string
	Err       error
}

type Options[T reorder.Ordered[T]] struct {
	Move    Mover[T]
	Persist Persister[T]
	// Scope partitions the collection when a request only carries the order
	// of one partition. Requests of different scopes are tracked separately.
	// Nil means every request carries the whole collection.
	Scope func(item T) string
	// OnChange is called with the visible sequence after every apply and rollback.
	OnChange func(items []T)
	// OnFailure is called after a rollback.
	OnFailure func(n Notice)
	// Timeout bounds a single persistence request. Defaults to 10s.
	Timeout time.Duration
	Logger  *slog.Logger
}

type job[T any] struct {
	id     uint64
	scope  string
	result reorder.Result[T]
}

// lane tracks the outstanding request of one scope.
type lane[T any] struct {
	// snapshot holds the scope's items, in order, as they were right before
	// the apply that produced requestID.
	snapshot  []T
	requestID uint64
	queued    *job[T]
}

// Collection is either Stable(items) or Pending(items, snapshot, requestID)
// per scope. Persistence runs on a single worker in the order moves were
// applied; a request that has not been sent yet is replaced by a newer one
// of the same scope.
type Collection[T reorder.Ordered[T]] struct {
	opts Options[T]

	mu          sync.Mutex
	idle        *sync.Cond
	items       []T
	lanes       map[string]*lane[T]
	sendOrder   []string
	lastScope   string
	nextID      uint64
	outstanding int
	closed      bool

	wake chan struct{}
	done chan struct{}
}

func New[T reorder.Ordered[T]](items []T, opts Options[T]) *Collection[T] {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Collection[T]{
		opts:  opts,
		items: clone(items),
		lanes: make(map[string]*lane[T]),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	c.idle = sync.NewCond(&c.mu)
	go c.run()
	return c
}

// Items returns a copy of the visible sequence.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.items)
}

// State is Pending while any scope has an unresolved request.
func (c *Collection[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lanes) > 0 {
		return Pending
	}
	return Stable
}

// RollbackSnapshot returns the sequence that a failure of the most recent
// request would restore, or nil when stable.
func (c *Collection[T]) RollbackSnapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lanes[c.lastScope]
	if !ok {
		return nil
	}
	return c.restore(c.lastScope, l.snapshot)
}

// Move runs the configured Mover against the visible sequence and applies
// the result. It reports false when the move was a no-op.
func (c *Collection[T]) Move(sourceID, targetID string) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	res, err := c.opts.Move(clone(c.items), sourceID, targetID)
	if err != nil || !res.Moved {
		c.mu.Unlock()
		return false, err
	}
	items, _ := c.applyLocked(res)
	c.mu.Unlock()

	c.changed(items)
	return true, nil
}

// Apply replaces the visible sequence with r.Items and queues persistence.
// It returns the request id.
func (c *Collection[T]) Apply(r reorder.Result[T]) (uint64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	items, id := c.applyLocked(r)
	c.mu.Unlock()

	c.changed(items)
	return id, nil
}

func (c *Collection[T]) applyLocked(r reorder.Result[T]) ([]T, uint64) {
	scope := c.resultScope(r)
	c.nextID++

	l, ok := c.lanes[scope]
	if !ok {
		l = &lane[T]{}
		c.lanes[scope] = l
	}
	l.snapshot = c.scopeItems(c.items, scope)
	l.requestID = c.nextID
	c.items = clone(r.Items)
	c.lastScope = scope

	j := &job[T]{id: c.nextID, scope: scope, result: r}
	if l.queued == nil {
		c.sendOrder = append(c.sendOrder, scope)
		c.outstanding++
	}
	// an unsent request is replaced, the newer one carries the scope's full order
	l.queued = j

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return clone(c.items), c.nextID
}

// Wait blocks until every queued request has been resolved. It may run
// alongside Move and Apply; it then also waits for their requests.
func (c *Collection[T]) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.outstanding > 0 {
		c.idle.Wait()
	}
}

// Close stops the worker. Results of requests still in flight are ignored.
func (c *Collection[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, scope := range c.sendOrder {
		if l := c.lanes[scope]; l != nil && l.queued != nil {
			l.queued = nil
			c.outstanding--
		}
	}
	c.sendOrder = nil
	c.idle.Broadcast()
	c.mu.Unlock()
	close(c.done)
}

func (c *Collection[T]) next() *job[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.sendOrder) > 0 {
		scope := c.sendOrder[0]
		c.sendOrder = c.sendOrder[1:]
		if l := c.lanes[scope]; l != nil && l.queued != nil {
			j := l.queued
			l.queued = nil
			return j
		}
	}
	return nil
}

func (c *Collection[T]) run() {
	for {
		j := c.next()
		if j == nil {
			select {
			case <-c.done:
				return
			case <-c.wake:
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
		err := c.opts.Persist(ctx, j.result)
		cancel()

		c.settle(j, err)
		c.finish()
	}
}

func (c *Collection[T]) finish() {
	c.mu.Lock()
	c.outstanding--
	c.idle.Broadcast()
	c.mu.Unlock()
}

func (c *Collection[T]) settle(j *job[T], err error) {
	c.mu.Lock()
	l := c.lanes[j.scope]
	if c.closed || l == nil || j.id != l.requestID {
		c.mu.Unlock()
		if err != nil {
			c.opts.Logger.Debug("ignoring outcome of superseded reorder", "request_id", j.id, "scope", j.scope, "error", err)
		}
		return
	}
	delete(c.lanes, j.scope)
	if err == nil {
		c.mu.Unlock()
		return
	}

	c.items = c.restore(j.scope, l.snapshot)
	items := clone(c.items)
	c.mu.Unlock()

	c.opts.Logger.Warn("reorder failed, rolled back", "request_id", j.id, "scope", j.scope, "error", err)
	c.changed(items)
	if c.opts.OnFailure != nil {
		c.opts.OnFailure(Notice{RequestID: j.id, Scope: j.scope, Err: err})
	}
}

// restore returns the visible sequence with the slots of scope refilled from
// snapshot. Other scopes keep their current order.
func (c *Collection[T]) restore(scope string, snapshot []T) []T {
	out := clone(c.items)
	n := 0
	for i, it := range out {
		if n == len(snapshot) {
			break
		}
		if c.scopeOf(it) == scope {
			out[i] = snapshot[n]
			n++
		}
	}
	return out
}

func (c *Collection[T]) scopeItems(items []T, scope string) []T {
	var out []T
	for _, it := range items {
		if c.scopeOf(it) == scope {
			out = append(out, it)
		}
	}
	return out
}

func (c *Collection[T]) scopeOf(item T) string {
	if c.opts.Scope == nil {
		return ""
	}
	return c.opts.Scope(item)
}

// resultScope is the scope of the first assigned item.
func (c *Collection[T]) resultScope(r reorder.Result[T]) string {
	if c.opts.Scope == nil || len(r.Assignments) == 0 {
		return ""
	}
	key := r.Assignments[0].ID
	for _, it := range r.Items {
		if it.Key() == key {
			return c.opts.Scope(it)
		}
	}
	return ""
}

func (c *Collection[T]) changed(items []T) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(items)
	}
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	return append(make([]T, 0, len(items)), items...)
}
