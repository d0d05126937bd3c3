package resource

import (
	"errors"
	"sync"
	"time"
)

// ErrReset is returned for a request that was in flight when its collection
// was reset. Its result is never applied.
var ErrReset = errors.New("collection reset while request was in flight")

// Status is the lifecycle position of one asynchronous operation.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Op names a logical operation on a collection. Each Op has its own
// RequestState.
type Op string

const (
	OpFetchAll Op = "fetchAll"
	OpFetchOne Op = "fetchOne"
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpSearch   Op = "search"
)

// RequestState is the recorded outcome of the most recent invocation of an Op.
type RequestState struct {
	Status    Status
	Err       error
	Message   string // user-facing error text; empty unless Status is StatusFailed
	Seq       uint64
	UpdatedAt time.Time
}

// Loading reports whether the operation is in flight.
func (r RequestState) Loading() bool { return r.Status == StatusPending }

// Failed reports whether the last resolved invocation failed.
func (r RequestState) Failed() bool { return r.Status == StatusFailed }

// Ticket identifies one invocation handed out by Tracker.Begin or
// Tracker.BeginMutation.
type Ticket struct {
	Op  Op
	Seq uint64

	mutation bool
}

// Tracker records one RequestState per Op. Sequence numbers are monotonic
// across all ops of a tracker.
type Tracker struct {
	mu      sync.RWMutex
	states  map[Op]RequestState
	applied map[Op]uint64
	seq     uint64
	floor   uint64 // tickets at or below floor were issued before the last Reset
	guard   bool
	message func(error) string
	now     func() time.Time
}

// NewTracker builds a tracker. With guard set, a read whose ticket is older
// than the last applied ticket of the same op is discarded; without it the
// last resolved invocation wins. Mutations are never discarded as stale: a
// confirmed create, update or delete always applies.
func NewTracker(guard bool, message func(error) string) *Tracker {
	if message == nil {
		message = defaultMessage
	}
	return &Tracker{
		states:  make(map[Op]RequestState),
		applied: make(map[Op]uint64),
		guard:   guard,
		message: message,
		now:     time.Now,
	}
}

// Begin moves op to pending, clearing any previous error, and returns the
// ticket the caller must resolve.
func (t *Tracker) Begin(op Op) Ticket {
	return t.begin(op, false)
}

// BeginMutation is Begin for a create, update or delete.
func (t *Tracker) BeginMutation(op Op) Ticket {
	return t.begin(op, true)
}

func (t *Tracker) begin(op Op, mutation bool) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.states[op] = RequestState{Status: StatusPending, Seq: t.seq, UpdatedAt: t.now()}
	return Ticket{Op: op, Seq: t.seq, mutation: mutation}
}

// Resolve records the outcome of tk. It returns false when the outcome was
// discarded, in which case the caller must not apply the result: the ticket
// predates a Reset, or the guard is on and a newer read already applied.
//
// While a newer invocation of the same op is still pending the state stays
// pending; the result is still applied.
func (t *Tracker) Resolve(tk Ticket, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tk.Seq <= t.floor {
		return false
	}
	if t.guard && !tk.mutation && tk.Seq < t.applied[tk.Op] {
		return false
	}
	if tk.Seq > t.applied[tk.Op] {
		t.applied[tk.Op] = tk.Seq
	}
	if cur := t.states[tk.Op]; cur.Status == StatusPending && cur.Seq > tk.Seq {
		return true
	}

	state := RequestState{Status: StatusSucceeded, Seq: tk.Seq, UpdatedAt: t.now()}
	if err != nil {
		state.Status = StatusFailed
		state.Err = err
		state.Message = t.message(err)
	}
	t.states[tk.Op] = state
	return true
}

// State returns the current state of op. Unknown ops are idle.
func (t *Tracker) State(op Op) RequestState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[op]
}

// Busy reports whether any op is pending.
func (t *Tracker) Busy() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.states {
		if s.Status == StatusPending {
			return true
		}
	}
	return false
}

// Expired reports whether tk was issued before the last Reset.
func (t *Tracker) Expired(tk Ticket) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return tk.Seq <= t.floor
}

// Reset returns every op to idle. Tickets issued before the reset can no
// longer resolve.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.floor = t.seq
	t.states = make(map[Op]RequestState)
	t.applied = make(map[Op]uint64)
}

func defaultMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
