package resource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Slice ties a Collection to a Tracker. Every remote call goes through one of
// its methods: the op moves to pending, the call runs, and only a confirmed
// success mutates the collection.
type Slice[T any] struct {
	name    string
	coll    *Collection[T]
	tracker *Tracker
	log     zerolog.Logger

	// resolve serializes outcome recording with collection mutation so a
	// discarded stale response can never interleave with a newer one.
	resolve sync.Mutex
}

type options struct {
	guard   bool
	message func(error) string
	log     zerolog.Logger
}

// Option configures a Slice.
type Option func(*options)

// WithStaleGuard discards list and detail responses older than the last
// applied response of the same op instead of letting the last resolved call
// win. Confirmed mutations always apply.
func WithStaleGuard() Option {
	return func(o *options) { o.guard = true }
}

// WithMessages sets how errors are turned into the stored error message.
func WithMessages(fn func(error) string) Option {
	return func(o *options) { o.message = fn }
}

// WithLogger attaches a logger for lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New builds an empty slice named name (used in logs and errors).
func New[T any](name string, key KeyFunc[T], opts ...Option) *Slice[T] {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Slice[T]{
		name:    name,
		coll:    NewCollection(key),
		tracker: NewTracker(o.guard, o.message),
		log:     o.log.With().Str("collection", name).Logger(),
	}
}

// Name returns the collection name.
func (s *Slice[T]) Name() string { return s.name }

// FetchAll loads the full list and replaces the collection on success.
func (s *Slice[T]) FetchAll(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	return s.Load(ctx, OpFetchAll, fetch)
}

// Load runs a list-returning call under op and replaces the collection with
// its result. Searches and date queries use their own op.
func (s *Slice[T]) Load(ctx context.Context, op Op, fetch func(context.Context) ([]T, error)) error {
	tk := s.begin(op, false)
	items, err := fetch(ctx)

	s.resolve.Lock()
	defer s.resolve.Unlock()
	if !s.finish(tk, err) {
		return s.discarded(tk, err)
	}
	if err != nil {
		return err
	}
	s.coll.ReplaceAll(items)
	return nil
}

// FetchOne loads a single entity into the current slot.
func (s *Slice[T]) FetchOne(ctx context.Context, fetch func(context.Context) (T, error)) error {
	tk := s.begin(OpFetchOne, false)
	item, err := fetch(ctx)

	s.resolve.Lock()
	defer s.resolve.Unlock()
	if !s.finish(tk, err) {
		return s.discarded(tk, err)
	}
	if err != nil {
		return err
	}
	s.coll.SetCurrent(&item)
	return nil
}

// Save runs a create or update call under op and upserts the returned entity.
// A result without an identifier fails the op with ErrMissingID.
func (s *Slice[T]) Save(ctx context.Context, op Op, mutate func(context.Context) (T, error)) error {
	tk := s.begin(op, true)
	item, err := mutate(ctx)
	if err == nil && strings.TrimSpace(s.coll.key(item)) == "" {
		err = &ConsistencyError{Collection: s.name, Op: op, Err: ErrMissingID}
	}

	s.resolve.Lock()
	defer s.resolve.Unlock()
	if !s.finish(tk, err) {
		return s.discarded(tk, err)
	}
	if err != nil {
		return err
	}
	if err := s.coll.UpsertOne(item); err != nil {
		return err
	}
	return nil
}

// Delete runs remove and drops id from the collection once it succeeds.
func (s *Slice[T]) Delete(ctx context.Context, id string, remove func(context.Context) error) error {
	tk := s.begin(OpDelete, true)
	err := remove(ctx)

	s.resolve.Lock()
	defer s.resolve.Unlock()
	if !s.finish(tk, err) {
		return s.discarded(tk, err)
	}
	if err != nil {
		return err
	}
	s.coll.RemoveOne(id)
	return nil
}

// Items returns a copy of the collection.
func (s *Slice[T]) Items() []T { return s.coll.Items() }

// Get looks up an entity by id.
func (s *Slice[T]) Get(id string) (T, bool) { return s.coll.Get(id) }

// Current returns the detail entity.
func (s *Slice[T]) Current() (T, bool) { return s.coll.Current() }

// ClearCurrent empties the detail slot.
func (s *Slice[T]) ClearCurrent() { s.coll.SetCurrent(nil) }

// Len returns the collection size.
func (s *Slice[T]) Len() int { return s.coll.Len() }

// State returns the request state of op.
func (s *Slice[T]) State(op Op) RequestState { return s.tracker.State(op) }

// Busy reports whether any op is in flight.
func (s *Slice[T]) Busy() bool { return s.tracker.Busy() }

// Reset empties the collection and returns every op to idle. Requests still
// in flight resolve with ErrReset and leave the collection empty.
func (s *Slice[T]) Reset() {
	s.resolve.Lock()
	defer s.resolve.Unlock()
	s.coll.Reset()
	s.tracker.Reset()
}

func (s *Slice[T]) begin(op Op, mutation bool) Ticket {
	var tk Ticket
	if mutation {
		tk = s.tracker.BeginMutation(op)
	} else {
		tk = s.tracker.Begin(op)
	}
	s.log.Debug().Str("op", string(op)).Uint64("seq", tk.Seq).Msg("request pending")
	return tk
}

func (s *Slice[T]) finish(tk Ticket, err error) bool {
	if !s.tracker.Resolve(tk, err) {
		s.log.Debug().Str("op", string(tk.Op)).Uint64("seq", tk.Seq).Msg("response discarded")
		return false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("op", string(tk.Op)).Uint64("seq", tk.Seq).Msg("request failed")
		return true
	}
	s.log.Debug().Str("op", string(tk.Op)).Uint64("seq", tk.Seq).Msg("request succeeded")
	return true
}

// discarded is what a caller sees when its response was not applied: a
// superseded read keeps its own outcome, a request cut off by Reset gets
// ErrReset.
func (s *Slice[T]) discarded(tk Ticket, err error) error {
	if s.tracker.Expired(tk) {
		return fmt.Errorf("%s %s: %w", s.name, tk.Op, ErrReset)
	}
	return err
}

// ConsistencyError reports a response that cannot be applied without
// guessing, such as a mutation result with no identifier.
type ConsistencyError struct {
	Collection string
	Op         Op
	Err        error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collection, e.Op, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
