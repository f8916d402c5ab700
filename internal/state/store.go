package state

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"procurement_tracker/internal/models"
)

// SnapshotStore persists the whole state tree as one blob under one
// fixed key. Load returns (nil, nil) when no snapshot exists yet.
type SnapshotStore interface {
	Save(ctx context.Context, s models.AppState) error
	Load(ctx context.Context) (*models.AppState, error)
}

// Subscriber observes committed states.
type Subscriber func(models.AppState)

var ErrNotReady = errors.New("state store not hydrated")

// Store owns the authoritative state tree. All writes go through
// Dispatch, which applies the pure reducer under a mutex so transitions
// are linearizable, persists the full tree and notifies subscribers.
type Store struct {
	mu    sync.Mutex
	state models.AppState
	ready bool
	snaps SnapshotStore
	subs  []Subscriber
}

func NewStore(snaps SnapshotStore) *Store {
	return &Store{snaps: snaps}
}

// Hydrate loads the last snapshot, or the default state when none
// exists. Transient fields never survive a restart: pending guards and
// the dragged reference are cleared.
func (st *Store) Hydrate(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	loaded, err := st.snaps.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state snapshot: %w", err)
	}
	if loaded == nil {
		st.state = models.DefaultState()
	} else {
		st.state = *loaded
		if st.state.OrderIDCounters == nil {
			st.state.OrderIDCounters = map[string]int{}
		}
		st.state.Dragged = nil
		for i := range st.state.Orders {
			st.state.Orders[i].Pending = false
		}
	}
	st.ready = true
	return nil
}

// Ready reports whether hydration has completed.
func (st *Store) Ready() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.ready
}

// State returns a deep copy of the current tree.
func (st *Store) State() models.AppState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.Clone()
}

// Dispatch applies one intent. The transition and the snapshot write
// commit together: if persisting fails the previous state is kept and
// the error is returned. A no-op transition skips the write.
func (st *Store) Dispatch(ctx context.Context, intent Intent) (models.AppState, error) {
	st.mu.Lock()
	if !st.ready {
		st.mu.Unlock()
		return models.AppState{}, ErrNotReady
	}
	next := Reduce(st.state, intent)
	changed := !reflect.DeepEqual(st.state, next)
	if changed {
		if err := st.snaps.Save(ctx, next); err != nil {
			prev := st.state.Clone()
			st.mu.Unlock()
			return prev, fmt.Errorf("failed to persist state snapshot: %w", err)
		}
		st.state = next
	}
	result := st.state.Clone()
	subs := st.subs
	st.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(result)
		}
	}
	return result, nil
}

// Subscribe registers an observer invoked after every committed
// transition with a copy of the new state.
func (st *Store) Subscribe(fn Subscriber) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subs = append(st.subs, fn)
}
