package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"procurement_tracker/internal/state"
)

type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncRunning SyncStatus = "syncing"
	SyncOffline SyncStatus = "offline"
	SyncError   SyncStatus = "error"
)

var ErrSyncInFlight = errors.New("sync already in progress")

// RemoteSource is what the sync engine needs from the remote
// datastore: a connectivity probe and one full read of the five
// collections.
type RemoteSource interface {
	Ping(ctx context.Context) error
	Fetch(ctx context.Context) (state.RemoteSnapshot, error)
}

type SyncService interface {
	// Sync fetches the remote collections and folds them into the
	// local replica in one transition. A call made while a sync is
	// already running is a no-op.
	Sync(ctx context.Context) error
	Status() SyncStatus
}

type syncService struct {
	store    *state.Store
	remote   RemoteSource
	notifier NotificationService

	mu     sync.Mutex
	status SyncStatus
}

func NewSyncService(store *state.Store, remote RemoteSource, notifier NotificationService) SyncService {
	return &syncService{store: store, remote: remote, notifier: notifier, status: SyncIdle}
}

func (s *syncService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *syncService) setStatus(st SyncStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// begin flips the status to syncing unless a sync is already running.
func (s *syncService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == SyncRunning {
		return false
	}
	s.status = SyncRunning
	return true
}

func (s *syncService) Sync(ctx context.Context) error {
	if !s.begin() {
		return ErrSyncInFlight
	}

	if err := s.remote.Ping(ctx); err != nil {
		// No connectivity: leave local data alone and come back later.
		s.setStatus(SyncOffline)
		s.notifier.NotifySyncResult(false, "offline, working from local data")
		return nil
	}

	snap, err := s.remote.Fetch(ctx)
	if err != nil {
		s.setStatus(SyncError)
		s.notifier.NotifySyncResult(false, "sync failed: "+err.Error())
		return err
	}

	// All five merged collections commit in a single transition; a
	// failure here leaves the previous local state untouched.
	if _, err := s.store.Dispatch(ctx, state.MergeRemote{Snapshot: snap}); err != nil {
		s.setStatus(SyncError)
		s.notifier.NotifySyncResult(false, "sync failed: "+err.Error())
		return err
	}

	s.setStatus(SyncIdle)
	s.notifier.NotifySyncResult(true, "sync completed")
	log.Printf("Sync completed: %d orders, %d items", len(snap.Orders), len(snap.Items))
	return nil
}
