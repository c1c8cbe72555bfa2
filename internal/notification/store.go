package notification

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mindwell/mindwell-go/internal/errors"
)

// Store holds the raw, unfiltered notification set for one user, fetched
// from the backend. Mutations are optimistic: local state changes first and
// the mirroring backend call is best-effort. A failed backend call is NOT
// rolled back; the UI prioritizes responsiveness over strict consistency,
// and the next reload reconciles. Thread-safe.
type Store struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
	transport     Transport
	userID        string
	pageSize      int
	logger        *slog.Logger
	clock         func() time.Time
}

// NewStore creates a raw notification store backed by the given transport.
func NewStore(transport Transport, userID string, pageSize int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = getLogger(false)
	}
	return &Store{
		notifications: make(map[string]*Notification),
		transport:     transport,
		userID:        userID,
		pageSize:      pageSize,
		logger:        logger,
		clock:         time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// LoadAll replaces the raw set wholesale with a fresh first-page fetch.
// Only "recent" notifications are consumed; pagination beyond page one is
// not this engine's concern.
func (s *Store) LoadAll(ctx context.Context) error {
	fetched, err := s.transport.FetchNotifications(ctx, s.userID, FetchQuery{
		Page: 1,
		Size: s.pageSize,
	})
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("operation", "load_notifications").
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make(map[string]*Notification, len(fetched))
	for _, n := range fetched {
		s.notifications[n.ID] = n
	}
	return nil
}

// Snapshot returns a copy of the raw set sorted newest first. Callers may
// mutate the returned notifications freely.
func (s *Store) Snapshot() []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		result = append(result, n.Clone())
	}
	sortNotificationsByTime(result)
	return result
}

// Len returns the raw set size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications)
}

// MarkAsRead marks a notification read locally, then mirrors the mutation to
// the backend. The local mutation stands even when the backend call fails;
// the returned error is informational for transient surfacing only.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	if id == "" {
		return errors.Newf("notification ID cannot be empty").
			Component("notification").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	n, exists := s.notifications[id]
	if !exists {
		s.mu.Unlock()
		return ErrNotificationNotFound
	}
	n.MarkAsRead(s.clock())
	s.mu.Unlock()

	if err := s.transport.MarkRead(ctx, id); err != nil {
		s.logger.Warn("mark-read not acknowledged by backend, local state stands",
			"id", id, "error", err)
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("operation", "mark_read").
			Build()
	}
	return nil
}

// MarkAllAsRead marks every notification read locally, then mirrors the
// mutation to the backend with the same no-rollback contract as MarkAsRead.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	now := s.clock()
	for _, n := range s.notifications {
		n.MarkAsRead(now)
	}
	s.mu.Unlock()

	if err := s.transport.MarkAllRead(ctx, s.userID); err != nil {
		s.logger.Warn("mark-all-read not acknowledged by backend, local state stands",
			"error", err)
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("operation", "mark_all_read").
			Build()
	}
	return nil
}

// Delete removes a notification from the raw set, then mirrors the removal
// to the backend. Irreversible; on backend failure the item stays deleted
// locally.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.Newf("notification ID cannot be empty").
			Component("notification").
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	if _, exists := s.notifications[id]; !exists {
		s.mu.Unlock()
		return ErrNotificationNotFound
	}
	delete(s.notifications, id)
	s.mu.Unlock()

	if err := s.transport.Delete(ctx, id); err != nil {
		s.logger.Warn("delete not acknowledged by backend, local state stands",
			"id", id, "error", err)
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("operation", "delete").
			Build()
	}
	return nil
}

// sortNotificationsByTime sorts notifications newest first.
func sortNotificationsByTime(notifications []*Notification) {
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
}
