package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mindwell/mindwell-go/internal/errors"
)

// State is the controller lifecycle state
type State string

const (
	// StateIdle is the state before Initialize
	StateIdle State = "idle"
	// StateLoading is the initial load; no data exists yet
	StateLoading State = "loading"
	// StateReady means a good snapshot is available
	StateReady State = "ready"
	// StateRefreshing is a background reload; the last-good snapshot stays
	// visible until it completes
	StateRefreshing State = "refreshing"
	// StateError means no usable data exists (initial load failed)
	StateError State = "error"
)

// defaultChannelBufferSize is the subscriber channel buffer
const defaultChannelBufferSize = 16

// Snapshot is the immutable view the controller exposes to the presentation
// layer after every state change.
type Snapshot struct {
	State                State
	Visible              []*Notification
	UnreadCount          int
	NotificationsEnabled bool
	UnreadOnly           bool
	// Err carries the last error message; transient refresh/mutation
	// failures set it without discarding Visible
	Err string
}

// IsLoading reports whether the initial load is in progress.
func (s *Snapshot) IsLoading() bool { return s.State == StateLoading }

// IsRefreshing reports whether a background reload is in progress.
func (s *Snapshot) IsRefreshing() bool { return s.State == StateRefreshing }

// subscriber receives snapshots on every state change
type subscriber struct {
	ch     chan Snapshot
	ctx    context.Context
	cancel context.CancelFunc
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	Transport   Transport
	Preferences PreferenceTransport
	// UserID scopes every remote call; empty means no session and is fatal
	UserID string
	// PageSize is the notification fetch page size
	PageSize int
	// PollInterval drives the periodic background refresh; zero disables it
	PollInterval time.Duration
	Debug        bool
	Logger       *slog.Logger
	// Clock overrides the time source, for tests
	Clock func() time.Time
}

// Controller orchestrates the notification policy engine for one user
// session: it loads the raw set and preferences, applies the delivery
// filter after every mutation, and exposes the visible list, unread count,
// and lifecycle state. One instance per active session; commands are safe
// for concurrent use but the controller is not designed for multiple
// concurrent writers.
type Controller struct {
	store     *Store
	prefs     *PreferenceStore
	transport Transport
	clock     func() time.Time
	logger    *slog.Logger

	mu          sync.RWMutex
	state       State
	unreadOnly  bool
	visible     []*Notification
	unreadCount int
	enabled     bool
	lastErr     string
	hasData     bool

	// refreshBusy suppresses overlapping refreshes: while one is in
	// flight, further manual or timer-driven refreshes are skipped
	refreshMu   sync.Mutex
	refreshBusy bool

	subscribersMu sync.RWMutex
	subscribers   []*subscriber

	pollInterval time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewController creates a controller for the given session. A missing user
// id means the session is unauthenticated, which is fatal to a controller
// instance.
func NewController(cfg *ControllerConfig) (*Controller, error) {
	if cfg == nil || cfg.UserID == "" {
		return nil, errors.Newf("no authenticated user for notification controller").
			Component("notification").
			Category(errors.CategoryAuth).
			Build()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = getLogger(cfg.Debug)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		store:        NewStore(cfg.Transport, cfg.UserID, pageSize, logger),
		prefs:        NewPreferenceStore(cfg.Preferences, cfg.UserID, logger),
		transport:    cfg.Transport,
		clock:        clock,
		logger:       logger,
		state:        StateIdle,
		enabled:      true,
		pollInterval: cfg.PollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
	c.store.SetClock(clock)
	c.prefs.SetClock(clock)

	logger.Info("notification controller created",
		"user_id", cfg.UserID,
		"page_size", pageSize,
		"poll_interval", cfg.PollInterval)

	return c, nil
}

// Initialize performs the initial load of preferences and notifications.
// Both must complete before the first filter run; a failure of either
// blocks entry into Ready. On success the poll loop starts when a poll
// interval is configured.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()
	c.broadcast()

	if err := c.loadBoth(ctx); err != nil {
		c.mu.Lock()
		c.state = StateError
		c.lastErr = err.Error()
		c.mu.Unlock()
		c.broadcast()
		return err
	}

	c.mu.Lock()
	c.hasData = true
	c.lastErr = ""
	c.applyPolicyLocked()
	c.state = StateReady
	c.mu.Unlock()
	c.broadcast()

	if c.pollInterval > 0 {
		c.wg.Add(1)
		go c.pollLoop()
	}
	return nil
}

// loadBoth fetches preferences and notifications; order does not matter and
// the fetches run concurrently.
func (c *Controller) loadBoth(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.prefs.Load(gctx) })
	g.Go(func() error { return c.store.LoadAll(gctx) })
	return g.Wait()
}

// Refresh re-fetches preferences and notifications and re-applies the
// filter. While a refresh is in flight, further refresh calls are skipped:
// refreshes are sequenced, never raced. A failed refresh surfaces a
// transient error and keeps the previously displayed list.
func (c *Controller) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	if c.refreshBusy {
		c.refreshMu.Unlock()
		return nil
	}
	c.refreshBusy = true
	c.refreshMu.Unlock()
	defer func() {
		c.refreshMu.Lock()
		c.refreshBusy = false
		c.refreshMu.Unlock()
	}()

	c.mu.Lock()
	if c.hasData {
		c.state = StateRefreshing
	} else {
		c.state = StateLoading
	}
	c.mu.Unlock()
	c.broadcast()

	err := c.loadBoth(ctx)

	// Torn down while the fetch was in flight: abandon the result
	if c.ctx.Err() != nil {
		return nil
	}

	c.mu.Lock()
	if err != nil {
		c.lastErr = err.Error()
		if c.hasData {
			// Errors never blank the screen if data already exists
			c.state = StateReady
		} else {
			c.state = StateError
		}
		c.mu.Unlock()
		c.broadcast()
		c.logger.Warn("refresh failed, keeping last-good view", "error", err)
		return err
	}

	c.hasData = true
	c.lastErr = ""
	c.applyPolicyLocked()
	c.state = StateReady
	c.mu.Unlock()
	c.broadcast()

	c.verifyUnreadCount()
	return nil
}

// verifyUnreadCount compares the server's unread count with the locally
// derived one and logs divergence. The local derived count stays
// authoritative for the badge.
func (c *Controller) verifyUnreadCount() {
	serverCount, err := c.transport.FetchUnreadCount(c.ctx, c.store.userID)
	if err != nil {
		return
	}
	c.mu.RLock()
	localCount := c.unreadCount
	c.mu.RUnlock()
	if serverCount != localCount {
		c.logger.Debug("unread count divergence between server and local view",
			"server", serverCount, "local", localCount)
	}
}

// SetTabFilter switches between the all and unread-only views. Purely
// local: the filter re-runs against the already-loaded raw set.
func (c *Controller) SetTabFilter(unreadOnly bool) {
	c.mu.Lock()
	c.unreadOnly = unreadOnly
	c.applyPolicyLocked()
	c.mu.Unlock()
	c.broadcast()
}

// MarkAsRead marks one notification read. The local mutation applies
// immediately; a failed backend call surfaces as a transient error without
// rollback.
func (c *Controller) MarkAsRead(ctx context.Context, id string) error {
	err := c.store.MarkAsRead(ctx, id)
	c.afterMutation(err)
	return err
}

// MarkAllAsRead marks every notification read with the same optimistic
// contract as MarkAsRead.
func (c *Controller) MarkAllAsRead(ctx context.Context) error {
	err := c.store.MarkAllAsRead(ctx)
	c.afterMutation(err)
	return err
}

// Delete removes a notification. Irreversible; optimistic like the other
// mutations.
func (c *Controller) Delete(ctx context.Context, id string) error {
	err := c.store.Delete(ctx, id)
	c.afterMutation(err)
	return err
}

// ToggleMaster flips the global notification switch and re-filters.
func (c *Controller) ToggleMaster(ctx context.Context) error {
	err := c.prefs.ToggleMaster(ctx)
	c.afterMutation(err)
	return err
}

// UpdateSchedule replaces the quiet-hours window and re-filters.
func (c *Controller) UpdateSchedule(ctx context.Context, start, end TimeOfDay) error {
	err := c.prefs.UpdateSchedule(ctx, start, end)
	c.afterMutation(err)
	return err
}

// Preferences returns the current preference set in display order.
func (c *Controller) Preferences() []*Preference {
	return c.prefs.Preferences()
}

// afterMutation re-runs the filter and unread counter synchronously after
// any mutation so the visible state never reflects a stale raw set. A
// network failure is recorded as a transient error; local state stands.
func (c *Controller) afterMutation(err error) {
	c.mu.Lock()
	if err != nil {
		var ee *errors.EnhancedError
		if errors.As(err, &ee) && ee.Category == errors.CategoryNetwork {
			c.lastErr = err.Error()
		}
	}
	c.applyPolicyLocked()
	c.mu.Unlock()
	c.broadcast()
}

// applyPolicyLocked recomputes the visible list and unread count from the
// raw set and the master preference. Caller holds c.mu.
func (c *Controller) applyPolicyLocked() {
	master := c.prefs.Master()
	raw := c.store.Snapshot()

	c.visible = Visible(raw, master, FilterOptions{UnreadOnly: c.unreadOnly}, c.clock())
	c.unreadCount = CountUnread(c.visible, master)
	c.enabled = master == nil || master.Enabled
}

// Snapshot returns the current view. The contained notifications are copies
// owned by the caller.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// snapshotLocked builds a snapshot. Caller holds c.mu (read or write).
func (c *Controller) snapshotLocked() Snapshot {
	visible := make([]*Notification, 0, len(c.visible))
	for _, n := range c.visible {
		visible = append(visible, n.Clone())
	}
	return Snapshot{
		State:                c.state,
		Visible:              visible,
		UnreadCount:          c.unreadCount,
		NotificationsEnabled: c.enabled,
		UnreadOnly:           c.unreadOnly,
		Err:                  c.lastErr,
	}
}

// Subscribe returns a channel receiving a snapshot after every state
// change, plus a context cancelled when the subscription ends. The
// subscriber must not close the channel; slow subscribers miss updates
// rather than block the controller.
func (c *Controller) Subscribe() (<-chan Snapshot, context.Context) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	ctx, cancel := context.WithCancel(c.ctx)
	sub := &subscriber{
		ch:     make(chan Snapshot, defaultChannelBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
	c.subscribers = append(c.subscribers, sub)
	return sub.ch, ctx
}

// Unsubscribe removes a subscription previously created with Subscribe.
func (c *Controller) Unsubscribe(ch <-chan Snapshot) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for i, sub := range c.subscribers {
		if sub.ch == ch {
			sub.cancel()
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			break
		}
	}
}

// broadcast sends the current snapshot to all subscribers, pruning
// cancelled ones. Sends are non-blocking: a full channel drops the update.
func (c *Controller) broadcast() {
	c.mu.RLock()
	snapshot := c.snapshotLocked()
	c.mu.RUnlock()

	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	active := make([]*subscriber, 0, len(c.subscribers))
	for _, sub := range c.subscribers {
		select {
		case <-sub.ctx.Done():
			continue
		default:
		}
		active = append(active, sub)

		select {
		case sub.ch <- snapshot:
		default:
			c.logger.Debug("subscriber channel full, dropping snapshot")
		}
	}
	c.subscribers = active
}

// pollLoop drives the periodic refresh. The busy flag inside Refresh keeps
// timer ticks from overlapping a refresh already in flight.
func (c *Controller) pollLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Refresh(c.ctx); err != nil {
				c.logger.Debug("periodic refresh failed", "error", err)
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// Stop tears the controller down: the poll loop exits, in-flight refreshes
// are abandoned, and all subscriber contexts are cancelled.
func (c *Controller) Stop() {
	c.cancel()
	c.wg.Wait()

	c.subscribersMu.Lock()
	for _, sub := range c.subscribers {
		sub.cancel()
	}
	c.subscribers = nil
	c.subscribersMu.Unlock()

	c.logger.Info("notification controller stopped")
}
