package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mindwell/mindwell-go/internal/errors"
)

// PreferenceStore holds the user's notification preferences and round-trips
// edits through the backend. Unlike the notification store, preference
// updates are NOT optimistic: the server may normalize values, so on success
// the server's authoritative response replaces local state wholesale.
// Thread-safe.
type PreferenceStore struct {
	mu        sync.RWMutex
	prefs     []*Preference
	transport PreferenceTransport
	userID    string
	logger    *slog.Logger
	clock     func() time.Time
}

// NewPreferenceStore creates a preference store backed by the transport.
func NewPreferenceStore(transport PreferenceTransport, userID string, logger *slog.Logger) *PreferenceStore {
	if logger == nil {
		logger = getLogger(false)
	}
	return &PreferenceStore{
		transport: transport,
		userID:    userID,
		logger:    logger,
		clock:     time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (ps *PreferenceStore) SetClock(clock func() time.Time) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.clock = clock
}

// Load fetches preferences from the backend and fills in locally synthesized
// defaults for missing always-expected categories.
func (ps *PreferenceStore) Load(ctx context.Context) error {
	fetched, err := ps.transport.FetchPreferences(ctx, ps.userID)
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("operation", "load_preferences").
			Build()
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.prefs = EnsureDefaults(ps.userID, fetched)
	return nil
}

// Preferences returns a copy of the preference set in display order.
func (ps *PreferenceStore) Preferences() []*Preference {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	result := make([]*Preference, 0, len(ps.prefs))
	for _, p := range ps.prefs {
		result = append(result, p.Clone())
	}
	return result
}

// Master returns a copy of the master preference, nil before Load.
func (ps *PreferenceStore) Master() *Preference {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return MasterOf(ps.prefs).Clone()
}

// Update submits the given preference set and replaces local state with the
// server's authoritative response.
func (ps *PreferenceStore) Update(ctx context.Context, prefs []*Preference) error {
	updated, err := ps.transport.UpdatePreferences(ctx, ps.userID, prefs)
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("operation", "update_preferences").
			Build()
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.prefs = EnsureDefaults(ps.userID, updated)
	return nil
}

// ToggleMaster flips the global enable switch, maintaining the DisabledAt
// cutoff anchor, and submits the change.
func (ps *PreferenceStore) ToggleMaster(ctx context.Context) error {
	ps.mu.RLock()
	master := MasterOf(ps.prefs).Clone()
	prefs := make([]*Preference, 0, len(ps.prefs))
	for _, p := range ps.prefs {
		prefs = append(prefs, p.Clone())
	}
	clock := ps.clock
	ps.mu.RUnlock()

	if master == nil {
		return ErrPreferenceNotFound
	}

	for _, p := range prefs {
		if p.IsMaster() {
			p.SetEnabled(!p.Enabled, clock())
		}
	}
	return ps.Update(ctx, prefs)
}

// UpdateSchedule replaces the quiet-hours window on the master preference
// and submits the change. The weekday set of an existing schedule is kept.
func (ps *PreferenceStore) UpdateSchedule(ctx context.Context, start, end TimeOfDay) error {
	ps.mu.RLock()
	prefs := make([]*Preference, 0, len(ps.prefs))
	for _, p := range ps.prefs {
		prefs = append(prefs, p.Clone())
	}
	ps.mu.RUnlock()

	master := MasterOf(prefs)
	if master == nil {
		return ErrPreferenceNotFound
	}

	schedule := &TimeWindow{Start: start, End: end}
	if master.Schedule != nil {
		schedule.Weekdays = master.Schedule.Clone().Weekdays
	}
	master.Schedule = schedule

	return ps.Update(ctx, prefs)
}

// Reset asks the backend to restore default preferences and replaces local
// state with the result.
func (ps *PreferenceStore) Reset(ctx context.Context) error {
	restored, err := ps.transport.ResetToDefaults(ctx, ps.userID)
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("operation", "reset_preferences").
			Build()
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.prefs = EnsureDefaults(ps.userID, restored)
	return nil
}
