package notification

import (
	"context"
	"sync"
)

// fakeTransport is an in-memory Transport for tests. Failure modes are
// injected per operation.
type fakeTransport struct {
	mu            sync.Mutex
	notifications []*Notification
	unreadCount   int

	fetchErr    error
	unreadErr   error
	markReadErr error
	markAllErr  error
	deleteErr   error

	fetchCalls    int
	unreadCalls   int
	markReadCalls []string
	markAllCalls  int
	deleteCalls   []string

	// fetchGate, when set, blocks FetchNotifications until released
	fetchGate chan struct{}
}

func (f *fakeTransport) FetchNotifications(ctx context.Context, userID string, query FetchQuery) ([]*Notification, error) {
	f.mu.Lock()
	gate := f.fetchGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	result := make([]*Notification, 0, len(f.notifications))
	for _, n := range f.notifications {
		result = append(result, n.Clone())
	}
	return result, nil
}

func (f *fakeTransport) FetchUnreadCount(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreadCalls++
	if f.unreadErr != nil {
		return 0, f.unreadErr
	}
	return f.unreadCount, nil
}

func (f *fakeTransport) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls = append(f.markReadCalls, id)
	return f.markReadErr
}

func (f *fakeTransport) MarkAllRead(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAllCalls++
	return f.markAllErr
}

func (f *fakeTransport) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeTransport) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

// fakePrefTransport is an in-memory PreferenceTransport. Update echoes the
// submitted set back as the server's authoritative response unless normalize
// is set.
type fakePrefTransport struct {
	mu        sync.Mutex
	prefs     []*Preference
	fetchErr  error
	updateErr error
	resetErr  error

	updateCalls int
	normalize   func([]*Preference) []*Preference
}

func (f *fakePrefTransport) FetchPreferences(ctx context.Context, userID string) ([]*Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	result := make([]*Preference, 0, len(f.prefs))
	for _, p := range f.prefs {
		result = append(result, p.Clone())
	}
	return result, nil
}

func (f *fakePrefTransport) UpdatePreferences(ctx context.Context, userID string, prefs []*Preference) ([]*Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.normalize != nil {
		prefs = f.normalize(prefs)
	}
	f.prefs = make([]*Preference, 0, len(prefs))
	for _, p := range prefs {
		f.prefs = append(f.prefs, p.Clone())
	}
	result := make([]*Preference, 0, len(prefs))
	for _, p := range prefs {
		result = append(result, p.Clone())
	}
	return result, nil
}

func (f *fakePrefTransport) ResetToDefaults(ctx context.Context, userID string) ([]*Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	defaults := EnsureDefaults(userID, nil)
	f.prefs = defaults
	result := make([]*Preference, 0, len(defaults))
	for _, p := range defaults {
		result = append(result, p.Clone())
	}
	return result, nil
}
