package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture helpers

func unreadNotification(typ Type, priority Priority, createdAt time.Time) *Notification {
	n := NewNotification(typ, priority, "title", "content")
	n.CreatedAt = createdAt
	return n
}

func readNotification(typ Type, priority Priority, createdAt time.Time) *Notification {
	n := unreadNotification(typ, priority, createdAt)
	n.MarkAsRead(createdAt.Add(time.Minute))
	return n
}

func enabledMaster() *Preference {
	return &Preference{
		ID:             "master",
		UserID:         "user-1",
		Type:           TypeCheckInReminder,
		Enabled:        true,
		DeliveryMethod: DeliveryPush,
	}
}

func disabledMaster(disabledAt time.Time) *Preference {
	m := enabledMaster()
	m.SetEnabled(false, disabledAt)
	return m
}

func officeHours(t *testing.T) *TimeWindow {
	t.Helper()
	return &TimeWindow{
		Start: mustTimeOfDay(t, "09:00"),
		End:   mustTimeOfDay(t, "17:00"),
	}
}

func TestCutoffHidesNotificationsCreatedAfterDisable(t *testing.T) {
	t.Parallel()

	t0 := at(10, 0)
	before := unreadNotification(TypeInfo, PriorityNormal, t0.Add(-time.Hour))
	after := unreadNotification(TypeInfo, PriorityNormal, t0.Add(time.Hour))

	visible := Visible([]*Notification{before, after}, disabledMaster(t0), FilterOptions{}, t0.Add(2*time.Hour))

	require.Len(t, visible, 1)
	assert.Equal(t, before.ID, visible[0].ID)
}

func TestCutoffIdempotentWhenEnabled(t *testing.T) {
	t.Parallel()

	// A stale non-nil DisabledAt from a prior disable must be ignored while
	// the master preference is enabled
	t0 := at(10, 0)
	master := enabledMaster()
	stale := t0.Add(-time.Hour)
	master.DisabledAt = &stale

	raw := []*Notification{
		unreadNotification(TypeInfo, PriorityNormal, t0),
		readNotification(TypeAlert, PriorityLow, t0.Add(time.Minute)),
		unreadNotification(TypeSystemUpdate, PriorityLow, t0.Add(2*time.Minute)),
	}

	visible := Visible(raw, master, FilterOptions{}, t0.Add(time.Hour))
	assert.Len(t, visible, len(raw))
}

func TestUnreadOnlySubFilter(t *testing.T) {
	t.Parallel()

	t0 := at(10, 0)
	unread := unreadNotification(TypeInfo, PriorityNormal, t0)
	read := readNotification(TypeInfo, PriorityNormal, t0)

	visible := Visible([]*Notification{unread, read}, enabledMaster(), FilterOptions{UnreadOnly: true}, t0)

	require.Len(t, visible, 1)
	assert.Equal(t, unread.ID, visible[0].ID)
}

func TestQuietHoursCriticalBypass(t *testing.T) {
	t.Parallel()

	master := enabledMaster()
	master.Schedule = officeHours(t)
	now := at(20, 0) // outside 09:00-17:00

	critical := unreadNotification(TypeMessageReceived, PriorityCritical, at(19, 0))
	routine := unreadNotification(TypeMessageReceived, PriorityNormal, at(19, 0))

	visible := Visible([]*Notification{critical, routine}, master, FilterOptions{}, now)

	require.Len(t, visible, 1)
	assert.Equal(t, critical.ID, visible[0].ID)
}

func TestQuietHoursRetainsReadAndCriticalVariants(t *testing.T) {
	t.Parallel()

	master := enabledMaster()
	master.Schedule = officeHours(t)
	now := at(20, 0)
	created := at(19, 0)

	tests := []struct {
		name    string
		n       *Notification
		visible bool
	}{
		{"unread normal", unreadNotification(TypeInfo, PriorityNormal, created), false},
		{"already read", readNotification(TypeInfo, PriorityNormal, created), true},
		{"crisis alert category", unreadNotification(TypeCrisisAlert, PriorityNormal, created), true},
		{"emergency category", unreadNotification(TypeEmergency, PriorityLow, created), true},
		{"high priority", unreadNotification(TypeMessageReceived, PriorityHigh, created), true},
		{"critical priority", unreadNotification(TypeAssignmentDue, PriorityCritical, created), true},
		{"unread low", unreadNotification(TypeAppointmentReminder, PriorityLow, created), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			visible := Visible([]*Notification{tt.n}, master, FilterOptions{}, now)
			if tt.visible {
				assert.Len(t, visible, 1)
			} else {
				assert.Empty(t, visible)
			}
		})
	}
}

func TestQuietHoursInactiveInsideWindow(t *testing.T) {
	t.Parallel()

	master := enabledMaster()
	master.Schedule = officeHours(t)
	now := at(12, 0) // inside the active window

	routine := unreadNotification(TypeInfo, PriorityLow, at(11, 0))
	visible := Visible([]*Notification{routine}, master, FilterOptions{}, now)
	assert.Len(t, visible, 1)
}

func TestQuietHoursRequireSchedule(t *testing.T) {
	t.Parallel()

	// No schedule means no quiet-hours filtering at any time of day
	routine := unreadNotification(TypeInfo, PriorityLow, at(3, 0))
	visible := Visible([]*Notification{routine}, enabledMaster(), FilterOptions{}, at(3, 30))
	assert.Len(t, visible, 1)
}

func TestCutoffRunsBeforeCriticalBypass(t *testing.T) {
	t.Parallel()

	// A critical notification hidden by the historical cutoff must not be
	// resurrected by the bypass rule
	t0 := at(10, 0)
	master := disabledMaster(t0)
	master.Schedule = officeHours(t)

	critical := unreadNotification(TypeCrisisAlert, PriorityCritical, t0.Add(time.Hour))
	visible := Visible([]*Notification{critical}, master, FilterOptions{}, t0.Add(2*time.Hour))
	assert.Empty(t, visible)
}

func TestVisibleIsDeterministicAndOrderPreserving(t *testing.T) {
	t.Parallel()

	t0 := at(10, 0)
	raw := []*Notification{
		unreadNotification(TypeInfo, PriorityNormal, t0),
		readNotification(TypeAlert, PriorityLow, t0.Add(time.Minute)),
		unreadNotification(TypeWarning, PriorityHigh, t0.Add(2*time.Minute)),
	}
	master := enabledMaster()
	now := t0.Add(time.Hour)

	first := Visible(raw, master, FilterOptions{}, now)
	second := Visible(raw, master, FilterOptions{}, now)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	for i := range first {
		assert.Equal(t, raw[i].ID, first[i].ID, "input order preserved")
	}
}

func TestCountUnread(t *testing.T) {
	t.Parallel()

	t0 := at(10, 0)
	visible := []*Notification{
		unreadNotification(TypeInfo, PriorityNormal, t0),
		readNotification(TypeInfo, PriorityNormal, t0),
		unreadNotification(TypeAlert, PriorityHigh, t0),
	}

	assert.Equal(t, 2, CountUnread(visible, enabledMaster()))
}

func TestCountUnreadForcedZeroWhenDisabled(t *testing.T) {
	t.Parallel()

	t0 := at(10, 0)
	visible := []*Notification{
		unreadNotification(TypeInfo, PriorityNormal, t0.Add(-time.Hour)),
	}

	// A muted user must never see a nonzero badge, even with unread
	// pre-cutoff notifications still visible
	assert.Equal(t, 0, CountUnread(visible, disabledMaster(t0)))
}

func TestScenarioAllVisibleNoSchedule(t *testing.T) {
	t.Parallel()

	// 5 notifications (3 unread, 2 read), enabled, no schedule
	t0 := at(10, 0)
	raw := []*Notification{
		unreadNotification(TypeInfo, PriorityNormal, t0),
		unreadNotification(TypeMessageReceived, PriorityNormal, t0),
		unreadNotification(TypeAlert, PriorityHigh, t0),
		readNotification(TypeInfo, PriorityLow, t0),
		readNotification(TypeSystemUpdate, PriorityLow, t0),
	}
	master := enabledMaster()

	visible := Visible(raw, master, FilterOptions{}, t0.Add(time.Hour))
	assert.Len(t, visible, 5)
	assert.Equal(t, 3, CountUnread(visible, master))
}

func TestScenarioDisabledWithCutoff(t *testing.T) {
	t.Parallel()

	// Disabled at t0; 2 pre-cutoff (1 unread), 3 post-cutoff
	t0 := at(10, 0)
	raw := []*Notification{
		unreadNotification(TypeInfo, PriorityNormal, t0.Add(-2*time.Hour)),
		readNotification(TypeAlert, PriorityNormal, t0.Add(-time.Hour)),
		unreadNotification(TypeInfo, PriorityNormal, t0.Add(time.Minute)),
		unreadNotification(TypeEmergency, PriorityCritical, t0.Add(time.Hour)),
		unreadNotification(TypeMessageReceived, PriorityNormal, t0.Add(2*time.Hour)),
	}
	master := disabledMaster(t0)

	visible := Visible(raw, master, FilterOptions{}, t0.Add(3*time.Hour))
	assert.Len(t, visible, 2)
	assert.Equal(t, 0, CountUnread(visible, master), "disabled master forces a zero badge")
}

func TestNotificationIsCritical(t *testing.T) {
	t.Parallel()

	assert.True(t, NewNotification(TypeCrisisAlert, PriorityLow, "", "").IsCritical())
	assert.True(t, NewNotification(TypeEmergency, PriorityLow, "", "").IsCritical())
	assert.True(t, NewNotification(TypeInfo, PriorityHigh, "", "").IsCritical())
	assert.True(t, NewNotification(TypeInfo, PriorityCritical, "", "").IsCritical())
	assert.False(t, NewNotification(TypeInfo, PriorityNormal, "", "").IsCritical())
	assert.False(t, NewNotification(TypeMessageReceived, PriorityLow, "", "").IsCritical())
}

func TestMarkAsReadSetsReadAtExactlyOnce(t *testing.T) {
	t.Parallel()

	n := NewNotification(TypeInfo, PriorityNormal, "t", "c")
	require.False(t, n.IsRead())

	first := at(10, 0)
	n.MarkAsRead(first)
	require.True(t, n.IsRead())
	assert.Equal(t, StatusRead, n.Status)
	assert.Equal(t, first, *n.ReadAt)

	// Marking again never moves the timestamp
	n.MarkAsRead(at(11, 0))
	assert.Equal(t, first, *n.ReadAt)
}
