// Package notification implements the MindWell client's notification delivery
// and quiet-hours policy engine. It maintains a local best-effort cache of
// the user's notifications and preferences, decides which notifications are
// currently visible, derives the unread badge count, and suppresses
// non-critical alerts during a professional user's configured quiet hours.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell/mindwell-go/internal/errors"
)

// Type represents the category of a notification
type Type string

const (
	// TypeInfo is a routine informational notification
	TypeInfo Type = "info"
	// TypeAlert is a general alert
	TypeAlert Type = "alert"
	// TypeWarning indicates a condition needing attention
	TypeWarning Type = "warning"
	// TypeEmergency indicates an emergency that bypasses quiet hours
	TypeEmergency Type = "emergency"
	// TypeCheckInReminder reminds the user of a scheduled check-in; the
	// preference governing this category doubles as the master preference
	TypeCheckInReminder Type = "check_in_reminder"
	// TypeCrisisAlert is a crisis escalation that bypasses quiet hours
	TypeCrisisAlert Type = "crisis_alert"
	// TypeMessageReceived signals a new chat message
	TypeMessageReceived Type = "message_received"
	// TypeAssignmentDue signals a therapy assignment deadline
	TypeAssignmentDue Type = "assignment_due"
	// TypeAppointmentReminder reminds of an upcoming appointment
	TypeAppointmentReminder Type = "appointment_reminder"
	// TypeSystemUpdate is a platform/system announcement
	TypeSystemUpdate Type = "system_update"
)

// knownTypes is the closed set of recognized categories
var knownTypes = map[Type]struct{}{
	TypeInfo: {}, TypeAlert: {}, TypeWarning: {}, TypeEmergency: {},
	TypeCheckInReminder: {}, TypeCrisisAlert: {}, TypeMessageReceived: {},
	TypeAssignmentDue: {}, TypeAppointmentReminder: {}, TypeSystemUpdate: {},
}

// ParseType maps a backend category string onto a known Type. Unrecognized
// values fall back to TypeInfo; the second return reports whether the value
// was recognized so callers can log the substitution.
func ParseType(raw string) (Type, bool) {
	t := Type(raw)
	if _, ok := knownTypes[t]; ok {
		return t, true
	}
	return TypeInfo, false
}

// Priority represents the urgency level of a notification
type Priority string

const (
	// PriorityLow is background/informational urgency
	PriorityLow Priority = "low"
	// PriorityNormal is the default urgency
	PriorityNormal Priority = "normal"
	// PriorityHigh is important and bypasses quiet hours
	PriorityHigh Priority = "high"
	// PriorityCritical requires immediate attention and bypasses quiet hours
	PriorityCritical Priority = "critical"
)

// priorityRank orders priorities from low to critical
var priorityRank = map[Priority]int{
	PriorityLow:      0,
	PriorityNormal:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

// AtLeast reports whether p is at least as urgent as other.
func (p Priority) AtLeast(other Priority) bool {
	return priorityRank[p] >= priorityRank[other]
}

// ParsePriority maps a backend priority string onto a known Priority,
// falling back to PriorityNormal for unrecognized values.
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(raw)
	if _, ok := priorityRank[p]; ok {
		return p, true
	}
	return PriorityNormal, false
}

// Status represents the delivery state of a notification
type Status string

const (
	// StatusPending means the backend created but not yet delivered it
	StatusPending Status = "pending"
	// StatusDelivered means the notification reached the client unread
	StatusDelivered Status = "delivered"
	// StatusRead means the user has read it; implied by a non-nil ReadAt
	StatusRead Status = "read"
)

// Sentinel errors for notification operations
var (
	ErrNotificationNotFound = errors.Newf("notification not found").Component("notification").Category(errors.CategoryNotFound).Build()
	ErrPreferenceNotFound   = errors.Newf("preference not found").Component("notification").Category(errors.CategoryNotFound).Build()
)

// Notification represents a single notification for one user
type Notification struct {
	// ID is the backend-assigned unique identifier
	ID string `json:"id"`
	// Type categorizes the notification
	Type Type `json:"type"`
	// Priority indicates the urgency level
	Priority Priority `json:"priority"`
	// Status tracks the delivery state; StatusRead iff ReadAt is non-nil
	Status Status `json:"status"`
	// Title is a short summary
	Title string `json:"title"`
	// Content provides the full text
	Content string `json:"content"`
	// CreatedAt is set by the backend at creation and never changes
	CreatedAt time.Time `json:"created_at"`
	// ReadAt is nil while unread; set exactly once by mark-as-read
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// NewNotification creates a notification with a fresh ID and timestamp.
// Production notifications come from the backend; this constructor serves
// locally synthesized entries and tests.
func NewNotification(notifType Type, priority Priority, title, content string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		Type:      notifType,
		Priority:  priority,
		Status:    StatusDelivered,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkAsRead records the read timestamp. ReadAt is set exactly once; marking
// an already-read notification is a no-op.
func (n *Notification) MarkAsRead(at time.Time) {
	if n.ReadAt != nil {
		return
	}
	readAt := at
	n.ReadAt = &readAt
	n.Status = StatusRead
}

// IsCritical reports whether the notification bypasses quiet-hours
// suppression: crisis/emergency categories and high/critical priorities are
// never suppressed.
func (n *Notification) IsCritical() bool {
	if n.Type == TypeCrisisAlert || n.Type == TypeEmergency {
		return true
	}
	return n.Priority.AtLeast(PriorityHigh)
}

// Clone creates a copy of the notification safe to hand to subscribers.
func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	clone := *n
	if n.ReadAt != nil {
		readAt := *n.ReadAt
		clone.ReadAt = &readAt
	}
	return &clone
}

// FetchQuery carries the optional server-side filters for a notification
// fetch. The engine only ever reads the first page of recent notifications.
type FetchQuery struct {
	Status Status // optional, empty means all
	Type   Type   // optional, empty means all
	Page   int
	Size   int
}

// Transport is the remote notification API the engine consumes. Every call
// is a fallible network round trip.
type Transport interface {
	FetchNotifications(ctx context.Context, userID string, query FetchQuery) ([]*Notification, error)
	FetchUnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
}

// PreferenceTransport is the remote preference API the engine consumes.
type PreferenceTransport interface {
	FetchPreferences(ctx context.Context, userID string) ([]*Preference, error)
	UpdatePreferences(ctx context.Context, userID string, prefs []*Preference) ([]*Preference, error)
	ResetToDefaults(ctx context.Context, userID string) ([]*Preference, error)
}
