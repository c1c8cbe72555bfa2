package notification

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// DeliveryMethod is how a notification category reaches the user. The policy
// engine stores it and submits it on update but does not enforce it; actual
// delivery is the backend's concern.
type DeliveryMethod string

const (
	// DeliveryPush is an OS push notification
	DeliveryPush DeliveryMethod = "push"
	// DeliveryEmail delivers by email
	DeliveryEmail DeliveryMethod = "email"
	// DeliverySMS delivers by text message
	DeliverySMS DeliveryMethod = "sms"
	// DeliveryInApp delivers inside the app only
	DeliveryInApp DeliveryMethod = "in_app"
)

var knownDeliveryMethods = map[DeliveryMethod]struct{}{
	DeliveryPush: {}, DeliveryEmail: {}, DeliverySMS: {}, DeliveryInApp: {},
}

// ParseDeliveryMethod maps a backend delivery-method string onto a known
// DeliveryMethod, falling back to DeliveryPush for unrecognized values.
func ParseDeliveryMethod(raw string) (DeliveryMethod, bool) {
	m := DeliveryMethod(raw)
	if _, ok := knownDeliveryMethods[m]; ok {
		return m, true
	}
	return DeliveryPush, false
}

// Preference is one user's delivery preference for a notification category.
// The preference governing TypeCheckInReminder is the master preference: its
// Enabled flag is the global on/off switch and its Schedule carries the
// quiet-hours window.
type Preference struct {
	// ID is the backend identifier; locally synthesized defaults get a
	// fresh UUID that is never persisted unless the user edits them
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	// Type is the category this preference governs
	Type Type `json:"notification_type"`
	// Enabled false on the master preference means quiet mode is globally
	// active
	Enabled        bool           `json:"is_enabled"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	// Schedule is only meaningful on the master preference
	Schedule *TimeWindow `json:"schedule,omitempty"`
	// DisabledAt records when Enabled last transitioned to false; it is the
	// anchor for the historical-cutoff rule and is cleared on re-enable
	DisabledAt *time.Time `json:"disabled_at,omitempty"`
}

// IsMaster reports whether this preference is the master entry.
func (p *Preference) IsMaster() bool {
	return p.Type == TypeCheckInReminder
}

// SetEnabled flips the enabled flag, maintaining the DisabledAt invariant:
// non-nil iff disabled, recorded at the moment of disabling.
func (p *Preference) SetEnabled(enabled bool, now time.Time) {
	if p.Enabled == enabled {
		return
	}
	p.Enabled = enabled
	if enabled {
		p.DisabledAt = nil
	} else {
		disabledAt := now
		p.DisabledAt = &disabledAt
	}
}

// Clone returns an independent copy of the preference.
func (p *Preference) Clone() *Preference {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Schedule = p.Schedule.Clone()
	if p.DisabledAt != nil {
		disabledAt := *p.DisabledAt
		clone.DisabledAt = &disabledAt
	}
	return &clone
}

// defaultCategories are the categories every user is expected to have a
// preference for, in display order.
var defaultCategories = []Type{TypeCheckInReminder, TypeInfo, TypeSystemUpdate}

// NewDefaultPreference synthesizes the local default preference for a
// category: enabled, push delivery, no schedule. Synthesized entries are
// never persisted unless the user edits them.
func NewDefaultPreference(userID string, category Type) *Preference {
	return &Preference{
		ID:             uuid.New().String(),
		UserID:         userID,
		Type:           category,
		Enabled:        true,
		DeliveryMethod: DeliveryPush,
	}
}

// displayRank gives the fixed display priority: check-in first, info second,
// system third, everything else after.
func displayRank(t Type) int {
	switch t {
	case TypeCheckInReminder:
		return 0
	case TypeInfo:
		return 1
	case TypeSystemUpdate:
		return 2
	default:
		return 3
	}
}

// EnsureDefaults guarantees the always-expected categories are present,
// synthesizing a default entry for any missing one, and returns the result
// sorted in display order. Fetched entries keep their relative order within
// a rank.
func EnsureDefaults(userID string, fetched []*Preference) []*Preference {
	prefs := slices.Clone(fetched)

	for _, category := range defaultCategories {
		found := false
		for _, p := range prefs {
			if p.Type == category {
				found = true
				break
			}
		}
		if !found {
			prefs = append(prefs, NewDefaultPreference(userID, category))
		}
	}

	slices.SortStableFunc(prefs, func(a, b *Preference) int {
		return displayRank(a.Type) - displayRank(b.Type)
	})
	return prefs
}

// MasterOf returns the master preference from a preference set, nil if
// absent. Call EnsureDefaults first and a master always exists.
func MasterOf(prefs []*Preference) *Preference {
	for _, p := range prefs {
		if p.IsMaster() {
			return p
		}
	}
	return nil
}
