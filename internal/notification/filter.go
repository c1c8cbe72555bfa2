package notification

import "time"

// FilterOptions carries the caller-selected view parameters for the
// delivery filter.
type FilterOptions struct {
	// UnreadOnly retains only unread notifications (the "unread" tab)
	UnreadOnly bool
}

// Visible applies the delivery policy to the raw notification set and
// returns the notifications the user should currently see. It is pure and
// deterministic: given identical inputs, including now, the output is
// identical. Input order is preserved and the input slice is never mutated.
//
// The policy runs in three strictly ordered steps:
//
//  1. Historical cutoff: while the master preference is disabled, every
//     notification created after DisabledAt is hidden. Notifications that
//     existed before the user muted delivery remain visible.
//  2. Status sub-filter: the unread-only tab retains only unread survivors.
//  3. Quiet-hours bypass: only when the master preference is enabled and
//     carries a schedule. Inside the active window nothing more is
//     filtered; outside it only already-read or critical notifications
//     survive.
//
// Step 3 operates on the output of steps 1-2, so a notification hidden by
// the cutoff can never be resurrected by the critical bypass.
func Visible(raw []*Notification, master *Preference, opts FilterOptions, now time.Time) []*Notification {
	visible := make([]*Notification, 0, len(raw))

	cutoffActive := master != nil && !master.Enabled && master.DisabledAt != nil
	for _, n := range raw {
		if cutoffActive && n.CreatedAt.After(*master.DisabledAt) {
			continue
		}
		if opts.UnreadOnly && n.IsRead() {
			continue
		}
		visible = append(visible, n)
	}

	if master == nil || !master.Enabled || master.Schedule == nil {
		return visible
	}
	if master.Schedule.Contains(now) {
		// Inside the active window quiet hours do not apply: the window
		// represents the professional's available hours
		return visible
	}

	retained := visible[:0]
	for _, n := range visible {
		if n.IsRead() || n.IsCritical() {
			retained = append(retained, n)
		}
	}
	return retained
}

// CountUnread derives the unread badge count from the visible set. A
// disabled master preference forces zero: a muted user must never see a
// nonzero badge.
func CountUnread(visible []*Notification, master *Preference) int {
	if master != nil && !master.Enabled {
		return 0
	}
	count := 0
	for _, n := range visible {
		if !n.IsRead() {
			count++
		}
	}
	return count
}
