package tasks

import "time"

// DefaultMaxVisible matches the number of stacked notifications shown at once.
const DefaultMaxVisible = 3

// NotificationQueue holds the visible notifications, newest last.
//
// It is owned by the UI loop and not safe for concurrent use.
type NotificationQueue struct {
	max   int
	items []Notification
}

// NewNotificationQueue creates a queue showing at most max notifications.
func NewNotificationQueue(max int) *NotificationQueue {
	if max <= 0 {
		max = DefaultMaxVisible
	}
	return &NotificationQueue{max: max}
}

// Push appends n, evicting the oldest notification when the queue is full.
func (q *NotificationQueue) Push(n Notification) {
	q.items = append(q.items, n)
	if over := len(q.items) - q.max; over > 0 {
		q.items = append([]Notification(nil), q.items[over:]...)
	}
}

// Expire drops notifications whose TTL has passed and returns how many were removed.
func (q *NotificationQueue) Expire(now time.Time) int {
	kept := q.items[:0]
	for _, n := range q.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	removed := len(q.items) - len(kept)
	q.items = kept
	return removed
}

// Dismiss removes the notification with id.
func (q *NotificationQueue) Dismiss(id string) {
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Items returns the visible notifications, oldest first.
func (q *NotificationQueue) Items() []Notification {
	return append([]Notification(nil), q.items...)
}

func (q *NotificationQueue) Len() int { return len(q.items) }

// NextExpiry returns the earliest time a visible notification expires.
func (q *NotificationQueue) NextExpiry() (time.Time, bool) {
	var next time.Time
	for _, n := range q.items {
		at := n.CreatedAt.Add(n.TTL)
		if next.IsZero() || at.Before(next) {
			next = at
		}
	}
	return next, !next.IsZero()
}
