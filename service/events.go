package service

import (
	"sync"

	"github.com/google/uuid"
)

// PhoneEvents fans out collection-change notifications to live subscribers.
// Each subscriber owns one buffered channel; a notification means "your
// collection changed, re-read it" rather than carrying a payload, so slow
// consumers coalesce bursts instead of queueing them.
type PhoneEvents struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan struct{}]struct{}
}

// NewPhoneEvents creates a new event hub
func NewPhoneEvents() *PhoneEvents {
	return &PhoneEvents{
		subs: make(map[uuid.UUID]map[chan struct{}]struct{}),
	}
}

// Subscribe registers a listener for one user's collection changes.
// The returned cancel function must be called exactly once; it closes
// the channel and removes the subscription.
func (e *PhoneEvents) Subscribe(userID uuid.UUID) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	e.mu.Lock()
	if e.subs[userID] == nil {
		e.subs[userID] = make(map[chan struct{}]struct{})
	}
	e.subs[userID][ch] = struct{}{}
	e.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs[userID], ch)
			if len(e.subs[userID]) == 0 {
				delete(e.subs, userID)
			}
			e.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Notify signals every subscriber of the given user. Non-blocking: if a
// subscriber already has a pending notification the new one is dropped,
// which is safe because notifications carry no data.
func (e *PhoneEvents) Notify(userID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for ch := range e.subs[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
