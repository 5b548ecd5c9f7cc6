package signal

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// globalIDCounter is the source of unique subscription IDs.
var globalIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// subscription is a registered change callback.
type subscription struct {
	id uint64
	fn func()
}

// Signal is a reactive value container.
// It is safe for concurrent use.
type Signal[T any] struct {
	// value is the current signal value.
	value T

	// mu protects the value.
	mu sync.RWMutex

	// subs are the callbacks subscribed to this signal.
	subs []subscription

	// subMu protects the subs slice.
	subMu sync.RWMutex
}

// New creates a new signal with the given initial value.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the signal's value and notifies subscribers if the value changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !defaultEquals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Update atomically reads and updates the signal's value.
// The function receives the current value and returns the new value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !defaultEquals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Subscribe registers fn to run after every change.
// The returned function removes the subscription.
func (s *Signal[T]) Subscribe(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	sub := subscription{id: nextID(), fn: fn}
	s.subMu.Lock()
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(sub.id) })
	}
}

func (s *Signal[T]) unsubscribe(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for i, existing := range s.subs {
		if existing.id == id {
			// Order doesn't matter
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// notify calls all subscribers.
// Uses copy-before-notify so callbacks may subscribe or unsubscribe.
func (s *Signal[T]) notify() {
	s.subMu.RLock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.fn()
	}
}

// defaultEquals uses == for common comparable types and reflect.DeepEqual
// for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
