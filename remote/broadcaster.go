// Package remote is the application-facing side of a payment terminal
// connection: the Listener interface, the events it receives and the
// Broadcaster that fans device events out to every registered Listener.
package remote

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kleeedolinux/remotepay.go/debug"
)

// Broadcaster delivers each notification to its listeners in registration
// order. A panicking listener is logged and skipped; the rest still get the
// notification.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    *zap.Logger
}

type BroadcasterOption func(*Broadcaster)

func WithLogger(l *zap.Logger) BroadcasterOption {
	return func(b *Broadcaster) {
		if l != nil {
			b.logger = l
		}
	}
}

func NewBroadcaster(opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		logger: debug.Logger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Push appends listeners and returns the new number of listeners. The same
// listener may be registered more than once.
func (b *Broadcaster) Push(listeners ...Listener) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = append(b.listeners, listeners...)
	return len(b.listeners)
}

// IndexOf returns the position of the first registration of l, or -1.
func (b *Broadcaster) IndexOf(l Listener) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, existing := range b.listeners {
		if existing == l {
			return i
		}
	}
	return -1
}

// Remove drops the first registration of l.
func (b *Broadcaster) Remove(l Listener) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Broadcaster) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = nil
}

func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.listeners)
}

// Listeners returns a copy of the registered listeners.
func (b *Broadcaster) Listeners() []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()

	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	return listeners
}

func (b *Broadcaster) broadcast(n Notification, deliver func(Listener)) {
	if deliver == nil || !n.Delivered() {
		b.logger.Debug("notification has no listener method", zap.Stringer("notification", n))
		return
	}

	for _, l := range b.Listeners() {
		b.deliver(n, l, deliver)
	}
}

func (b *Broadcaster) deliver(n Notification, l Listener, deliver func(Listener)) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("listener panic recovered",
				zap.Stringer("notification", n),
				zap.String("method", n.PublicName()),
				zap.Any("panic", r),
			)
		}
	}()

	deliver(l)
}
