// Package events fans wallet changes out to live subscribers (websocket tabs).
// Subscribers treat an event as "refetch", the database stays the source of truth.
package events

import (
	"sync"

	"github.com/shopspring/decimal"
)

const TypeWalletUpdated = "wallet.updated"

type WalletEvent struct {
	Type          string          `json:"type"`
	UserID        uint            `json:"user_id"`
	Balance       decimal.Decimal `json:"balance"`
	TransactionID uint            `json:"transaction_id"`
}

type subscriber struct {
	ch chan WalletEvent
}

// Bus is an in-process publish/subscribe hub keyed by user.
type Bus struct {
	mu     sync.RWMutex
	byUser map[uint]map[*subscriber]struct{}
}

func NewBus() *Bus {
	return &Bus{byUser: make(map[uint]map[*subscriber]struct{})}
}

// Subscribe registers a listener for userID. The returned cancel func must be
// called exactly once; it closes the channel.
func (b *Bus) Subscribe(userID uint, buffer int) (<-chan WalletEvent, func()) {
	s := &subscriber{ch: make(chan WalletEvent, buffer)}

	b.mu.Lock()
	if b.byUser[userID] == nil {
		b.byUser[userID] = make(map[*subscriber]struct{})
	}
	b.byUser[userID][s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if m := b.byUser[userID]; m != nil {
				delete(m, s)
				if len(m) == 0 {
					delete(b.byUser, userID)
				}
			}
			b.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// Publish never blocks: slow subscribers miss events and will catch up on refetch.
func (b *Bus) Publish(ev WalletEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.byUser[ev.UserID] {
		select {
		case s.ch <- ev:
		default:
		}
	}
}

func (b *Bus) SubscriberCount(userID uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byUser[userID])
}
