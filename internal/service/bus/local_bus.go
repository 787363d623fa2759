package bus

import (
	"context"
	"sync"

	"ecocare/internal/dto"
	"ecocare/internal/logger"
)

const localSubscriberBuffer = 64

// LocalBus delivers events to subscribers in the same process.
type LocalBus struct {
	log *logger.Logger

	mu     sync.RWMutex
	subs   map[int]chan dto.DetectionEvent
	nextID int
	closed bool
	done   chan struct{}
}

func NewLocalBus(log *logger.Logger) *LocalBus {
	return &LocalBus{
		log:  log,
		subs: make(map[int]chan dto.DetectionEvent),
		done: make(chan struct{}),
	}
}

// Publish hands the event to every subscriber. A subscriber that is not
// keeping up misses the event.
func (b *LocalBus) Publish(_ context.Context, event dto.DetectionEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.log.Warn().Int("subscriber", id).Int64("detection", event.ID).Msg("local bus subscriber full, event dropped")
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, onMsg func(dto.DetectionEvent)) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	id := b.nextID
	b.nextID++
	ch := make(chan dto.DetectionEvent, localSubscriberBuffer)
	b.subs[id] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return ErrClosed
		case event := <-ch:
			onMsg(event)
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *LocalBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
	return nil
}
