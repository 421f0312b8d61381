package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/sakina/internal/clock"
)

const DefaultRolloverInterval = time.Minute

// RolloverEvent is emitted when the watcher replaced a stale record.
type RolloverEvent struct {
	Date clock.Date
}

// Watcher runs the daily rollover check on a timer so a session left open
// across midnight is reset without any user interaction.
type Watcher struct {
	store    *Store
	interval time.Duration

	mu      sync.Mutex
	out     chan RolloverEvent
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewWatcher(store *Store, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultRolloverInterval
	}
	return &Watcher{
		store:    store,
		interval: interval,
		out:      make(chan RolloverEvent, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (w *Watcher) C() <-chan RolloverEvent {
	return w.out
}

func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.loop()
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.stopped {
		w.stopped = true
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()
	<-w.doneCh
}

func (w *Watcher) Dropped() uint64 {
	return atomic.LoadUint64(&w.dropped)
}

func (w *Watcher) loop() {
	defer close(w.doneCh)
	defer close(w.out)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !w.store.CheckRollover() {
				continue
			}
			ev := RolloverEvent{Date: w.store.clock.Today()}
			select {
			case w.out <- ev:
			default:
				atomic.AddUint64(&w.dropped, 1)
			}
		case <-w.stopCh:
			return
		}
	}
}
