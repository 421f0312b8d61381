package progress

import (
	"testing"
	"time"

	"github.com/sandeepkv93/sakina/internal/clock"
	"github.com/sandeepkv93/sakina/internal/model"
)

func TestWatcherEmitsRolloverAcrossMidnight(t *testing.T) {
	kv := newFlakyKV()
	clk := clock.NewFixed(time.Date(2026, 2, 9, 23, 59, 0, 0, time.UTC))
	store := NewStore(kv, clk)
	if _, err := store.UpdateTasbihCount(9); err != nil {
		t.Fatalf("update tasbih: %v", err)
	}

	watcher := NewWatcher(store, 5*time.Millisecond)
	watcher.Start()
	defer watcher.Stop()

	clk.Set(time.Date(2026, 2, 10, 0, 0, 30, 0, time.UTC))

	select {
	case ev := <-watcher.C():
		if ev.Date != "2026-02-10" {
			t.Fatalf("unexpected rollover date %q", ev.Date)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for rollover event")
	}

	if got := store.TasbihProgress().Count; got != 0 {
		t.Fatalf("expected tasbih reset after rollover, got %d", got)
	}
	if got := kv.persisted(t); got.Date != "2026-02-10" {
		t.Fatalf("expected persisted record for new day, got %q", got.Date)
	}
}

func TestWatcherQuietWithinSameDay(t *testing.T) {
	store := NewStore(newFlakyKV(), clock.NewFixed(time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)))
	if _, err := store.IncrementItem(model.SectionMorning, "a", 3); err != nil {
		t.Fatalf("increment: %v", err)
	}

	watcher := NewWatcher(store, 5*time.Millisecond)
	watcher.Start()

	select {
	case ev := <-watcher.C():
		t.Fatalf("unexpected rollover event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
	watcher.Stop()

	if got := store.GetItemProgress(model.SectionMorning, "a").Current; got != 1 {
		t.Fatalf("expected progress kept, got %d", got)
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	watcher := NewWatcher(NewStore(newFlakyKV(), clock.Local{}), 0)
	watcher.Stop()
	watcher.Start()
	watcher.Stop()

	started := NewWatcher(NewStore(newFlakyKV(), clock.Local{}), time.Millisecond)
	started.Start()
	started.Stop()
	started.Stop()
	if _, ok := <-started.C(); ok {
		t.Fatal("expected closed channel after stop")
	}
}
