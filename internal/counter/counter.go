package counter

import (
	"github.com/sandeepkv93/sakina/internal/catalog"
	"github.com/sandeepkv93/sakina/internal/model"
	"github.com/sandeepkv93/sakina/internal/observability"
	"github.com/sandeepkv93/sakina/internal/progress"
)

type Outcome int

const (
	Advanced Outcome = iota + 1
	Completed
	AlreadyComplete
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "advanced"
	case Completed:
		return "completed"
	case AlreadyComplete:
		return "already_complete"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Current int
	Target  int
}

type State struct {
	Current  int
	Target   int
	Complete bool
}

// Completion describes the incomplete to complete transition of one counter.
type Completion struct {
	Section model.Section
	ItemID  string
	Target  int
}

// Signal receives completions. It runs synchronously inside Tap, after the
// store mutation.
type Signal func(Completion)

// backend adapts one store-backed value (an item or the tasbih count).
type backend interface {
	read() (current, target int)
	increment() (current, target int, err error)
	reset() error
}

// Counter turns taps into store mutations and fires its signal once per
// crossing of the target.
type Counter struct {
	section model.Section
	itemID  string
	backend backend
	signal  Signal
	metrics *observability.Metrics
}

type Option func(*Counter)

func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Counter) { c.metrics = metrics }
}

// NewItemCounter counts one catalog item. The catalog count is the target
// until the store has recorded its own for today.
func NewItemCounter(store *progress.Store, section model.Section, item catalog.Item, signal Signal, opts ...Option) *Counter {
	c := &Counter{
		section: section,
		itemID:  item.ID,
		backend: &itemBackend{store: store, section: section, id: item.ID, target: max(item.Count, 1)},
		signal:  signal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewTasbihCounter counts the fixed sequence of model.TasbihUnit taps shown
// on the tasbih screen.
func NewTasbihCounter(store *progress.Store, signal Signal, opts ...Option) *Counter {
	c := &Counter{
		section: model.SectionTasbih,
		backend: &tasbihBackend{store: store, target: model.TasbihUnit},
		signal:  signal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Counter) Section() model.Section { return c.section }

func (c *Counter) ItemID() string { return c.itemID }

func (c *Counter) Tap() (Result, error) {
	current, target := c.backend.read()
	if current >= target {
		c.metrics.RecordTap(string(c.section), AlreadyComplete.String())
		return Result{Outcome: AlreadyComplete, Current: current, Target: target}, nil
	}

	current, target, err := c.backend.increment()
	if err != nil {
		return Result{}, err
	}
	res := Result{Outcome: Advanced, Current: current, Target: target}
	if current >= target {
		res.Outcome = Completed
	}
	c.metrics.RecordTap(string(c.section), res.Outcome.String())
	if res.Outcome == Completed {
		c.metrics.RecordCompletion(string(c.section))
		if c.signal != nil {
			c.signal(Completion{Section: c.section, ItemID: c.itemID, Target: target})
		}
	}
	return res, nil
}

// Reset returns the counter to zero from any state.
func (c *Counter) Reset() error {
	return c.backend.reset()
}

func (c *Counter) State() State {
	current, target := c.backend.read()
	return State{Current: current, Target: target, Complete: current >= target}
}

func (c *Counter) Percentage() int {
	s := c.State()
	return min(progress.Percent(s.Current, s.Target), 100)
}

type itemBackend struct {
	store   *progress.Store
	section model.Section
	id      string
	target  int
}

func (b *itemBackend) read() (int, int) {
	rec := b.store.Load()
	sec, err := rec.ItemSection(b.section)
	if err != nil {
		return 0, b.target
	}
	item, ok := sec.Items[b.id]
	if !ok {
		return 0, b.target
	}
	return item.Current, item.Target
}

func (b *itemBackend) increment() (int, int, error) {
	item, err := b.store.IncrementItem(b.section, b.id, b.target)
	if err != nil {
		return 0, 0, err
	}
	return item.Current, item.Target, nil
}

func (b *itemBackend) reset() error {
	return b.store.ResetItem(b.section, b.id)
}

// tasbihBackend completes locally at its own unit. The stored section keeps
// its larger daily target, so a finished sequence leaves the stored
// Completed flag and CompletedAt untouched; only UpdateTasbihCount reaching
// that target sets them.
type tasbihBackend struct {
	store  *progress.Store
	target int
}

func (b *tasbihBackend) read() (int, int) {
	return b.store.TasbihProgress().Count, b.target
}

func (b *tasbihBackend) increment() (int, int, error) {
	count := min(b.store.TasbihProgress().Count+1, b.target)
	updated, err := b.store.UpdateTasbihCount(count)
	if err != nil {
		return 0, 0, err
	}
	return updated.Count, b.target, nil
}

func (b *tasbihBackend) reset() error {
	return b.store.ResetSection(model.SectionTasbih)
}
