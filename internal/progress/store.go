package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/sandeepkv93/sakina/internal/clock"
	"github.com/sandeepkv93/sakina/internal/model"
	"github.com/sandeepkv93/sakina/internal/observability"
	"github.com/sandeepkv93/sakina/internal/storage"
)

const DefaultKey = "sakina-progress"

var (
	ErrInvalidTarget  = errors.New("progress: target must be >= 1")
	ErrInvalidCount   = errors.New("progress: count must be >= 0")
	ErrInvalidItem    = errors.New("progress: item id is required")
	ErrInvalidSection = model.ErrInvalidSection
)

// Store owns today's ProgressRecord and is the only writer of its storage
// key. Every mutation is persisted before the call returns; storage failures
// are logged and absorbed, leaving the in-memory record authoritative.
type Store struct {
	mu      sync.Mutex
	kv      storage.KV
	clock   clock.Clock
	key     string
	logger  *slog.Logger
	metrics *observability.Metrics

	record  model.ProgressRecord
	loaded  bool
	healthy bool
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Store) { s.metrics = metrics }
}

func NewStore(kv storage.KV, clk clock.Clock, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		clock:   clk,
		key:     DefaultKey,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		healthy: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a copy of today's record, reading or reinitialising it as the
// rollover policy requires.
func (s *Store) Load() model.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()
	return s.record.Clone()
}

// Key is the storage key the record is persisted under.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) Snapshot() model.ProgressRecord {
	return s.Load()
}

func (s *Store) GetItemProgress(section model.Section, itemID string) model.ItemProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()
	sec, err := s.record.ItemSection(section)
	if err != nil {
		return model.ItemProgress{Current: 0, Target: 1}
	}
	item, ok := sec.Items[itemID]
	if !ok {
		return model.ItemProgress{Current: 0, Target: 1}
	}
	return item
}

func (s *Store) TasbihProgress() model.CounterSection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()
	return s.record.Sections.Tasbih.Clone()
}

// IncrementItem adds one to an item, saturating at its target. The target is
// recorded on first touch and kept for the rest of the day; later calls do
// not re-validate it.
func (s *Store) IncrementItem(section model.Section, itemID string, target int) (model.ItemProgress, error) {
	if target < 1 {
		return model.ItemProgress{}, fmt.Errorf("%w: got %d", ErrInvalidTarget, target)
	}
	if strings.TrimSpace(itemID) == "" {
		return model.ItemProgress{}, ErrInvalidItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()
	sec, err := s.record.ItemSection(section)
	if err != nil {
		return model.ItemProgress{}, err
	}

	item, ok := sec.Items[itemID]
	if !ok {
		item = model.ItemProgress{Current: 0, Target: target}
	}
	item.Current = min(item.Current+1, item.Target)
	sec.Items[itemID] = item
	sec.Settle(s.clock.Now())

	s.persist("increment_item")
	return item, nil
}

// ResetItem sets one item back to zero while keeping it recorded, so the
// section cannot become complete by the item disappearing.
func (s *Store) ResetItem(section model.Section, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()
	sec, err := s.record.ItemSection(section)
	if err != nil {
		return err
	}
	item, ok := sec.Items[itemID]
	if !ok {
		return nil
	}
	item.Current = 0
	sec.Items[itemID] = item
	sec.Settle(s.clock.Now())

	s.persist("reset_item")
	return nil
}

// UpdateTasbihCount stores count as-is. Bounding it by the target is the
// caller's job; completion is count >= target.
func (s *Store) UpdateTasbihCount(count int) (model.CounterSection, error) {
	if count < 0 {
		return model.CounterSection{}, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()
	tasbih := &s.record.Sections.Tasbih
	tasbih.Count = count
	tasbih.Settle(s.clock.Now())

	s.persist("update_tasbih")
	return tasbih.Clone(), nil
}

func (s *Store) ResetSection(section model.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()
	if err := s.record.ResetSection(section); err != nil {
		return err
	}
	s.persist("reset_section")
	return nil
}

func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = model.NewProgressRecord(s.clock.Today())
	s.loaded = true
	s.persist("reset_all")
}

// CheckRollover applies the daily rollover policy without any other effect
// and reports whether the record was replaced.
func (s *Store) CheckRollover() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.ensureFresh()
		return false
	}
	return s.rollIfStale()
}

// PersistenceHealthy is false once a write or the initial read failed and
// until the next write succeeds. The UI uses it to warn that progress may not survive a restart.
func (s *Store) PersistenceHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthy
}

func (s *Store) ensureFresh() {
	if !s.loaded {
		s.record = s.readPersisted()
		s.loaded = true
		return
	}
	s.rollIfStale()
}

func (s *Store) rollIfStale() bool {
	today := s.clock.Today()
	if s.record.Date == today {
		return false
	}
	s.logger.Info("daily rollover", "from", s.record.Date, "to", today)
	s.metrics.RecordRollover()
	s.record = model.NewProgressRecord(today)
	s.persist("rollover")
	return true
}

func (s *Store) readPersisted() model.ProgressRecord {
	today := s.clock.Today()
	raw, err := s.kv.ReadString(context.Background(), s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.Debug("no persisted progress", "key", s.key)
	case err != nil:
		// The durable record may still be good; keep it until a mutation
		// replaces it.
		s.logger.Warn("read progress failed", "key", s.key, "error", err)
		s.metrics.RecordStorageError("read")
		s.healthy = false
		return model.NewProgressRecord(today)
	default:
		rec, decodeErr := model.UnmarshalRecord([]byte(raw))
		if decodeErr != nil {
			s.logger.Warn("discarding malformed progress", "key", s.key, "error", decodeErr)
			break
		}
		if rec.Date == today {
			return rec
		}
		s.logger.Info("discarding stale progress", "date", rec.Date, "today", today)
		s.metrics.RecordRollover()
	}
	fresh := model.NewProgressRecord(today)
	s.record = fresh
	s.persist("initialize")
	return fresh
}

func (s *Store) persist(op string) {
	payload, err := s.record.Marshal()
	if err != nil {
		s.logger.Error("encode progress failed", "op", op, "error", err)
		s.metrics.RecordStorageError("encode")
		s.healthy = false
		return
	}
	if err := s.kv.WriteString(context.Background(), s.key, string(payload)); err != nil {
		s.logger.Warn("persist progress failed", "op", op, "error", err)
		s.metrics.RecordStorageError("write")
		s.healthy = false
		return
	}
	s.healthy = true
	s.metrics.RecordPersisted(s.clock.Now())
}
