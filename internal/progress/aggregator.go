package progress

import (
	"math"

	"github.com/sandeepkv93/sakina/internal/catalog"
	"github.com/sandeepkv93/sakina/internal/model"
)

// Summary is the raw store aggregate for one section.
type Summary struct {
	Current    int
	Target     int
	Percentage int
	Completed  bool
}

// Aggregator derives percentages from the store's counters. It never
// mutates or persists anything.
type Aggregator struct {
	store   *Store
	catalog catalog.Provider
}

func NewAggregator(store *Store, provider catalog.Provider) *Aggregator {
	return &Aggregator{store: store, catalog: provider}
}

// SectionProgress is the diagnostic, sum-based view. Its percentage can
// reach 100 without every item being done; use Completed for completion.
func (a *Aggregator) SectionProgress(section model.Section) Summary {
	rec := a.store.Load()
	if section.Kind() == model.KindCounter {
		t := rec.Sections.Tasbih
		return Summary{
			Current:    t.Count,
			Target:     t.Target,
			Percentage: Percent(t.Count, t.Target),
			Completed:  t.Completed,
		}
	}
	sec, err := rec.ItemSection(section)
	if err != nil {
		return Summary{}
	}
	var out Summary
	for _, item := range sec.Items {
		out.Current += item.Current
		out.Target += item.Target
	}
	out.Percentage = Percent(out.Current, out.Target)
	out.Completed = sec.Completed
	return out
}

// CatalogProgress is the share of catalog items individually complete,
// counting untouched items as zero.
func (a *Aggregator) CatalogProgress(section model.Section, items []catalog.Item) int {
	if len(items) == 0 {
		return 0
	}
	rec := a.store.Load()
	sec, err := rec.ItemSection(section)
	if err != nil {
		return 0
	}
	done := 0
	for _, item := range items {
		if sec.Items[item.ID].Current >= max(item.Count, 1) {
			done++
		}
	}
	return Percent(done, len(items))
}

// SectionPercentage is the headline figure for views: catalog-aware for
// item sections, count over stored target for tasbih. Always 0..100.
func (a *Aggregator) SectionPercentage(section model.Section) int {
	var pct int
	switch section.Kind() {
	case model.KindCounter:
		pct = a.SectionProgress(section).Percentage
	case model.KindItems:
		pct = a.CatalogProgress(section, a.catalogItems(section))
	}
	return min(max(pct, 0), 100)
}

func (a *Aggregator) IsSectionComplete(section model.Section) bool {
	return a.store.Load().IsCompleted(section)
}

// OverallPercentage is the rounded mean of every section's headline figure.
func (a *Aggregator) OverallPercentage() int {
	sections := model.AllSections()
	total := 0
	for _, s := range sections {
		total += a.SectionPercentage(s)
	}
	return Percent(total, 100*len(sections))
}

func (a *Aggregator) catalogItems(section model.Section) []catalog.Item {
	if a.catalog == nil {
		return nil
	}
	return a.catalog.Items(section)
}

// Percent is round(100*current/target), 0 when target is not positive.
func Percent(current, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(current) / float64(target)))
}
