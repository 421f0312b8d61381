package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/sakina/internal/model"
)

//go:embed default.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

// Item is one recitation entry with its required repeat count.
type Item struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Text      string `yaml:"text"`
	Reference string `yaml:"reference"`
	Count     int    `yaml:"count"`
}

// Provider is the read-only catalog consumed by the progress aggregator and
// the counters.
type Provider interface {
	Items(section model.Section) []Item
}

type Catalog struct {
	Morning []Item `yaml:"morning"`
	Evening []Item `yaml:"evening"`
	Relief  []Item `yaml:"relief"`
}

// Items returns a copy of the ordered items for a section. The tasbih
// section is a fixed counter and has none.
func (c *Catalog) Items(section model.Section) []Item {
	var src []Item
	switch section {
	case model.SectionMorning:
		src = c.Morning
	case model.SectionEvening:
		src = c.Evening
	case model.SectionRelief:
		src = c.Relief
	default:
		return nil
	}
	out := make([]Item, len(src))
	copy(out, src)
	return out
}

// Lookup finds an item by id within a section.
func (c *Catalog) Lookup(section model.Section, id string) (Item, bool) {
	for _, item := range c.Items(section) {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file, falling back to the embedded one for an empty path.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	for _, section := range []model.Section{model.SectionMorning, model.SectionEvening, model.SectionRelief} {
		seen := make(map[string]bool)
		for i, item := range c.Items(section) {
			id := strings.TrimSpace(item.ID)
			if id == "" {
				return fmt.Errorf("%w: %s item %d has no id", ErrInvalidCatalog, section, i)
			}
			if seen[id] {
				return fmt.Errorf("%w: %s item %q is duplicated", ErrInvalidCatalog, section, id)
			}
			seen[id] = true
			if item.Count < 1 {
				return fmt.Errorf("%w: %s item %q needs count >= 1", ErrInvalidCatalog, section, id)
			}
		}
	}
	return nil
}
