// Parses the YAML watch list consumed by the livetable demo binary.

// Package watchcfg loads a YAML watch list: a change-detection key plus a
// set of named views, each compiled into a filter/sort/slice query over the
// dynamic records produced by the feed package.
package watchcfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/maruel/livetable"
	"github.com/maruel/livetable/internal/feed"
	"gopkg.in/yaml.v3"
)

// View is one named query over the watched table.
type View struct {
	Name string `yaml:"name"`
	// Where keeps records whose fields equal every listed value.
	Where map[string]any `yaml:"where"`
	// OrderBy names the field to sort on; Order is "asc" (default) or
	// "desc".
	OrderBy string `yaml:"order_by"`
	Order   string `yaml:"order"`
	Offset  int    `yaml:"offset"`
	Limit   int    `yaml:"limit"`
}

// Config is the demo watch list.
type Config struct {
	// Key names the record field used for change detection. Empty falls
	// back to deep per-record comparison.
	Key   string `yaml:"key"`
	Views []View `yaml:"views"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks that the watch list is well-formed.
func (c *Config) Validate() error {
	if len(c.Views) == 0 {
		return errors.New("at least one view is required")
	}
	seen := make(map[string]struct{}, len(c.Views))
	for i, v := range c.Views {
		if v.Name == "" {
			return fmt.Errorf("view %d: name is required", i)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("view %q: duplicate name", v.Name)
		}
		seen[v.Name] = struct{}{}
		if v.Offset < 0 {
			return fmt.Errorf("view %q: offset must not be negative", v.Name)
		}
		if v.Limit < 0 {
			return fmt.Errorf("view %q: limit must not be negative", v.Name)
		}
		switch v.Order {
		case "", "asc", "desc":
		default:
			return fmt.Errorf("view %q: order must be asc or desc, got %q", v.Name, v.Order)
		}
		if v.Order != "" && v.OrderBy == "" {
			return fmt.Errorf("view %q: order requires order_by", v.Name)
		}
	}
	return nil
}

// Policy returns the equality policy implied by the config: key-field
// comparison when a key is set, deep per-record comparison otherwise. Key
// fields must hold scalar values.
func (c *Config) Policy() livetable.Policy[feed.Record] {
	if c.Key == "" {
		return livetable.ByFunc(func(a, b feed.Record) bool { return reflect.DeepEqual(a, b) })
	}
	key := c.Key
	return livetable.ByFunc(func(a, b feed.Record) bool { return valuesEqual(a[key], b[key]) })
}

// Query compiles the view into a query function.
func (v *View) Query() livetable.Query[feed.Record] {
	var where livetable.Predicate[feed.Record]
	for field, want := range v.Where {
		where = livetable.And(where, func(r feed.Record) bool { return valuesEqual(r[field], want) })
	}
	var order func(a, b feed.Record) int
	if v.OrderBy != "" {
		field := v.OrderBy
		desc := v.Order == "desc"
		order = func(a, b feed.Record) int {
			c := compareValues(a[field], b[field])
			if desc {
				return -c
			}
			return c
		}
	}
	return livetable.Spec[feed.Record]{Where: where, Order: order, Offset: v.Offset, Limit: v.Limit}.Build()
}

// Queries compiles every view, keyed by name.
func (c *Config) Queries() map[string]livetable.Query[feed.Record] {
	out := make(map[string]livetable.Query[feed.Record], len(c.Views))
	for i := range c.Views {
		out[c.Views[i].Name] = c.Views[i].Query()
	}
	return out
}

// valuesEqual compares two dynamic values, coercing numbers so YAML ints
// match JSON float64s.
func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two dynamic values: numbers numerically, strings
// lexicographically, everything else ties.
func compareValues(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return cmp.Compare(sa, sb)
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
