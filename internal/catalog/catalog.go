// Package catalog loads and serves the canonical metric catalog: the
// vendor-neutral registry every file column gets mapped onto. The catalog is
// versioned immutable reference data embedded at build time; a profile
// stamped with an incompatible catalog version must not be reinterpreted.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/units"
)

//go:embed data/canonical_metrics_grouped_v1.0.0.yaml
var dataFS embed.FS

const dataFile = "data/canonical_metrics_grouped_v1.0.0.yaml"

var (
	ErrUnknownMetric       = errors.New("unknown canonical metric")
	ErrIncompatibleCatalog = errors.New("incompatible catalog version")
)

// Metric is one canonical metric definition. Immutable after load.
type Metric struct {
	Key                 string            `yaml:"key"`
	Dimension           units.Dimension   `yaml:"dimension"`
	CanonicalUnit       string            `yaml:"canonicalUnit"`
	AllowedUnits        []string          `yaml:"allowedUnits"`
	Category            string            `yaml:"category"`
	ExcludeFromAverages bool              `yaml:"excludeFromAverages"`
	Precision           int               `yaml:"precision"`
	Labels              map[string]string `yaml:"labels"`
	Description         string            `yaml:"description"`
}

// Label returns the metric label for a locale, falling back to English and
// then to the key itself. Rendering paths must never crash on a locale miss.
func (m Metric) Label(locale string) string {
	if l, ok := m.Labels[locale]; ok && l != "" {
		return l
	}
	if l, ok := m.Labels["en"]; ok && l != "" {
		return l
	}
	return m.Key
}

// Allows reports whether unit is a permitted display unit for the metric.
func (m Metric) Allows(unit string) bool {
	for _, u := range m.AllowedUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// Group collapses unit variants of one concept for UI pickers.
type Group struct {
	Key     string            `yaml:"key"`
	Labels  map[string]string `yaml:"labels"`
	Metrics []string          `yaml:"metrics"`
}

type catalogFile struct {
	Version string   `yaml:"version"`
	Metrics []Metric `yaml:"metrics"`
	Groups  []Group  `yaml:"groups"`
}

// Catalog is the loaded, validated registry. Lookup-only after construction.
type Catalog struct {
	version string
	metrics map[string]Metric
	ordered []string
	groups  []Group
}

// Load parses and validates the embedded catalog. Any unknown dimension or
// unit in the file is a configuration error and must abort startup.
func Load() (*Catalog, error) {
	raw, err := dataFS.ReadFile(dataFile)
	if err != nil {
		return nil, fmt.Errorf("read catalog data: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog data: %w", err)
	}
	if f.Version == "" {
		return nil, errors.New("catalog data has no version")
	}

	c := &Catalog{
		version: f.Version,
		metrics: make(map[string]Metric, len(f.Metrics)),
		groups:  f.Groups,
	}
	for _, m := range f.Metrics {
		if m.Key == "" {
			return nil, errors.New("catalog metric with empty key")
		}
		if _, dup := c.metrics[m.Key]; dup {
			return nil, fmt.Errorf("duplicate catalog metric %q", m.Key)
		}
		if !units.Valid(m.Dimension) {
			return nil, fmt.Errorf("metric %q: %w: %q", m.Key, units.ErrUnknownDimension, m.Dimension)
		}
		for _, u := range m.AllowedUnits {
			if !units.Known(m.Dimension, u) {
				return nil, fmt.Errorf("metric %q: %w: %q", m.Key, units.ErrUnknownUnit, u)
			}
		}
		if !m.Allows(m.CanonicalUnit) {
			return nil, fmt.Errorf("metric %q: canonical unit %q not in allowed units", m.Key, m.CanonicalUnit)
		}
		if m.Precision == 0 {
			m.Precision = -1 // default rounding, see units.FormatValue
		}
		c.metrics[m.Key] = m
		c.ordered = append(c.ordered, m.Key)
	}
	for _, g := range f.Groups {
		for _, key := range g.Metrics {
			if _, ok := c.metrics[key]; !ok {
				return nil, fmt.Errorf("group %q references %w %q", g.Key, ErrUnknownMetric, key)
			}
		}
	}
	return c, nil
}

// Version returns the catalog's version tag.
func (c *Catalog) Version() string { return c.version }

// CompatibleWith reports whether a profile stamped with the given catalog
// version can be interpreted against this catalog. Same major = compatible.
func (c *Catalog) CompatibleWith(profileVersion string) bool {
	return major(c.version) != "" && major(c.version) == major(profileVersion)
}

func major(v string) string {
	if i := strings.IndexByte(v, '.'); i > 0 {
		return v[:i]
	}
	return v
}

// Metric looks up one canonical metric by key.
func (c *Catalog) Metric(key string) (Metric, error) {
	m, ok := c.metrics[key]
	if !ok {
		return Metric{}, fmt.Errorf("%w: %q", ErrUnknownMetric, key)
	}
	return m, nil
}

// AllowedUnits returns the permitted display units for a metric.
func (c *Catalog) AllowedUnits(key string) ([]string, error) {
	m, err := c.Metric(key)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(m.AllowedUnits))
	copy(out, m.AllowedUnits)
	return out, nil
}

// DisplayUnitOrDefault resolves a metric's canonical unit for rendering,
// falling back to meters on a lookup miss instead of failing the whole page.
func (c *Catalog) DisplayUnitOrDefault(key string) string {
	m, ok := c.metrics[key]
	if !ok {
		return units.DefaultDisplayUnit
	}
	return m.CanonicalUnit
}

// unitSuffix strips a trailing parenthesized unit from a label, e.g.
// "Time on field (min)" → "Time on field". The stripped label plus the
// dimension identifies the concept.
var unitSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// ConceptKey returns the concept identity of a metric label.
func ConceptKey(label string, d units.Dimension) string {
	return strings.TrimSpace(unitSuffix.ReplaceAllString(label, "")) + "|" + string(d)
}

// Choices returns the metric list for a mapping picker with unit variants of
// the same concept collapsed. When variants collide, the one whose canonical
// unit equals the dimension's canonical unit wins.
func (c *Catalog) Choices(locale string) []model.MetricChoice {
	byConcept := make(map[string]Metric)
	order := make([]string, 0, len(c.ordered))
	for _, key := range c.ordered {
		m := c.metrics[key]
		ck := ConceptKey(m.Label(locale), m.Dimension)
		existing, seen := byConcept[ck]
		if !seen {
			byConcept[ck] = m
			order = append(order, ck)
			continue
		}
		dimUnit, err := units.CanonicalUnit(m.Dimension)
		if err != nil {
			continue
		}
		if existing.CanonicalUnit != dimUnit && m.CanonicalUnit == dimUnit {
			byConcept[ck] = m
		}
	}

	choices := make([]model.MetricChoice, 0, len(order))
	for _, ck := range order {
		m := byConcept[ck]
		au := make([]string, len(m.AllowedUnits))
		copy(au, m.AllowedUnits)
		choices = append(choices, model.MetricChoice{
			Key:          m.Key,
			Label:        strings.TrimSpace(unitSuffix.ReplaceAllString(m.Label(locale), "")),
			Dimension:    string(m.Dimension),
			Category:     m.Category,
			AllowedUnits: au,
		})
	}
	return choices
}

// Keys returns all metric keys in catalog order. Handy for tests and seeds.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Groups returns the declared concept groups sorted by key.
func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
