package units

import (
	"maps"
	"slices"
	"sync"
)

// SearchFlags select the matching behavior of label searches. Flags combine
// independently: the zero value is a case-sensitive exact lookup.
type SearchFlags uint8

const (
	// MatchPrefix returns every key that starts with the query.
	MatchPrefix SearchFlags = 1 << iota
	// IgnoreCase compares keys case-insensitively.
	IgnoreCase
)

// LabelIndex maps label keys to sets of entity IDs.
type LabelIndex interface {
	Put(key, id string)
	Get(query string, flags SearchFlags) []string
}

// NewLabelIndexFunc creates the label index used by Build and Append.
// Registered by units/search's init(); Build fails if it is nil.
var NewLabelIndexFunc func(caseInsensitive bool) LabelIndex

// graph is one immutable generation of the catalog. Append builds a new
// generation and swaps it in; a published graph is never modified.
type graph struct {
	prefixes      map[string]*Prefix
	units         map[string]*Unit
	quantityKinds map[string]*QuantityKind
	systems       map[string]*SystemOfUnits

	// scaledBy maps a base unit to the units scaling it, sorted.
	scaledBy map[string][]string

	unitLabels LabelIndex
	kindLabels LabelIndex
}

func newGraph() *graph {
	return &graph{
		prefixes:      make(map[string]*Prefix),
		units:         make(map[string]*Unit),
		quantityKinds: make(map[string]*QuantityKind),
		systems:       make(map[string]*SystemOfUnits),
		scaledBy:      make(map[string][]string),
	}
}

// derive copies the entity maps so a new generation can be built on top of g.
// Entities are shared until touched; see connector.unit / connector.kind.
func (g *graph) derive() *graph {
	return &graph{
		prefixes:      maps.Clone(g.prefixes),
		units:         maps.Clone(g.units),
		quantityKinds: maps.Clone(g.quantityKinds),
		systems:       maps.Clone(g.systems),
		scaledBy:      make(map[string][]string),
	}
}

func (g *graph) unit(id string) (*Unit, error) {
	u, ok := g.units[id]
	if !ok {
		return nil, &NotFoundError{Kind: "unit", ID: id}
	}
	return u, nil
}

// Catalog is the connected, frozen entity graph. Create one with
// Builder.Build; the zero value is not usable.
type Catalog struct {
	mu      sync.RWMutex
	g       *graph
	opts    buildOptions
	metrics *Metrics
}

// current returns the published generation. The returned graph is immutable
// and may be used without holding the lock.
func (c *Catalog) current() *graph {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.g
}

// Unit looks up a unit by ID.
func (c *Catalog) Unit(id string) (*Unit, error) {
	return c.current().unit(id)
}

// MustUnit is Unit for IDs known to exist; it panics otherwise.
func (c *Catalog) MustUnit(id string) *Unit {
	u, err := c.Unit(id)
	if err != nil {
		panic(err)
	}
	return u
}

// Prefix looks up a prefix by ID.
func (c *Catalog) Prefix(id string) (*Prefix, error) {
	p, ok := c.current().prefixes[id]
	if !ok {
		return nil, &NotFoundError{Kind: "prefix", ID: id}
	}
	return p, nil
}

// QuantityKind looks up a quantity kind by ID.
func (c *Catalog) QuantityKind(id string) (*QuantityKind, error) {
	q, ok := c.current().quantityKinds[id]
	if !ok {
		return nil, &NotFoundError{Kind: "quantity kind", ID: id}
	}
	return q, nil
}

// SystemOfUnits looks up a system of units by ID.
func (c *Catalog) SystemOfUnits(id string) (*SystemOfUnits, error) {
	s, ok := c.current().systems[id]
	if !ok {
		return nil, &NotFoundError{Kind: "system of units", ID: id}
	}
	return s, nil
}

// Units returns every unit sorted by ID.
func (c *Catalog) Units() []*Unit {
	return sortedValues(c.current().units)
}

// Prefixes returns every prefix sorted by ID.
func (c *Catalog) Prefixes() []*Prefix {
	return sortedValues(c.current().prefixes)
}

// QuantityKinds returns every quantity kind sorted by ID.
func (c *Catalog) QuantityKinds() []*QuantityKind {
	return sortedValues(c.current().quantityKinds)
}

// SystemsOfUnits returns every system of units sorted by ID.
func (c *Catalog) SystemsOfUnits() []*SystemOfUnits {
	return sortedValues(c.current().systems)
}

// BaseUnit follows scalingOf links to the unscaled unit ("unit:KiloM" -> "unit:M").
func (c *Catalog) BaseUnit(id string) (*Unit, error) {
	g := c.current()
	u, err := g.unit(id)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for u.IsScaled() {
		if seen[u.id] {
			return nil, &InternalConsistencyError{Path: []string{u.id}, Reason: "scalingOf cycle"}
		}
		seen[u.id] = true
		u = g.units[u.scalingOfID]
	}
	return u, nil
}

// ScaledUnits returns the units defined as a prefix applied to base.
func (c *Catalog) ScaledUnits(base string) ([]*Unit, error) {
	g := c.current()
	if _, err := g.unit(base); err != nil {
		return nil, err
	}
	out := make([]*Unit, 0, len(g.scaledBy[base]))
	for _, id := range g.scaledBy[base] {
		out = append(out, g.units[id])
	}
	return out, nil
}

// QuantityKindsOf returns the quantity kinds a unit is applicable to.
func (c *Catalog) QuantityKindsOf(unitID string) ([]*QuantityKind, error) {
	g := c.current()
	u, err := g.unit(unitID)
	if err != nil {
		return nil, err
	}
	out := make([]*QuantityKind, 0, len(u.quantityKindIDs))
	for _, id := range u.quantityKindIDs {
		out = append(out, g.quantityKinds[id])
	}
	return out, nil
}

// BroaderQuantityKinds returns the transitive closure of broader kinds of id,
// sorted by ID and excluding id itself.
func (c *Catalog) BroaderQuantityKinds(id string) ([]*QuantityKind, error) {
	g := c.current()
	qk, ok := g.quantityKinds[id]
	if !ok {
		return nil, &NotFoundError{Kind: "quantity kind", ID: id}
	}
	seen := map[string]*QuantityKind{}
	stack := slices.Clone(qk.broaderIDs)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := seen[next]; done || next == id {
			continue
		}
		b := g.quantityKinds[next]
		seen[next] = b
		stack = append(stack, b.broaderIDs...)
	}
	return sortedValues(seen), nil
}

// UnitsOfSystem returns the member units of a system of units.
func (c *Catalog) UnitsOfSystem(systemID string) ([]*Unit, error) {
	g := c.current()
	s, ok := g.systems[systemID]
	if !ok {
		return nil, &NotFoundError{Kind: "system of units", ID: systemID}
	}
	out := make([]*Unit, 0, len(s.unitIDs))
	for _, id := range s.unitIDs {
		out = append(out, g.units[id])
	}
	return out, nil
}

// UnitsWithDimension returns every unit whose dimension vector equals dv.
func (c *Catalog) UnitsWithDimension(dv DimensionVector) []*Unit {
	var out []*Unit
	for _, u := range c.Units() {
		if u.dimension == dv {
			out = append(out, u)
		}
	}
	return out
}

// SearchUnits resolves units by label, symbol or local name.
func (c *Catalog) SearchUnits(query string, flags SearchFlags) []*Unit {
	g := c.current()
	c.metrics.searched("unit")
	ids := g.unitLabels.Get(query, flags)
	out := make([]*Unit, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.units[id])
	}
	return out
}

// SearchQuantityKinds resolves quantity kinds by label, symbol or local name.
func (c *Catalog) SearchQuantityKinds(query string, flags SearchFlags) []*QuantityKind {
	g := c.current()
	c.metrics.searched("quantity_kind")
	ids := g.kindLabels.Get(query, flags)
	out := make([]*QuantityKind, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.quantityKinds[id])
	}
	return out
}

type identified interface{ ID() string }

func sortedValues[T identified](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	return out
}
