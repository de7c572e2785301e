package units

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// buildOptions configure a Catalog.
type buildOptions struct {
	caseInsensitive bool
	locales         LocaleTable
}

// Option configures Build.
type Option func(*Catalog)

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithCaseInsensitiveSearch controls whether label indexes also store
// upper-cased keys (default true).
func WithCaseInsensitiveSearch(enabled bool) Option {
	return func(c *Catalog) { c.opts.caseInsensitive = enabled }
}

// WithLocales replaces the locale table used for composed labels.
func WithLocales(t LocaleTable) Option {
	return func(c *Catalog) { c.opts.locales = t }
}

// definitionSet is the unconnected input of one connect pass.
type definitionSet struct {
	prefixes []PrefixDefinition
	units    []UnitDefinition
	kinds    []QuantityKindDefinition
	systems  []SystemOfUnitsDefinition
}

// Builder collects definitions from a loader. It is not safe for concurrent use.
type Builder struct {
	defs definitionSet
	ids  map[string]string // id -> entity kind
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{ids: make(map[string]string)}
}

func (b *Builder) claim(id, kind string) error {
	if id == "" {
		return &ArgumentError{Arg: kind + " id", Reason: "empty"}
	}
	if prev, ok := b.ids[id]; ok {
		return &ArgumentError{Arg: kind + " id", Reason: fmt.Sprintf("%q already defined as %s", id, prev)}
	}
	b.ids[id] = kind
	return nil
}

// AddPrefix queues a prefix definition.
func (b *Builder) AddPrefix(def PrefixDefinition) error {
	if err := b.claim(def.ID, "prefix"); err != nil {
		return err
	}
	b.defs.prefixes = append(b.defs.prefixes, def)
	return nil
}

// AddUnit queues a unit definition.
func (b *Builder) AddUnit(def UnitDefinition) error {
	if err := b.claim(def.ID, "unit"); err != nil {
		return err
	}
	b.defs.units = append(b.defs.units, def)
	return nil
}

// AddQuantityKind queues a quantity kind definition.
func (b *Builder) AddQuantityKind(def QuantityKindDefinition) error {
	if err := b.claim(def.ID, "quantity kind"); err != nil {
		return err
	}
	b.defs.kinds = append(b.defs.kinds, def)
	return nil
}

// AddSystemOfUnits queues a system of units definition.
func (b *Builder) AddSystemOfUnits(def SystemOfUnitsDefinition) error {
	if err := b.claim(def.ID, "system of units"); err != nil {
		return err
	}
	b.defs.systems = append(b.defs.systems, def)
	return nil
}

// Build runs the connect pass and returns the frozen Catalog. Dangling
// references fail with NotFoundError and cycles with InternalConsistencyError.
func (b *Builder) Build(opts ...Option) (*Catalog, error) {
	c := &Catalog{opts: buildOptions{caseInsensitive: true, locales: DefaultLocales()}}
	for _, opt := range opts {
		opt(c)
	}
	g, err := connect(newGraph(), b.defs, c.opts)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	c.g = g
	c.metrics.catalogSize(len(g.units))
	logrus.Infof("catalog built: %d prefixes, %d units, %d quantity kinds, %d systems of units",
		len(g.prefixes), len(g.units), len(g.quantityKinds), len(g.systems))
	return c, nil
}

// connector runs one connect pass over a generation derived from a base graph.
type connector struct {
	g        *graph
	opts     buildOptions
	owned    map[string]bool // entity IDs safe to mutate in this pass
	created  map[string]bool // entity IDs defined in this pass
	declared map[string]bool // units with an explicit dimension vector
}

// connect resolves defs against base and returns a new generation. base is
// never modified; entities it shares with the result are cloned before any
// change.
func connect(base *graph, defs definitionSet, opts buildOptions) (*graph, error) {
	if NewLabelIndexFunc == nil {
		return nil, errors.New("no label index registered; import github.com/dimkit/dimkit/units/search")
	}
	cn := &connector{
		g:        base.derive(),
		opts:     opts,
		owned:    make(map[string]bool),
		created:  make(map[string]bool),
		declared: make(map[string]bool),
	}
	if err := cn.create(defs); err != nil {
		return nil, err
	}
	if err := cn.resolve(defs); err != nil {
		return nil, err
	}
	order, err := dependencyOrder(cn.g)
	if err != nil {
		return nil, err
	}
	for _, id := range order {
		if cn.created[id] {
			if err := cn.complete(id); err != nil {
				return nil, err
			}
		}
	}
	cn.index()
	return cn.g, nil
}

func (cn *connector) exists(id string) bool {
	g := cn.g
	_, p := g.prefixes[id]
	_, u := g.units[id]
	_, q := g.quantityKinds[id]
	_, s := g.systems[id]
	return p || u || q || s
}

// create instantiates entities from scalar fields only.
func (cn *connector) create(defs definitionSet) error {
	g := cn.g
	for _, d := range defs.prefixes {
		if cn.exists(d.ID) {
			return &ArgumentError{Arg: "prefix id", Reason: fmt.Sprintf("%q already exists", d.ID)}
		}
		if d.Config.Multiplier == nil || d.Config.Multiplier.Sign() == 0 {
			return &ArgumentError{Arg: "prefix " + d.ID, Reason: "multiplier must be non-zero"}
		}
		g.prefixes[d.ID] = &Prefix{
			id:         d.ID,
			multiplier: copyRat(d.Config.Multiplier),
			symbol:     d.Config.Symbol,
			ucumCode:   d.Config.UCUMCode,
			labels:     slices.Clone(d.Labels),
		}
	}
	for _, d := range defs.units {
		if cn.exists(d.ID) {
			return &ArgumentError{Arg: "unit id", Reason: fmt.Sprintf("%q already exists", d.ID)}
		}
		if d.Config.Multiplier != nil && d.Config.Multiplier.Sign() == 0 {
			return &ArgumentError{Arg: "unit " + d.ID, Reason: "multiplier must be non-zero"}
		}
		u := &Unit{
			id:              d.ID,
			prefixID:        d.Config.PrefixID,
			scalingOfID:     d.Config.ScalingOfID,
			multiplier:      copyRat(d.Config.Multiplier),
			offset:          copyRat(d.Config.Offset),
			symbol:          d.Config.Symbol,
			ucumCode:        d.Config.UCUMCode,
			description:     d.Description,
			labels:          slices.Clone(d.Labels),
			quantityKindIDs: sortedSet(d.Config.QuantityKindIDs),
			factorUnits:     slices.Clone(d.Config.FactorUnits),
			exactMatchIDs:   sortedSet(d.ExactMatchIDs),
		}
		if d.Config.Dimension != "" {
			dv, err := ParseDimensionVector(d.Config.Dimension)
			if err != nil {
				return fmt.Errorf("unit %s: %w", d.ID, err)
			}
			u.dimension = dv
			cn.declared[d.ID] = true
		}
		g.units[d.ID] = u
		cn.owned[d.ID], cn.created[d.ID] = true, true
	}
	for _, d := range defs.kinds {
		if cn.exists(d.ID) {
			return &ArgumentError{Arg: "quantity kind id", Reason: fmt.Sprintf("%q already exists", d.ID)}
		}
		q := &QuantityKind{
			id:                d.ID,
			symbol:            d.Config.Symbol,
			description:       d.Description,
			labels:            slices.Clone(d.Labels),
			applicableUnitIDs: sortedSet(d.Config.ApplicableUnitIDs),
			broaderIDs:        sortedSet(d.Config.BroaderIDs),
		}
		if d.Config.Dimension != "" {
			dv, err := ParseDimensionVector(d.Config.Dimension)
			if err != nil {
				return fmt.Errorf("quantity kind %s: %w", d.ID, err)
			}
			q.dimension, q.hasDimension = dv, true
		}
		g.quantityKinds[d.ID] = q
		cn.owned[d.ID], cn.created[d.ID] = true, true
	}
	for _, d := range defs.systems {
		if cn.exists(d.ID) {
			return &ArgumentError{Arg: "system of units id", Reason: fmt.Sprintf("%q already exists", d.ID)}
		}
		g.systems[d.ID] = &SystemOfUnits{
			id:           d.ID,
			abbreviation: d.Config.Abbreviation,
			labels:       slices.Clone(d.Labels),
			unitIDs:      sortedSet(d.Config.UnitIDs),
			baseUnitIDs:  sortedSet(d.Config.BaseUnitIDs),
		}
	}
	return nil
}

// mutableUnit returns a unit that may be modified in this pass, cloning a
// shared one first.
func (cn *connector) mutableUnit(id string) *Unit {
	if !cn.owned[id] {
		cn.g.units[id] = cn.g.units[id].clone()
		cn.owned[id] = true
	}
	return cn.g.units[id]
}

func (cn *connector) mutableKind(id string) *QuantityKind {
	if !cn.owned[id] {
		cn.g.quantityKinds[id] = cn.g.quantityKinds[id].clone()
		cn.owned[id] = true
	}
	return cn.g.quantityKinds[id]
}

// resolve checks every ID reference of the new definitions and links the
// unit <-> quantity kind and unit <-> system relations in both directions.
func (cn *connector) resolve(defs definitionSet) error {
	g := cn.g
	requireUnit := func(id, referrer string) error {
		if _, ok := g.units[id]; !ok {
			return &NotFoundError{Kind: "unit", ID: id, Referrer: referrer}
		}
		return nil
	}
	requireKind := func(id, referrer string) error {
		if _, ok := g.quantityKinds[id]; !ok {
			return &NotFoundError{Kind: "quantity kind", ID: id, Referrer: referrer}
		}
		return nil
	}

	for _, d := range defs.units {
		u := g.units[d.ID]
		if u.prefixID != "" {
			if _, ok := g.prefixes[u.prefixID]; !ok {
				return &NotFoundError{Kind: "prefix", ID: u.prefixID, Referrer: u.id}
			}
		}
		if u.scalingOfID != "" {
			if err := requireUnit(u.scalingOfID, u.id); err != nil {
				return err
			}
		}
		if (u.prefixID == "") != (u.scalingOfID == "") {
			logrus.Debugf("unit %s has prefix %q and scalingOf %q; treated as unscaled", u.id, u.prefixID, u.scalingOfID)
		}
		for _, f := range u.factorUnits {
			if err := requireUnit(f.UnitID, u.id); err != nil {
				return err
			}
		}
		for _, id := range u.exactMatchIDs {
			if err := requireUnit(id, u.id); err != nil {
				return err
			}
		}
		for _, k := range u.quantityKindIDs {
			if err := requireKind(k, u.id); err != nil {
				return err
			}
			kind := cn.mutableKind(k)
			kind.applicableUnitIDs = insertSorted(kind.applicableUnitIDs, u.id)
		}
	}
	for _, d := range defs.kinds {
		q := g.quantityKinds[d.ID]
		for _, b := range q.broaderIDs {
			if err := requireKind(b, q.id); err != nil {
				return err
			}
		}
		for _, id := range q.applicableUnitIDs {
			if err := requireUnit(id, q.id); err != nil {
				return err
			}
			u := cn.mutableUnit(id)
			u.quantityKindIDs = insertSorted(u.quantityKindIDs, q.id)
		}
	}
	for _, d := range defs.systems {
		s := g.systems[d.ID]
		for _, id := range s.baseUnitIDs {
			if err := requireUnit(id, s.id); err != nil {
				return err
			}
			s.unitIDs = insertSorted(s.unitIDs, id)
		}
		for _, id := range s.unitIDs {
			if err := requireUnit(id, s.id); err != nil {
				return err
			}
			u := cn.mutableUnit(id)
			u.systemIDs = insertSorted(u.systemIDs, s.id)
		}
	}
	return nil
}

// dependencyOrder returns unit and quantity kind IDs ordered so that every
// entity follows the entities it depends on (scalingOf base, factor units,
// broader kinds). A cycle is reported as InternalConsistencyError.
func dependencyOrder(g *graph) ([]string, error) {
	ids := make([]string, 0, len(g.units)+len(g.quantityKinds))
	for id := range g.units {
		ids = append(ids, id)
	}
	for id := range g.quantityKinds {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	node := make(map[string]int64, len(ids))
	dg := simple.NewDirectedGraph()
	for i, id := range ids {
		node[id] = int64(i)
		dg.AddNode(simple.Node(i))
	}
	edge := func(from, to string) error {
		if from == to {
			return &InternalConsistencyError{Path: []string{from, to}, Reason: "entity refers to itself"}
		}
		dg.SetEdge(simple.Edge{F: simple.Node(node[from]), T: simple.Node(node[to])})
		return nil
	}
	for _, id := range ids {
		if u, ok := g.units[id]; ok {
			if u.scalingOfID != "" {
				if err := edge(id, u.scalingOfID); err != nil {
					return nil, err
				}
			}
			for _, f := range u.factorUnits {
				if err := edge(id, f.UnitID); err != nil {
					return nil, err
				}
			}
			continue
		}
		for _, b := range g.quantityKinds[id].broaderIDs {
			if err := edge(id, b); err != nil {
				return nil, err
			}
		}
	}

	sorted, err := topo.Sort(dg)
	if err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) && len(cycles) > 0 {
			path := make([]string, 0, len(cycles[0]))
			for _, n := range cycles[0] {
				path = append(path, ids[n.ID()])
			}
			slices.Sort(path)
			return nil, &InternalConsistencyError{Path: path, Reason: "cycle in unit graph"}
		}
		return nil, &InternalConsistencyError{Reason: err.Error()}
	}
	// topo.Sort puts edge sources first; dependencies must come first here.
	order := make([]string, len(sorted))
	for i, n := range sorted {
		order[len(sorted)-1-i] = ids[n.ID()]
	}
	return order, nil
}

// complete derives the fields a new entity left unspecified from entities it
// depends on, which are complete by the time it is visited.
func (cn *connector) complete(id string) error {
	u, ok := cn.g.units[id]
	if !ok {
		return nil
	}
	g := cn.g
	var base *Unit
	var prefix *Prefix
	if u.IsScaled() {
		base, prefix = g.units[u.scalingOfID], g.prefixes[u.prefixID]
	}

	var derived DimensionVector
	var derivedOK bool
	if u.IsDerived() {
		dv, err := g.dimensionOf(u.factorUnits)
		if err != nil {
			return err
		}
		derived, derivedOK = dv, true
	}
	switch {
	case cn.declared[id]:
		if derivedOK && derived != u.dimension {
			logrus.Warnf("unit %s declares dimension %s but its factor units give %s", u.id, u.dimension, derived)
		}
	case base != nil:
		u.dimension = base.dimension
	case derivedOK:
		u.dimension = derived
	default:
		return &ArgumentError{Arg: "unit " + u.id, Reason: "no dimension vector and no structure to derive one from"}
	}

	if u.multiplier == nil {
		switch {
		case base != nil && base.multiplier != nil:
			u.multiplier = new(big.Rat).Mul(base.multiplier, prefix.multiplier)
		case u.IsDerived():
			if m, err := g.productMultiplier(u.factorUnits); err == nil {
				u.multiplier = m
			}
		}
		if u.multiplier != nil {
			logrus.Debugf("unit %s: derived multiplier %s", u.id, FormatRat(u.multiplier))
		}
	}
	if u.symbol == "" {
		switch {
		case base != nil && prefix.symbol != "" && base.symbol != "":
			u.symbol = prefix.symbol + base.symbol
		case u.IsDerived():
			u.symbol, _ = g.symbol(u.factorUnits)
		}
	}
	if u.ucumCode == "" {
		switch {
		case base != nil && prefix.ucumCode != "" && base.ucumCode != "":
			u.ucumCode = prefix.ucumCode + base.ucumCode
		case u.IsDerived():
			u.ucumCode, _ = g.ucumCode(u.factorUnits)
		}
	}
	if len(u.labels) == 0 && u.IsDerived() {
		u.labels = g.labels(u.factorUnits, cn.opts.locales)
	}
	return nil
}

// index rebuilds the scaledBy relation and the label indexes over the whole
// generation.
func (cn *connector) index() {
	g := cn.g
	for _, u := range sortedValues(g.units) {
		if u.IsScaled() {
			g.scaledBy[u.scalingOfID] = append(g.scaledBy[u.scalingOfID], u.id)
		}
	}
	g.unitLabels = NewLabelIndexFunc(cn.opts.caseInsensitive)
	for _, u := range g.units {
		putKeys(g.unitLabels, u.id, u.labels, u.symbol)
	}
	g.kindLabels = NewLabelIndexFunc(cn.opts.caseInsensitive)
	for _, q := range g.quantityKinds {
		putKeys(g.kindLabels, q.id, q.labels, q.symbol)
	}
}

func putKeys(idx LabelIndex, id string, labels []LangString, symbol string) {
	idx.Put(LocalName(id), id)
	for _, l := range labels {
		idx.Put(l.Text, id)
	}
	if symbol != "" {
		idx.Put(symbol, id)
	}
}
