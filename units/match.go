package units

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dimkit/dimkit/units/trace"
)

// MaxSelectors bounds the selector list of a match query. The search explores
// a set of partial selections whose size grows with the selector count.
const MaxSelectors = 7

// FactorSelector requests one (unit, exponent) factor.
type FactorSelector struct {
	UnitID   string
	Exponent int
}

func (s FactorSelector) String() string {
	return s.UnitID + "^" + strconv.Itoa(s.Exponent)
}

// ParseFactorSelector parses "unit:M:2", "unit:M^2" or "unit:M" (exponent 1).
func ParseFactorSelector(s string) (FactorSelector, error) {
	if i := strings.LastIndexByte(s, ':'); i > 0 && !strings.Contains(s, "^") {
		if n, err := strconv.Atoi(s[i+1:]); err == nil {
			return FactorSelector{UnitID: s[:i], Exponent: n}, nil
		}
	}
	f, err := ParseFactorUnit(s)
	if err != nil {
		return FactorSelector{}, err
	}
	return FactorSelector(f), nil
}

// SearchMode selects the precision/recall trade-off of DerivedUnits.
type SearchMode int

const (
	// ModeUnset is the zero value and is rejected; callers must choose.
	ModeUnset SearchMode = iota
	// ModeExact requires the unit's literal factor list to equal the request.
	ModeExact
	// ModeBestMatch accepts units whose structure is explained by the request.
	ModeBestMatch
	// ModeAll accepts units whose recursive canonical expansion equals the
	// expansion of the request.
	ModeAll
)

var searchModeNames = map[SearchMode]string{
	ModeUnset:     "unset",
	ModeExact:     "exact",
	ModeBestMatch: "best_match",
	ModeAll:       "all",
}

// validSearchModes maps accepted mode strings.
var validSearchModes = map[string]SearchMode{
	"exact":      ModeExact,
	"best_match": ModeBestMatch,
	"best-match": ModeBestMatch,
	"all":        ModeAll,
}

func (m SearchMode) String() string {
	if s, ok := searchModeNames[m]; ok {
		return s
	}
	return "SearchMode(" + strconv.Itoa(int(m)) + ")"
}

// ParseSearchMode parses "exact", "best_match" (or "best-match") and "all".
func ParseSearchMode(s string) (SearchMode, error) {
	m, ok := validSearchModes[strings.ToLower(s)]
	if !ok {
		return ModeUnset, &ArgumentError{Arg: "search mode", Reason: fmt.Sprintf("unknown mode %q", s)}
	}
	return m, nil
}

// selection is one candidate partial assignment of selectors to positions in
// the unit under test. Selections are values: every step builds a new one.
type selection struct {
	remaining []FactorSelector // unconsumed, in request order
	scale     *big.Rat         // product of prefix multipliers on consuming scaled paths
	consumed  []string         // sorted positional paths of consumed selectors
}

func (s selection) key() string {
	var sb strings.Builder
	for _, r := range s.remaining {
		sb.WriteString(r.String())
		sb.WriteByte(',')
	}
	sb.WriteByte('|')
	sb.WriteString(s.scale.RatString())
	sb.WriteByte('|')
	sb.WriteString(strings.Join(s.consumed, ","))
	return sb.String()
}

func (s selection) complete() bool {
	return len(s.remaining) == 0 && s.scale.Cmp(ratOne) == 0
}

// find returns the first remaining selector for (unitID, exp), or -1.
func (s selection) find(unitID string, exp int) int {
	return slices.IndexFunc(s.remaining, func(r FactorSelector) bool {
		return r.UnitID == unitID && r.Exponent == exp
	})
}

func (s selection) consume(i int, path string) selection {
	return selection{
		remaining: slices.Delete(slices.Clone(s.remaining), i, i+1),
		scale:     s.scale,
		consumed:  insertSorted(slices.Clone(s.consumed), path),
	}
}

func (s selection) scaled(by *big.Rat) selection {
	return selection{remaining: s.remaining, scale: new(big.Rat).Mul(s.scale, by), consumed: s.consumed}
}

// selectionSet deduplicates candidate selections, keeping insertion order.
type selectionSet struct {
	seen map[string]bool
	list []selection
}

func newSelectionSet() *selectionSet {
	return &selectionSet{seen: make(map[string]bool)}
}

func (ss *selectionSet) add(s selection) {
	k := s.key()
	if ss.seen[k] {
		return
	}
	ss.seen[k] = true
	ss.list = append(ss.list, s)
}

// matcher runs one match query against a frozen generation.
type matcher struct {
	g  *graph
	tr *trace.MatchTrace
}

func (m *matcher) step(u *Unit, path string, exp int, action trace.Action, s selection) {
	if !m.tr.Enabled() {
		return
	}
	m.tr.RecordStep(trace.StepRecord{
		UnitID:    u.id,
		Path:      path,
		Exponent:  exp,
		Action:    action,
		Remaining: len(s.remaining),
		Scale:     FormatRat(s.scale),
	})
}

func cycleError(stack []string, id string) error {
	return &InternalConsistencyError{Path: append(slices.Clone(stack), id), Reason: "cycle while matching"}
}

// walk explores the unit's own structure depth-first and returns every
// selection reachable from in. At u a selector for (u, exp) may be consumed,
// which ends the descent on that branch; otherwise the search recurses into
// the scalingOf base (scale × prefix^exp) and the factor units (exp × child
// exponent). Skipping u is always a candidate.
func (m *matcher) walk(u *Unit, exp int, path string, stack []string, in selection) ([]selection, error) {
	if slices.Contains(stack, u.id) {
		return nil, cycleError(stack, u.id)
	}
	stack = append(stack, u.id)

	out := newSelectionSet()
	out.add(in)
	if i := in.find(u.id, exp); i >= 0 {
		s := in.consume(i, path)
		m.step(u, path, exp, trace.ActionConsume, s)
		out.add(s)
	}

	if u.IsScaled() {
		base, prefix := m.g.units[u.scalingOfID], m.g.prefixes[u.prefixID]
		start := in.scaled(ratPow(prefix.multiplier, exp))
		m.step(u, path, exp, trace.ActionDescendScaled, start)
		res, err := m.walk(base, exp, path+"~", stack, start)
		if err != nil {
			return nil, err
		}
		for _, s := range res {
			if len(s.consumed) > len(in.consumed) {
				out.add(s)
			}
		}
	}

	if u.IsDerived() {
		m.step(u, path, exp, trace.ActionDescendFactors, in)
		set := []selection{in}
		for i, f := range u.factorUnits {
			child := m.g.units[f.UnitID]
			childPath := path + "/" + strconv.Itoa(i)
			next := newSelectionSet()
			for _, s := range set {
				res, err := m.walk(child, exp*f.Exponent, childPath, stack, s)
				if err != nil {
					return nil, err
				}
				for _, r := range res {
					next.add(r)
				}
			}
			set = next.list
		}
		for _, s := range set {
			if len(s.consumed) > len(in.consumed) {
				out.add(s)
			}
		}
	}
	return out.list, nil
}

// explained reports whether the subtree at path is accounted for by the
// consumed positions: the node itself was consumed, or its scaled base is
// explained, or every factor child is explained. A zero cumulative exponent
// contributes nothing and is trivially explained.
func (m *matcher) explained(u *Unit, exp int, path string, consumed map[string]bool, stack []string) (bool, error) {
	if exp == 0 || consumed[path] {
		return true, nil
	}
	if slices.Contains(stack, u.id) {
		return false, cycleError(stack, u.id)
	}
	stack = append(stack, u.id)

	if u.IsScaled() {
		ok, err := m.explained(m.g.units[u.scalingOfID], exp, path+"~", consumed, stack)
		if err != nil || ok {
			return ok, err
		}
	}
	if u.IsDerived() {
		for i, f := range u.factorUnits {
			ok, err := m.explained(m.g.units[f.UnitID], exp*f.Exponent, path+"/"+strconv.Itoa(i), consumed, stack)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return false, nil
}

// hasFactorStructure reports whether u, or the base it scales, is derived.
func (g *graph) hasFactorStructure(u *Unit) bool {
	seen := map[string]bool{}
	for {
		if u.IsDerived() {
			return true
		}
		if !u.IsScaled() || seen[u.id] {
			return false
		}
		seen[u.id] = true
		u = g.units[u.scalingOfID]
	}
}

// validateSelectors checks the selector list shape and that every selector
// unit exists.
func (g *graph) validateSelectors(selectors []FactorSelector) error {
	if len(selectors) > MaxSelectors {
		return &ArgumentError{Arg: "selectors", Reason: fmt.Sprintf("%d selectors exceed the limit of %d", len(selectors), MaxSelectors)}
	}
	for i, s := range selectors {
		if s.UnitID == "" {
			return &ArgumentError{Arg: "selectors", Reason: fmt.Sprintf("selector %d has no unit", i)}
		}
		if s.Exponent == 0 {
			return &ArgumentError{Arg: "selectors", Reason: fmt.Sprintf("selector %s has exponent 0", s.UnitID)}
		}
		if _, err := g.unit(s.UnitID); err != nil {
			return err
		}
	}
	return nil
}

// matches runs the search for u; selectors must already be validated.
func (g *graph) matches(u *Unit, selectors []FactorSelector, tr *trace.MatchTrace) (bool, error) {
	if len(selectors) == 0 {
		return !g.hasFactorStructure(u), nil
	}
	m := &matcher{g: g, tr: tr}
	start := selection{remaining: slices.Clone(selectors), scale: ratOne}
	candidates, err := m.walk(u, 1, "", nil, start)
	if err != nil {
		return false, err
	}
	for _, s := range candidates {
		if len(s.remaining) > 0 {
			continue
		}
		consumed := make(map[string]bool, len(s.consumed))
		for _, p := range s.consumed {
			consumed[p] = true
		}
		ok := false
		if s.complete() {
			if ok, err = m.explained(u, 1, "", consumed, nil); err != nil {
				return false, err
			}
		}
		tr.RecordOutcome(trace.OutcomeRecord{
			Consumed: slices.Clone(s.consumed),
			Scale:    FormatRat(s.scale),
			Complete: s.complete(),
			Matched:  ok,
		})
		if ok {
			logrus.Debugf("match %s: selectors consumed at %v", u.id, s.consumed)
			return true, nil
		}
	}
	return false, nil
}

// Matches reports whether unitID's own definition is consistent with exactly
// the requested combination of factors. Structure below a consumed factor
// needs no selector; every selector must be consumed and every branch of the
// unit explained. An empty list matches only units without factor structure.
func (c *Catalog) Matches(unitID string, selectors []FactorSelector) (bool, error) {
	defer c.metrics.matched(ModeBestMatch, time.Now())
	g := c.current()
	u, err := g.unit(unitID)
	if err != nil {
		return false, err
	}
	if err := g.validateSelectors(selectors); err != nil {
		return false, err
	}
	return g.matches(u, selectors, nil)
}

// ExplainMatch is Matches with every exploration step recorded in the
// returned trace.
func (c *Catalog) ExplainMatch(unitID string, selectors []FactorSelector, cfg trace.TraceConfig) (bool, *trace.MatchTrace, error) {
	g := c.current()
	u, err := g.unit(unitID)
	if err != nil {
		return false, nil, err
	}
	if err := g.validateSelectors(selectors); err != nil {
		return false, nil, err
	}
	if cfg.Level == "" {
		cfg.Level = trace.TraceLevelSteps
	}
	tr := trace.NewMatchTrace(cfg, unitID)
	ok, err := g.matches(u, selectors, tr)
	return ok, tr, err
}

func selectorFactors(selectors []FactorSelector) FactorUnits {
	out := make(FactorUnits, len(selectors))
	for i, s := range selectors {
		out[i] = FactorUnit(s)
	}
	return out
}

// DerivedUnits returns the catalogued units that decompose into the requested
// combination under mode, sorted by ID.
func (c *Catalog) DerivedUnits(mode SearchMode, selectors []FactorSelector) ([]*Unit, error) {
	if _, ok := searchModeNames[mode]; !ok || mode == ModeUnset {
		return nil, &ArgumentError{Arg: "search mode", Reason: "a search mode must be chosen explicitly"}
	}
	defer c.metrics.matched(mode, time.Now())
	g := c.current()
	if len(selectors) == 0 {
		return nil, &ArgumentError{Arg: "selectors", Reason: "empty"}
	}
	if err := g.validateSelectors(selectors); err != nil {
		return nil, err
	}
	request := selectorFactors(selectors)

	var want FactorUnits
	if mode == ModeAll {
		var err error
		if want, err = g.expand(request, nil); err != nil {
			return nil, err
		}
	}

	var out []*Unit
	for _, u := range sortedValues(g.units) {
		var ok bool
		switch mode {
		case ModeExact:
			ok = u.IsDerived() && u.factorUnits.SameTerms(request)
		case ModeBestMatch:
			var err error
			if ok, err = g.matches(u, selectors, nil); err != nil {
				return nil, err
			}
		case ModeAll:
			got, err := g.expand(FactorUnits{{UnitID: u.id, Exponent: 1}}, nil)
			if err != nil {
				return nil, err
			}
			ok = got.Equal(want)
		}
		if ok {
			out = append(out, u)
		}
	}
	logrus.Debugf("derived units (%s) for %s: %d found", mode, request, len(out))
	return out, nil
}
