// Package search provides the multi-value prefix index behind catalog label
// lookup. Keys live in one radix tree; each key maps to a set of values.
package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/armon/go-radix"

	"github.com/dimkit/dimkit/units"
)

// Key namespaces inside the tree. Folded keys are only written when the
// index is case-insensitive.
const (
	exactNS  = "\x00"
	foldedNS = "\x01"
)

// Index maps string keys to sets of values. It is not safe for concurrent
// mutation; the catalog only mutates an index before publishing it.
type Index[V cmp.Ordered] struct {
	tree            *radix.Tree
	caseInsensitive bool
}

// New returns an empty index. When caseInsensitive is set, every key is also
// stored upper-cased so IgnoreCase queries are tree lookups.
func New[V cmp.Ordered](caseInsensitive bool) *Index[V] {
	return &Index[V]{tree: radix.New(), caseInsensitive: caseInsensitive}
}

// Put adds value to the set stored at key. Repeated puts are idempotent.
func (ix *Index[V]) Put(key string, value V) {
	ix.insert(exactNS+key, value)
	if ix.caseInsensitive {
		ix.insert(foldedNS+strings.ToUpper(key), value)
	}
}

func (ix *Index[V]) insert(k string, value V) {
	if v, ok := ix.tree.Get(k); ok {
		v.(map[V]struct{})[value] = struct{}{}
		return
	}
	ix.tree.Insert(k, map[V]struct{}{value: {}})
}

// Get returns the sorted union of the values matching query. MatchPrefix
// selects every key starting with query; IgnoreCase compares case-folded.
func (ix *Index[V]) Get(query string, flags units.SearchFlags) []V {
	prefix := flags&units.MatchPrefix != 0
	acc := make(map[V]struct{})
	collect := func(_ string, v interface{}) bool {
		for value := range v.(map[V]struct{}) {
			acc[value] = struct{}{}
		}
		return false
	}

	switch {
	case flags&units.IgnoreCase == 0:
		ix.lookup(exactNS+query, prefix, collect)
	case ix.caseInsensitive:
		ix.lookup(foldedNS+strings.ToUpper(query), prefix, collect)
	default:
		// No folded keys: scan the exact keys.
		upper := strings.ToUpper(query)
		ix.tree.WalkPrefix(exactNS, func(k string, v interface{}) bool {
			key := strings.ToUpper(k[len(exactNS):])
			if key == upper || (prefix && strings.HasPrefix(key, upper)) {
				collect(k, v)
			}
			return false
		})
	}

	out := make([]V, 0, len(acc))
	for value := range acc {
		out = append(out, value)
	}
	slices.Sort(out)
	return out
}

func (ix *Index[V]) lookup(k string, prefix bool, fn radix.WalkFn) {
	if prefix {
		ix.tree.WalkPrefix(k, fn)
		return
	}
	if v, ok := ix.tree.Get(k); ok {
		fn(k, v)
	}
}

// Keys returns every distinct key as inserted, sorted.
func (ix *Index[V]) Keys() []string {
	var out []string
	ix.tree.WalkPrefix(exactNS, func(k string, _ interface{}) bool {
		out = append(out, k[len(exactNS):])
		return false
	})
	return out
}

// Len returns the number of distinct keys.
func (ix *Index[V]) Len() int {
	return len(ix.Keys())
}
