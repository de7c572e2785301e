// Package units provides the dimensional-analysis and conversion core of dimkit.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - dimension.go: DimensionVector encoding and algebra
//   - entities.go: Prefix, Unit, QuantityKind and SystemOfUnits records
//   - builder.go: definition stage and the connect pass that freezes a Catalog
//   - factor.go: factor-unit composition (canonical form, dimension, conversion factor)
//   - match.go: the unit matching engine and derived-unit search
//   - convert.go / quantity.go: exact conversion and quantity arithmetic
//
// # Architecture
//
// A Catalog is an arena of entities addressed by string IDs ("unit:N",
// "prefix:Kilo", "quantitykind:Force"). Relations are stored as IDs and
// resolved through the Catalog, so no entity holds a pointer to another.
// Entities are built from definitions by a Builder; Build resolves every
// reference, rejects cyclic catalogs and publishes an immutable graph.
//
// Sub-packages:
//   - units/search: radix-trie label index, registered via init() into NewLabelIndexFunc
//   - units/catalog: YAML catalog format, engine configuration and the embedded default catalog
//   - units/trace: match exploration records used by ExplainMatch
//
// # Concurrency
//
// A built Catalog is safe for concurrent readers. Append is the only mutation
// and swaps a fully connected graph in under the catalog's write lock, so
// readers never observe a partially added entity.
package units
