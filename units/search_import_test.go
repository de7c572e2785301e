package units_test

// Blank import triggers units/search's init(), which registers NewLabelIndexFunc.
// This allows package units' internal test files to build catalogs
// without directly importing units/search (which would create an import cycle).
import _ "github.com/dimkit/dimkit/units/search"
