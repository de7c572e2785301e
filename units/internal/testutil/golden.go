// Package testutil provides shared test infrastructure for dimkit.
// It consolidates the golden conversion dataset and exact-value assertion
// helpers used across units/ and its sub-package tests.
package testutil

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/conversions.json.
type GoldenDataset struct {
	Conversions []GoldenConversion `json:"conversions"`
}

// GoldenConversion is one expected conversion. Amounts are exact decimal or
// fraction literals.
type GoldenConversion struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	From   string `json:"from"`
	To     string `json:"to"`
	Want   string `json:"want"`
	// Error names the expected error class instead of Want
	// ("inconvertible", "missing_data").
	Error string `json:"error,omitempty"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: units/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from units/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "conversions.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// Rat parses an exact literal or fails the test.
func Rat(t *testing.T, s string) *big.Rat {
	t.Helper()
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		t.Fatalf("invalid exact literal %q", s)
	}
	return r
}

// AssertRatEqual compares two exact values.
func AssertRatEqual(t *testing.T, name string, want, got *big.Rat) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: got nil, want %s", name, want.RatString())
		return
	}
	if want.Cmp(got) != 0 {
		t.Errorf("%s: got %s, want %s", name, got.RatString(), want.RatString())
	}
}
