// Package shared holds code used across layers that belongs to none of them.
//
// The testutil subpackage provides the biometric export fixtures and the
// buffered slog handler used by the package tests:
//
//	func TestLoad(t *testing.T) {
//	    path := testutil.WriteFile(t, t.TempDir(), "three.csv", testutil.ThreeRowCSV)
//	    logger, handler := testutil.NewTestLogger(t)
//	    ...
//	}
//
// Nothing here may import a domain package other than pkg/contracts/domain.
package shared
