// Package shared holds helpers used across packages.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and FakeRegistry, an httptest server that answers the three
// bus.gov.ru endpoints from canned bodies. They depend on the standard library
// and internal/infrastructure only, so any package can use them in tests.
package shared
