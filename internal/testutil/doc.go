// Package testutil provides fluent builders for constructing raw wire
// events and caller contexts in tests, keeping test setup readable and free
// of hand-written JSON.
package testutil
