// Package testutil provides shared test helpers, trimmed from the
// teacher's much larger testhelpers package down to the one piece this
// service's tests actually need: goroutine-leak verification.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks fails t if any goroutine started during the test is still
// running when it returns. Call with defer at the top of tests that spin
// up a workerpool.Pool or server.Server.
func VerifyNoLeaks(t *testing.T) {
	t.Helper()
	goleak.VerifyNone(t)
}
