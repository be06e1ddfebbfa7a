// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package wstransport_test

import "testing"

// skipRace skips tests whose frame queues cross goroutines.
// The race detector cannot see SPSC's cross-variable memory ordering.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: SPSC uses cross-variable memory ordering")
}
