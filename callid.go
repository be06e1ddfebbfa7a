// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

// CallID tags an outbound call so its reply can be correlated.
// IDs are unique among the calls outstanding on one Connection.
type CallID = uint64

// SessionID scopes a call to a sub-target multiplexed over one connection.
// The empty SessionID means the call is not scoped.
type SessionID = string

// idAllocator issues monotonically increasing call IDs starting at zero.
// The counter wraps silently on overflow; in-flight IDs are not tracked.
type idAllocator struct {
	next CallID
}

// allocate returns the current counter value and advances it.
func (a *idAllocator) allocate() CallID {
	id := a.next
	a.next++
	return id
}
