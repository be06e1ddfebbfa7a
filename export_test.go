// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

// SetNextCallID positions the ID counter of c.
func SetNextCallID[T any](c *Connection[T], id CallID) {
	c.ids.next = id
}
