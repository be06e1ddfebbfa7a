// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package callmux

import (
	"context"

	"code.hybscloud.com/callmux/wstransport"
	"github.com/rs/zerolog"
)

// webSocketDialer is the default dialer of Connect.
func webSocketDialer(logger zerolog.Logger) Dialer {
	return DialFunc(func(ctx context.Context, endpoint string) (Transport, error) {
		tr, err := wstransport.Dial(ctx, endpoint, wstransport.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return tr, nil
	})
}
