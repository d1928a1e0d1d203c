// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retry

import (
	"context"
	"time"

	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/log"
)

// DefaultFactor is used when the configured factor would not grow the delay
const (
	DefaultFactor = 2.0
)

// Retry is an exponential backoff, used to poll the node for the outcome of a
// submitted transaction. It holds no state between calls, so one value can be
// shared by concurrent pollers.
type Retry struct {
	InitialDelay time.Duration
	MaximumDelay time.Duration
	Factor       float32
}

// Do calls f until it returns retry=false, returning the error f gave on that call.
// Each wait is capped by MaximumDelay and by whatever is left of the context deadline,
// and a cancelled context ends the loop with NM10102.
func (r *Retry) Do(ctx context.Context, logDescription string, f func(attempt int) (retry bool, err error)) error {
	attempt := 0
	delay := r.InitialDelay
	factor := r.Factor
	if factor < 1 { // Can't reduce
		factor = DefaultFactor
	}
	for {
		attempt++
		retry, err := f(attempt)
		if !retry {
			return err
		}
		if err != nil {
			log.L(ctx).Debugf("%s attempt %d: %s", logDescription, attempt, err)
		}

		select {
		case <-ctx.Done():
			return i18n.NewError(ctx, i18n.MsgContextCanceled)
		default:
		}

		deadline, dok := ctx.Deadline()
		now := time.Now()
		if delay > r.MaximumDelay {
			delay = r.MaximumDelay
		}
		if dok {
			timeleft := deadline.Sub(now)
			if timeleft < delay {
				delay = timeleft
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return i18n.NewError(ctx, i18n.MsgContextCanceled)
		}
		delay = time.Duration(float32(delay) * factor)
	}
}
