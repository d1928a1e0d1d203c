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

package near

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/holiman/uint256"
	"github.com/kaleido-io/nftmarket/internal/i18n"
)

// NearNominationExp is the number of decimal places between one NEAR and one yoctoNEAR
const NearNominationExp = 24

// Balance is an on-chain amount, held in yoctoNEAR. It serializes to JSON as a
// decimal string, which is how the network and the contracts represent u128 values.
type Balance struct {
	i uint256.Int
}

var maxU128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// NewBalance builds a yoctoNEAR amount from a uint64
func NewBalance(yocto uint64) *Balance {
	b := &Balance{}
	b.i.SetUint64(yocto)
	return b
}

// ParseYocto parses a decimal string of yoctoNEAR
func ParseYocto(ctx context.Context, s string) (*Balance, error) {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		if s == "" {
			return nil, i18n.NewError(ctx, i18n.MsgInvalidAmount, s)
		}
		trimmed = "0"
	}
	i, err := uint256.FromDecimal(trimmed)
	if err != nil || i.Gt(maxU128) {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidAmount, s)
	}
	return &Balance{i: *i}, nil
}

// ParseNearAmount converts a human readable NEAR amount, such as "1,000" or "0.25",
// into yoctoNEAR. At most 24 fractional digits are accepted.
func ParseNearAmount(ctx context.Context, amount string) (*Balance, error) {
	s := strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
	parts := strings.Split(s, ".")
	if len(parts) > 2 || s == "" || s == "." {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidAmount, amount)
	}
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = strings.TrimRight(parts[1], "0")
	}
	if len(frac) > NearNominationExp || strings.ContainsAny(whole+frac, "+-") {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidAmount, amount)
	}
	frac += strings.Repeat("0", NearNominationExp-len(frac))
	b, err := ParseYocto(ctx, whole+frac)
	if err != nil {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidAmount, amount)
	}
	return b, nil
}

// FormatNearAmount renders yoctoNEAR as NEAR, rounded half-up to fracDigits places,
// with trailing zeros removed and the whole part grouped by commas
func FormatNearAmount(b *Balance, fracDigits int) string {
	if fracDigits < 0 || fracDigits > NearNominationExp {
		fracDigits = NearNominationExp
	}
	v := new(uint256.Int).Set(&b.i)
	if fracDigits < NearNominationExp {
		half := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(NearNominationExp-fracDigits-1)))
		half.Mul(half, uint256.NewInt(5))
		v.Add(v, half)
	}
	s := v.Dec()
	if len(s) <= NearNominationExp {
		s = strings.Repeat("0", NearNominationExp-len(s)+1) + s
	}
	whole := s[:len(s)-NearNominationExp]
	frac := strings.TrimRight(s[len(s)-NearNominationExp:][:fracDigits], "0")
	if frac == "" {
		return withCommas(whole)
	}
	return withCommas(whole) + "." + frac
}

func withCommas(whole string) string {
	var sb strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// Int returns a copy of the underlying integer
func (b *Balance) Int() *uint256.Int {
	return new(uint256.Int).Set(&b.i)
}

func (b *Balance) IsZero() bool {
	return b == nil || b.i.IsZero()
}

func (b *Balance) Cmp(o *Balance) int {
	return b.i.Cmp(&o.i)
}

// Add returns a new balance, leaving both inputs untouched
func (b *Balance) Add(o *Balance) *Balance {
	r := &Balance{}
	r.i.Add(&b.i, &o.i)
	return r
}

// Sub returns a new balance. The caller must ensure o <= b.
func (b *Balance) Sub(o *Balance) *Balance {
	r := &Balance{}
	r.i.Sub(&b.i, &o.i)
	return r
}

func (b *Balance) String() string {
	if b == nil {
		return "0"
	}
	return b.i.Dec()
}

// U128 is the little-endian form used in borsh encoded transactions
func (b *Balance) U128() U128 {
	var u U128
	if b == nil {
		return u
	}
	be := b.i.Bytes32()
	for i := 0; i < 16; i++ {
		u[i] = be[31-i]
	}
	return u
}

// Balance converts a borsh u128 back to a Balance
func (u U128) Balance() *Balance {
	var be [16]byte
	for i := 0; i < 16; i++ {
		be[i] = u[15-i]
	}
	b := &Balance{}
	b.i.SetBytes(be[:])
	return b
}

func (b *Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		b.i.Clear()
		return nil
	}
	parsed, err := ParseYocto(context.Background(), s)
	if err != nil {
		return err
	}
	b.i = parsed.i
	return nil
}
