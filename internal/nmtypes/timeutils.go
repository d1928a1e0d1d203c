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

package nmtypes

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"time"

	"github.com/kaleido-io/nftmarket/internal/i18n"
)

// NMTime is serialized to JSON in RFC3339 nanosecond UTC time.
// It is persisted as a nanosecond resolution timestamp in the ledger.
// It can be parsed from RFC3339, or unix timestamps (second, millisecond or nanosecond resolution)
type NMTime time.Time

func Now() *NMTime {
	t := NMTime(time.Now().UTC())
	return &t
}

func ZeroTime() NMTime {
	return NMTime(time.Time{}.UTC())
}

func UnixTime(unixTime int64) *NMTime {
	if unixTime < 1e10 {
		unixTime *= 1e3 // secs to millis
	}
	if unixTime < 1e15 {
		unixTime *= 1e6 // millis to nanos
	}
	t := NMTime(time.Unix(0, unixTime).UTC())
	return &t
}

func (nt *NMTime) MarshalJSON() ([]byte, error) {
	if nt == nil || time.Time(*nt).IsZero() {
		return json.Marshal(nil)
	}
	return json.Marshal(nt.String())
}

func ParseTimeString(str string) (*NMTime, error) {
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		var unixTime int64
		unixTime, err = strconv.ParseInt(str, 10, 64)
		if err == nil {
			return UnixTime(unixTime), nil
		}
	}
	if err != nil {
		zero := ZeroTime()
		return &zero, i18n.NewError(context.Background(), i18n.MsgTimeParseFail, str)
	}
	nt := NMTime(t.UTC())
	return &nt, nil
}

func (nt *NMTime) UnixNano() int64 {
	if nt == nil {
		return 0
	}
	return time.Time(*nt).UnixNano()
}

// UnixMilli is the millisecond timestamp, as used in generated account and token-type names
func (nt *NMTime) UnixMilli() int64 {
	return nt.UnixNano() / int64(time.Millisecond)
}

func (nt *NMTime) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*nt = ZeroTime()
		return nil
	}
	t, err := ParseTimeString(*s)
	if err != nil {
		return err
	}
	*nt = *t
	return nil
}

// Scan implements sql.Scanner
func (nt *NMTime) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*nt = ZeroTime()
		return nil

	case string:
		t, err := ParseTimeString(src)
		if err != nil {
			return err
		}
		*nt = *t
		return nil

	case int64:
		if src == 0 {
			*nt = ZeroTime()
			return nil
		}
		*nt = *UnixTime(src)
		return nil

	default:
		return i18n.NewError(context.Background(), i18n.MsgTimeParseFail, src)
	}
}

// Value implements sql.Valuer
func (nt NMTime) Value() (driver.Value, error) {
	if time.Time(nt).IsZero() {
		return int64(0), nil
	}
	return time.Time(nt).UnixNano(), nil
}

func (nt *NMTime) String() string {
	if nt == nil || time.Time(*nt).IsZero() {
		return ""
	}
	return time.Time(*nt).UTC().Format(time.RFC3339Nano)
}
