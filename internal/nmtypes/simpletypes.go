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
	"encoding/json"

	"github.com/aidarkhanov/nanoid"
	"github.com/google/uuid"
)

const (
	// ShortIDAlphabet is designed for easy double-click select
	ShortIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"
)

// ShortID is used to correlate log lines for a single request or DB transaction
func ShortID() string {
	return nanoid.Must(nanoid.Generate(ShortIDAlphabet, 8))
}

// NewUUID allocates a new random UUID, for example to identify a deployment run
func NewUUID() *uuid.UUID {
	u := uuid.New()
	return &u
}

// JSONObject is an untyped JSON object, as passed to and returned from contract methods
type JSONObject map[string]interface{}

func (jo JSONObject) String() string {
	b, _ := json.Marshal(&jo)
	return string(b)
}

// GetString returns a string value, or the empty string if missing or not a string
func (jo JSONObject) GetString(key string) string {
	s, _ := jo[key].(string)
	return s
}
