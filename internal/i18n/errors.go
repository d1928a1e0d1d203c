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

package i18n

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// NewError builds an error whose text starts with the message code, e.g. "NM10142: ...",
// translated for the language in the context
func NewError(ctx context.Context, msg MessageKey, inserts ...interface{}) error {
	return errors.New(ExpandWithCode(ctx, msg, inserts...))
}

// WrapError is NewError with err kept as the cause, so HasCode and errors.Cause still see it
func WrapError(ctx context.Context, err error, msg MessageKey, inserts ...interface{}) error {
	return errors.Wrap(err, ExpandWithCode(ctx, msg, inserts...))
}

// HasCode reports whether the error, or anything it wraps, was raised with the given message code
func HasCode(err error, msg MessageKey) bool {
	for err != nil {
		if strings.HasPrefix(err.Error(), string(msg)+":") {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
