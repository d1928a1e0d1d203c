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
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MessageKey is the english translation text
type MessageKey string

// Expand for use in docs and logging - returns a translated message, translated the language of the context
func Expand(ctx context.Context, key MessageKey, inserts ...interface{}) string {
	return pFor(ctx).Sprintf(string(key), inserts...)
}

// ExpandWithCode for use in error scenarios - returns a translated message with a "NM10123:" prefix, translated the language of the context
func ExpandWithCode(ctx context.Context, key MessageKey, inserts ...interface{}) string {
	return string(key) + ": " + pFor(ctx).Sprintf(string(key), inserts...)
}

// WithLang sets the language on the context
func WithLang(ctx context.Context, lang language.Tag) context.Context {
	return context.WithValue(ctx, ctxLangKey{}, lang)
}

type (
	ctxLangKey struct{}
)

var serverLangs = []language.Tag{
	language.English, // Only English currently supported
}

var langMatcher = language.NewMatcher(serverLangs)

var statusHints = map[string]int{}
var msgIDUniq = map[string]bool{}

var langLock sync.RWMutex
var defaultLangPrinter = message.NewPrinter(language.English)

func nmm(key, enTranslation string, statusHint ...int) MessageKey {
	if _, exists := msgIDUniq[key]; exists {
		panic(fmt.Sprintf("duplicate message ID %s", key))
	}
	msgIDUniq[key] = true
	_ = message.SetString(language.English, key, enTranslation)
	if len(statusHint) > 0 {
		statusHints[key] = statusHint[0]
	}
	return MessageKey(key)
}

// SetLang sets the default language used when the context does not carry one
func SetLang(lang string) {
	tag, _, _ := langMatcher.Match(language.Make(lang))
	langLock.Lock()
	defer langLock.Unlock()
	defaultLangPrinter = message.NewPrinter(tag)
}

// GetStatusHint returns the HTTP status an RPC client should expect for a code, if one is registered
func GetStatusHint(code string) (int, bool) {
	i, ok := statusHints[code]
	return i, ok
}

func pFor(ctx context.Context) *message.Printer {
	lang := ctx.Value(ctxLangKey{})
	if lang == nil {
		langLock.RLock()
		defer langLock.RUnlock()
		return defaultLangPrinter
	}
	return message.NewPrinter(lang.(language.Tag))
}
