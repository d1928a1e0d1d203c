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

package ledgerfactory

import (
	"context"

	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/ledger"
	"github.com/kaleido-io/nftmarket/internal/ledger/postgres"
	"github.com/kaleido-io/nftmarket/internal/ledger/sqlite"
)

var pluginsByName = map[string]func() ledger.Plugin{
	(*sqlite.SQLite)(nil).Name():     func() ledger.Plugin { return &sqlite.SQLite{} },
	(*postgres.Postgres)(nil).Name(): func() ledger.Plugin { return &postgres.Postgres{} },
}

func GetPlugin(ctx context.Context, pluginType string) (ledger.Plugin, error) {
	plugin, ok := pluginsByName[pluginType]
	if !ok {
		return nil, i18n.NewError(ctx, i18n.MsgUnknownLedgerType, pluginType)
	}
	return plugin(), nil
}
