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

//revive:disable
var (
	MsgConfigFailed         = nmm("NM10101", "Failed to read config")
	MsgContextCanceled      = nmm("NM10102", "Context canceled")
	MsgInvalidOutputOption  = nmm("NM10103", "Invalid output option '%s'")
	MsgDebugServerFailed    = nmm("NM10104", "Debug server failed on port %s")
	MsgConfigKeyFailed      = nmm("NM10105", "Failed to read config key '%s'")
	MsgTimeParseFail        = nmm("NM10106", "Cannot parse time as RFC3339, Unix, or UnixNano: '%s'", 400)
	MsgRPCRequestFailed     = nmm("NM10110", "JSON-RPC request '%s' failed: %s", 502)
	MsgRPCError             = nmm("NM10111", "JSON-RPC error from node [%s] %s: %s", 502)
	MsgRPCResultDecode      = nmm("NM10112", "Failed to decode result of JSON-RPC request '%s'", 502)
	MsgUnknownAccount       = nmm("NM10113", "Account '%s' does not exist", 404)
	MsgViewFunctionFailed   = nmm("NM10114", "View function '%s' on '%s' failed: %s", 500)
	MsgViewResultDecode     = nmm("NM10115", "Failed to decode result of view function '%s' on '%s'", 500)
	MsgTxFailed             = nmm("NM10116", "Transaction %s to '%s' failed: %s", 500)
	MsgTxSerializeFailed    = nmm("NM10117", "Failed to serialize transaction to '%s'")
	MsgInvalidKey           = nmm("NM10118", "Invalid key '%s'", 400)
	MsgUnsupportedKeyType   = nmm("NM10119", "Unsupported key type '%s'", 400)
	MsgInvalidAmount        = nmm("NM10120", "Invalid NEAR amount '%s'", 400)
	MsgInvalidHash          = nmm("NM10121", "Invalid hash '%s'", 400)
	MsgKeyNotFound          = nmm("NM10122", "No key found for account '%s' in keystore '%s'", 404)
	MsgKeystoreReadFailed   = nmm("NM10123", "Failed to read key file '%s'")
	MsgKeystoreWriteFailed  = nmm("NM10124", "Failed to write key file '%s'")
	MsgInvalidAccountID     = nmm("NM10125", "Invalid account ID '%s'", 400)
	MsgWaitTimeout          = nmm("NM10126", "Timed out waiting for %s")
	MsgArgsSerializeFailed  = nmm("NM10127", "Failed to serialize arguments for '%s'")
	MsgNoSigningKey         = nmm("NM10128", "Account '%s' has no signing key")
	MsgTxResultDecode       = nmm("NM10129", "Failed to decode return value of '%s' on '%s'")
	MsgInvalidNonce         = nmm("NM10130", "Transaction nonce rejected for '%s' after %d attempts: %s", 409)
	MsgUnknownAccessKey     = nmm("NM10131", "Access key '%s' does not exist on account '%s'", 404)
	MsgInvalidGas           = nmm("NM10132", "Invalid gas value '%s'", 400)
	MsgInvalidKeyFile       = nmm("NM10133", "Key file '%s' is invalid: %s", 400)
	MsgArtifactReadFailed   = nmm("NM10140", "Failed to read contract artifact '%s'")
	MsgDeployStepFailed     = nmm("NM10141", "Deployment step '%s' failed")
	MsgMissingContractID    = nmm("NM10142", "Contract account ID must be configured", 400)
	MsgInvalidTokenTypeCap  = nmm("NM10143", "Invalid supply cap '%s' for token type '%s'", 400)
	MsgDeployTimeout        = nmm("NM10144", "Deployment did not complete within %s")
	MsgDBInitFailed         = nmm("NM10160", "Database initialization failed")
	MsgDBMigrationFailed    = nmm("NM10161", "Database migration failed")
	MsgDBBeginFailed        = nmm("NM10162", "Database begin transaction failed")
	MsgDBQueryBuildFailed   = nmm("NM10163", "Database query builder failed")
	MsgDBQueryFailed        = nmm("NM10164", "Database query failed")
	MsgDBInsertFailed       = nmm("NM10165", "Database insert failed")
	MsgDBUpdateFailed       = nmm("NM10166", "Database update failed")
	MsgDBCommitFailed       = nmm("NM10167", "Database commit failed")
	MsgDBReadErr            = nmm("NM10168", "Database resultset read error from table '%s'")
	MsgLedgerDisabled       = nmm("NM10169", "Deployment ledger is disabled (ledger.enabled=false)")
	MsgUnknownLedgerType    = nmm("NM10170", "Unknown ledger type '%s'", 400)
	MsgRunNotFound          = nmm("NM10171", "Deployment run '%s' not found", 404)
	MsgInvalidRunID         = nmm("NM10172", "Invalid deployment run ID '%s'", 400)
)
