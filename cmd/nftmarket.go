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

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghodss/yaml"
	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/kaleido-io/nftmarket/internal/i18n"
	"github.com/kaleido-io/nftmarket/internal/ledger"
	"github.com/kaleido-io/nftmarket/internal/ledger/ledgerfactory"
	"github.com/kaleido-io/nftmarket/internal/log"
	"github.com/kaleido-io/nftmarket/internal/metrics"
	"github.com/kaleido-io/nftmarket/internal/near"
	"github.com/kaleido-io/nftmarket/internal/restclient"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultRPCURL = "https://rpc.testnet.near.org"

var rpcConf = config.NewPluginConfig("network.rpc")
var ledgerConf = config.NewPluginConfig("ledger")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "nftmarket",
	Short: "NFT market deployer",
	Long: `Deploys the NFT, fungible token and market contracts to a NEAR network,
and wires them together`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	near.InitConfig(rpcConf)
	rpcConf.AddKnownKey(restclient.HTTPConfigURL, defaultRPCURL)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "config file")
}

// Execute is called by the main method of the package
func Execute() error {
	return rootCmd.Execute()
}

func setupLogging() {
	log.SetLevel(config.GetString(config.LogLevel))
	log.SetFormatting(log.Formatting{
		DisableColor: !config.GetBool(config.LogColor),
		UTC:          config.GetBool(config.LogUTC),
	})
}

// initEnv reads the config, sets up logging and starts the debug server if configured.
// The returned context is cancelled on SIGINT or SIGTERM, or by the returned cancel function.
func initEnv() (context.Context, context.CancelFunc, error) {
	// Read the configuration first of all
	err := config.ReadConfig(cfgFile)

	// Setup logging after reading config (even if failed), to output header correctly
	ctx := log.WithLogger(context.Background(), logrus.WithField("pid", fmt.Sprintf("%d", os.Getpid())))
	setupLogging()
	log.L(ctx).Debugf("NFT market deployer")

	// Deferred error return from reading config
	if err != nil {
		return nil, nil, i18n.WrapError(ctx, err, i18n.MsgConfigFailed)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	if debugPort := config.GetInt(config.DebugPort); debugPort > 0 {
		addr, _, err := metrics.ServeDebug(ctx, debugPort)
		if err != nil {
			cancel()
			return nil, nil, err
		}
		log.L(ctx).Infof("Debug server listening on %s", addr)
	}
	return ctx, cancel, nil
}

func newConnection(ctx context.Context) (*near.Connection, metrics.Manager, error) {
	mm := metrics.NewMetricsManager()
	conn, err := near.NewConnection(ctx, rpcConf, near.NewFileKeyStore(config.GetString(config.KeystorePath)), mm)
	return conn, mm, err
}

// getLedger returns nil when the ledger is disabled
func getLedger(ctx context.Context) (ledger.Plugin, error) {
	if !config.GetBool(config.LedgerEnabled) {
		return nil, nil
	}
	lp, err := ledgerfactory.GetPlugin(ctx, config.GetString(config.LedgerType))
	if err != nil {
		return nil, err
	}
	if err := lp.Init(ctx, ledgerConf); err != nil {
		return nil, err
	}
	log.L(ctx).Debugf("Ledger '%s' initialized", lp.Name())
	return lp, nil
}

func checkOutputFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return i18n.NewError(context.Background(), i18n.MsgInvalidOutputOption, format)
	}
}

func printOutput(cmd *cobra.Command, format string, v interface{}) error {
	if err := checkOutputFormat(format); err != nil {
		return err
	}
	var b []byte
	var err error
	if format == "json" {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = yaml.Marshal(v)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
