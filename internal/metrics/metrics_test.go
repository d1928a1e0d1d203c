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

package metrics

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"testing"
	"time"

	"github.com/kaleido-io/nftmarket/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetricsManager(t *testing.T) *metricsManager {
	config.Reset()
	Clear()
	mmi := NewMetricsManager()
	mm := mmi.(*metricsManager)
	assert.True(t, mm.IsMetricsEnabled())
	return mm
}

func TestTransactionCounters(t *testing.T) {
	mm := newTestMetricsManager(t)
	mm.TransactionSubmitted("nft.testnet", "new")
	mm.TransactionSubmitted("nft.testnet", "new")
	mm.TransactionFailed("nft.testnet", "new")
	mm.TransactionDuration("new", 2*time.Second)
	assert.Equal(t, float64(2), testutil.ToFloat64(NetworkTransactionsCounter.WithLabelValues("nft.testnet", "new")))
	assert.Equal(t, float64(1), testutil.ToFloat64(NetworkTransactionFailuresCounter.WithLabelValues("nft.testnet", "new")))
}

func TestQueryCounter(t *testing.T) {
	mm := newTestMetricsManager(t)
	mm.QueryIssued("ft.testnet", "storage_balance_bounds")
	assert.Equal(t, float64(1), testutil.ToFloat64(NetworkQueriesCounter.WithLabelValues("ft.testnet", "storage_balance_bounds")))
}

func TestDeployStep(t *testing.T) {
	mm := newTestMetricsManager(t)
	mm.DeployStep("deploy-nft", "succeeded", 10*time.Millisecond)
	mm.DeployStep("deploy-nft", "skipped", 0)
	assert.Equal(t, float64(1), testutil.ToFloat64(DeployStepsCounter.WithLabelValues("deploy-nft", "succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(DeployStepsCounter.WithLabelValues("deploy-nft", "skipped")))
}

func TestMetricsDisabled(t *testing.T) {
	config.Reset()
	config.Set(config.MetricsEnabled, false)
	Clear()
	mm := NewMetricsManager()
	assert.False(t, mm.IsMetricsEnabled())
	// Counters are not touched when disabled
	mm.TransactionSubmitted("a", "b")
	mm.TransactionFailed("a", "b")
	mm.TransactionDuration("b", time.Second)
	mm.QueryIssued("a", "b")
	mm.DeployStep("a", "b", time.Second)
}

func TestServeDebug(t *testing.T) {
	newTestMetricsManager(t).DeployStep("fund-users", "succeeded", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	addr, done, err := ServeDebug(ctx, 0)
	assert.NoError(t, err)

	res, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	assert.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	b, _ := ioutil.ReadAll(res.Body)
	res.Body.Close()
	assert.Contains(t, string(b), DeployStepsCounterName)

	cancel()
	assert.NoError(t, <-done)
}

func TestServeDebugBadPort(t *testing.T) {
	_, _, err := ServeDebug(context.Background(), 999999)
	assert.Regexp(t, `NM10104.*port 999999:`, err)
}

func TestServeDebugCors(t *testing.T) {
	newTestMetricsManager(t)
	config.Set(config.DebugCorsEnabled, true)
	config.Set(config.DebugCorsAllowedOrigins, []string{"http://localhost:3000"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	addr, _, err := ServeDebug(ctx, 0)
	assert.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("http://%s/metrics", addr), nil)
	req.Header.Set("Origin", "http://localhost:3000")
	res, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "http://localhost:3000", res.Header.Get("Access-Control-Allow-Origin"))
}
