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
	"github.com/prometheus/client_golang/prometheus"
)

var NetworkTransactionsCounter *prometheus.CounterVec
var NetworkTransactionFailuresCounter *prometheus.CounterVec
var NetworkQueriesCounter *prometheus.CounterVec
var NetworkTransactionHistogram *prometheus.HistogramVec

// NetworkTransactionsCounterName is the prometheus metric for tracking the total number of signed transactions submitted
var NetworkTransactionsCounterName = "nm_network_transactions_total"

// NetworkTransactionFailuresCounterName is the prometheus metric for tracking transactions with a failed outcome
var NetworkTransactionFailuresCounterName = "nm_network_transaction_failures_total"

// NetworkQueriesCounterName is the prometheus metric for tracking the total number of view queries
var NetworkQueriesCounterName = "nm_network_queries_total"

// NetworkTransactionHistogramName is the prometheus metric for the submit-to-final time of transactions
var NetworkTransactionHistogramName = "nm_network_transaction_seconds"

var ReceiverLabelName = "receiver"
var MethodNameLabelName = "methodName"

func InitNetworkMetrics() {
	NetworkTransactionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: NetworkTransactionsCounterName,
		Help: "Number of transactions submitted",
	}, []string{ReceiverLabelName, MethodNameLabelName})
	NetworkTransactionFailuresCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: NetworkTransactionFailuresCounterName,
		Help: "Number of transactions that failed",
	}, []string{ReceiverLabelName, MethodNameLabelName})
	NetworkQueriesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: NetworkQueriesCounterName,
		Help: "Number of view queries",
	}, []string{ReceiverLabelName, MethodNameLabelName})
	NetworkTransactionHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    NetworkTransactionHistogramName,
		Help:    "Time from submission to final execution outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{MethodNameLabelName})
}

func RegisterNetworkMetrics() {
	registry.MustRegister(NetworkTransactionsCounter)
	registry.MustRegister(NetworkTransactionFailuresCounter)
	registry.MustRegister(NetworkQueriesCounter)
	registry.MustRegister(NetworkTransactionHistogram)
}
