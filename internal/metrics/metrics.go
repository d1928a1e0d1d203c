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
	"time"

	"github.com/kaleido-io/nftmarket/internal/config"
)

type Manager interface {
	TransactionSubmitted(receiver, methodName string)
	TransactionFailed(receiver, methodName string)
	TransactionDuration(methodName string, d time.Duration)
	QueryIssued(receiver, methodName string)
	DeployStep(step, status string, d time.Duration)
	IsMetricsEnabled() bool
}

type metricsManager struct {
	metricsEnabled bool
}

func NewMetricsManager() Manager {
	mm := &metricsManager{
		metricsEnabled: config.GetBool(config.MetricsEnabled),
	}
	if mm.metricsEnabled {
		Registry()
	}
	return mm
}

func (mm *metricsManager) IsMetricsEnabled() bool {
	return mm.metricsEnabled
}

func (mm *metricsManager) TransactionSubmitted(receiver, methodName string) {
	if mm.metricsEnabled {
		NetworkTransactionsCounter.WithLabelValues(receiver, methodName).Inc()
	}
}

func (mm *metricsManager) TransactionFailed(receiver, methodName string) {
	if mm.metricsEnabled {
		NetworkTransactionFailuresCounter.WithLabelValues(receiver, methodName).Inc()
	}
}

func (mm *metricsManager) TransactionDuration(methodName string, d time.Duration) {
	if mm.metricsEnabled {
		NetworkTransactionHistogram.WithLabelValues(methodName).Observe(d.Seconds())
	}
}

func (mm *metricsManager) QueryIssued(receiver, methodName string) {
	if mm.metricsEnabled {
		NetworkQueriesCounter.WithLabelValues(receiver, methodName).Inc()
	}
}

func (mm *metricsManager) DeployStep(step, status string, d time.Duration) {
	if mm.metricsEnabled {
		DeployStepsCounter.WithLabelValues(step, status).Inc()
		DeployStepHistogram.WithLabelValues(step).Observe(d.Seconds())
	}
}
