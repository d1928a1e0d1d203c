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

var DeployStepsCounter *prometheus.CounterVec
var DeployStepHistogram *prometheus.HistogramVec

// DeployStepsCounterName is the prometheus metric for tracking setup steps by outcome
var DeployStepsCounterName = "nm_deploy_steps_total"

// DeployStepHistogramName is the prometheus metric for the duration of each setup step
var DeployStepHistogramName = "nm_deploy_step_seconds"

var StepLabelName = "step"
var StatusLabelName = "status"

func InitDeployMetrics() {
	DeployStepsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: DeployStepsCounterName,
		Help: "Number of deployment steps executed, by status",
	}, []string{StepLabelName, StatusLabelName})
	DeployStepHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    DeployStepHistogramName,
		Help:    "Duration of deployment steps",
		Buckets: prometheus.DefBuckets,
	}, []string{StepLabelName})
}

func RegisterDeployMetrics() {
	registry.MustRegister(DeployStepsCounter)
	registry.MustRegister(DeployStepHistogram)
}
