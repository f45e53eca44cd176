// Copyright (c) 2026 The Capstan Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
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

// MetricType is an enum for the supported metric types
type MetricType int

// MetricType enum values
const (
	UNKNOWN MetricType = iota

	COUNTER
	GAUGE

	COUNTERVEC
	GAUGEVEC
)

// Value returns the enum int value
func (a MetricType) Value() int {
	return int(a)
}

func (a MetricType) String() string {
	switch a {
	case COUNTER:
		return "Counter"
	case GAUGE:
		return "Gauge"
	case COUNTERVEC:
		return "CounterVec"
	case GAUGEVEC:
		return "GaugeVec"
	default:
		return "UNKNOWN"
	}
}

// Counter pairs a registered counter with its opts
type Counter struct {
	prometheus.Counter
	*prometheus.CounterOpts
}

// CounterVec pairs a registered counter vector with its opts
type CounterVec struct {
	*prometheus.CounterVec
	*CounterVecOpts
}

// Gauge pairs a registered gauge with its opts
type Gauge struct {
	prometheus.Gauge
	*prometheus.GaugeOpts
}

// GaugeVec pairs a registered gauge vector with its opts
type GaugeVec struct {
	*prometheus.GaugeVec
	*GaugeVecOpts
}

// CounterVecOpts are the opts for a counter vector metric
type CounterVecOpts struct {
	*prometheus.CounterOpts
	Labels []string
}

// GaugeVecOpts are the opts for a gauge vector metric
type GaugeVecOpts struct {
	*prometheus.GaugeOpts
	Labels []string
}

// MetricOpts groups the metrics that a service defines
type MetricOpts struct {
	CounterOpts    []*prometheus.CounterOpts
	CounterVecOpts []*CounterVecOpts

	GaugeOpts    []*prometheus.GaugeOpts
	GaugeVecOpts []*GaugeVecOpts
}
