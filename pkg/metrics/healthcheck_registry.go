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
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HealthCheckRegistry is a HealthCheck registry.
// HealthChecks are registered via one of the NewHealthCheck methods.
type HealthCheckRegistry struct {
	sync.RWMutex
	healthchecks map[string]HealthCheck
}

// NewHealthCheck creates, registers, and returns a new HealthCheck.
// check is required - panics if nil.
// Panics if the healthcheck, or a metric sharing its name, is already registered.
func (a *HealthCheckRegistry) NewHealthCheck(opts prometheus.GaugeOpts, runInterval time.Duration, check RunHealthCheck) HealthCheck {
	a.Lock()
	defer a.Unlock()

	key := GaugeFQName(&opts)
	if _, exists := a.healthchecks[key]; exists {
		logger.Panic().Msgf("HealthCheck is already registered for : %q", key)
	}

	if check == nil {
		logger.Panic().Msg("check is required")
	}

	if Registered(key) {
		logger.Panic().Err(ErrMetricAlreadyRegistered).Msg("")
	}

	opts.ConstLabels = addLabels(healthcheckLabelsStatus, opts.ConstLabels)

	h := &healthcheck{
		opts:        opts,
		run:         check,
		status:      GetOrMustRegisterGauge(&opts),
		runInterval: runInterval,
	}

	durationOpts := durationGaugeOpts(&opts)
	if Registered(GaugeFQName(durationOpts)) {
		logger.Panic().Err(ErrMetricAlreadyRegistered).Msg("")
	}

	h.runDuration = GetOrMustRegisterGauge(durationOpts)
	h.StartScheduler()
	a.healthchecks[key] = h

	return h
}

// NewHealthCheckVector creates, registers, and returns a new HealthCheck instance
// bound to the given label values.
// check is required - panics if nil.
// Panics unless the label values match the labels declared in the GaugeVecOpts.
func (a *HealthCheckRegistry) NewHealthCheckVector(opts *GaugeVecOpts, runInterval time.Duration, check RunHealthCheck, labelValues []string) HealthCheck {
	a.Lock()
	defer a.Unlock()

	key := strings.Join([]string{GaugeFQName(opts.GaugeOpts), strings.Join(labelValues, "")}, "")
	if _, exists := a.healthchecks[key]; exists {
		logger.Panic().Msgf("HealthCheck vector is already registered for : %q -> %q", GaugeFQName(opts.GaugeOpts), labelValues)
	}

	if check == nil {
		logger.Panic().Msg("check is required")
	}

	if len(opts.Labels) == 0 {
		logger.Panic().Msgf("Labels are required : %v", GaugeFQName(opts.GaugeOpts))
	}

	if len(labelValues) != len(opts.Labels) {
		logger.Panic().Msgf("The number of label values must match the number of labels defined in the GaugeVecOpts : %v : %v", opts.Labels, labelValues)
	}

	opts.ConstLabels = addLabels(healthcheckLabelsStatus, opts.ConstLabels)

	h := &healthcheck{
		opts:        *opts.GaugeOpts,
		labels:      opts.Labels,
		labelValues: labelValues,
		run:         check,
		status:      GetOrMustRegisterGaugeVec(opts).WithLabelValues(labelValues...),
		runInterval: runInterval,
	}

	durationOpts := &GaugeVecOpts{durationGaugeOpts(opts.GaugeOpts), opts.Labels}
	h.runDuration = GetOrMustRegisterGaugeVec(durationOpts).WithLabelValues(labelValues...)
	h.StartScheduler()
	a.healthchecks[key] = h
	return h
}

// durationGaugeOpts derives the opts for the companion run-duration gauge :
// {name}_duration_seconds, tagged with the duration healthcheck label
func durationGaugeOpts(opts *prometheus.GaugeOpts) *prometheus.GaugeOpts {
	return &prometheus.GaugeOpts{
		Namespace:   opts.Namespace,
		Subsystem:   opts.Subsystem,
		Name:        fmt.Sprintf("%s_duration_seconds", opts.Name),
		Help:        "The healthcheck run duration in seconds",
		ConstLabels: addLabels(healthcheckLabelsDuration, opts.ConstLabels),
	}
}

func addLabels(from prometheus.Labels, to prometheus.Labels) prometheus.Labels {
	if len(to) == 0 {
		return from
	}

	labels := prometheus.Labels{}
	for k, v := range to {
		labels[k] = v
	}
	for k, v := range from {
		labels[k] = v
	}
	return labels
}

// HealthChecks returns all currently registered healthchecks
func (a *HealthCheckRegistry) HealthChecks() []HealthCheck {
	a.RLock()
	defer a.RUnlock()
	healthchecks := make([]HealthCheck, 0, len(a.healthchecks))
	for _, healthcheck := range a.healthchecks {
		healthchecks = append(healthchecks, healthcheck)
	}
	return healthchecks
}

// FailedHealthChecks returns the healthchecks whose last run failed.
// Healthchecks that have never run are not included.
func (a *HealthCheckRegistry) FailedHealthChecks() []HealthCheck {
	a.RLock()
	defer a.RUnlock()
	return a.failedHealthChecks()
}

func (a *HealthCheckRegistry) failedHealthChecks() []HealthCheck {
	failed := []HealthCheck{}
	for _, healthcheck := range a.healthchecks {
		if healthcheck.LastResult() != nil && !healthcheck.LastResult().Success() {
			failed = append(failed, healthcheck)
		}
	}
	return failed
}

// SucceededHealthChecks returns the healthchecks whose last run succeeded
func (a *HealthCheckRegistry) SucceededHealthChecks() []HealthCheck {
	a.RLock()
	defer a.RUnlock()
	succeeded := []HealthCheck{}
	for _, healthcheck := range a.healthchecks {
		if healthcheck.LastResult() != nil && healthcheck.LastResult().Success() {
			succeeded = append(succeeded, healthcheck)
		}
	}
	return succeeded
}

// RunAllHealthChecks runs every registered healthcheck concurrently,
// delivering each on the returned channel as it completes
func (a *HealthCheckRegistry) RunAllHealthChecks() <-chan HealthCheck {
	a.RLock()
	defer a.RUnlock()
	healthchecks := make([]HealthCheck, 0, len(a.healthchecks))
	for _, healthcheck := range a.healthchecks {
		healthchecks = append(healthchecks, healthcheck)
	}
	return runRegisteredChecks(healthchecks)
}

// RunAllFailedHealthChecks re-runs the healthchecks whose last run failed
func (a *HealthCheckRegistry) RunAllFailedHealthChecks() <-chan HealthCheck {
	a.RLock()
	defer a.RUnlock()
	return runRegisteredChecks(a.failedHealthChecks())
}

func runRegisteredChecks(healthchecks []HealthCheck) <-chan HealthCheck {
	c := make(chan HealthCheck, len(healthchecks))
	wait := sync.WaitGroup{}
	wait.Add(len(healthchecks))

	for _, healthcheck := range healthchecks {
		go func(healthcheck HealthCheck) {
			defer func() {
				c <- healthcheck
				wait.Done()
			}()
			healthcheck.Run()
		}(healthcheck)
	}

	go func() {
		wait.Wait()
		close(c)
	}()

	return c
}

// StopAllHealthCheckSchedulers stops the scheduler for every registered healthcheck
func (a *HealthCheckRegistry) StopAllHealthCheckSchedulers() {
	a.RLock()
	defer a.RUnlock()
	for _, c := range a.healthchecks {
		c.StopScheduler()
	}
}

// StartAllHealthCheckSchedulers starts the scheduler for every registered healthcheck
func (a *HealthCheckRegistry) StartAllHealthCheckSchedulers() {
	a.RLock()
	defer a.RUnlock()
	for _, c := range a.healthchecks {
		c.StartScheduler()
	}
}

// Clear stops all schedulers and empties the registry - exposed for testing
func (a *HealthCheckRegistry) Clear() {
	a.Lock()
	defer a.Unlock()
	for _, c := range a.healthchecks {
		c.StopScheduler()
	}
	a.healthchecks = make(map[string]HealthCheck)
}