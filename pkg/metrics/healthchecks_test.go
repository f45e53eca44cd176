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

package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/oceanops/capstan/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func resetMetrics() {
	metrics.HealthChecks.Clear()
	metrics.ResetRegistry()
}

func TestNewHealthCheck(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	var ping metrics.RunHealthCheck = func() error {
		return nil
	}

	opts := prometheus.GaugeOpts{
		Name: "ping",
		Help: "ping always succeeds",
	}
	pingCheck := metrics.NewHealthCheck(opts, 0, ping)

	if pingCheck.Name() != prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name) {
		t.Errorf("%v != %v", pingCheck.Name(), prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name))
	}
	if pingCheck.Help() != opts.Help {
		t.Errorf("Help : %v", pingCheck.Help())
	}
	if pingCheck.LastResult() != nil {
		t.Errorf("the healthcheck has not been run : %v", pingCheck.LastResult())
	}
	if pingCheck.Scheduled() {
		t.Error("the healthcheck has no run interval and should not be scheduled")
	}

	result := pingCheck.Run()
	if !result.Success() {
		t.Errorf("ping should always succeed : %v", result)
	}
	if result.Value() != metrics.HEALTHCHECK_SUCCESS {
		t.Errorf("result value : %v", result.Value())
	}
	if result.Time != pingCheck.LastResult().Time {
		t.Errorf("Last result did not match : %v != %v", result, pingCheck.LastResult())
	}

	// the healthcheck status is reported as a gauge
	gathered, err := metrics.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	family := metrics.FindMetricFamilyByName(gathered, "ping")
	if family == nil {
		t.Fatal("the healthcheck status gauge should be registered")
	}
	if value := family.GetMetric()[0].GetGauge().GetValue(); value != float64(metrics.HEALTHCHECK_SUCCESS) {
		t.Errorf("status gauge value : %v", value)
	}
	if metrics.FindMetricFamilyByName(gathered, "ping_duration_seconds") == nil {
		t.Error("the healthcheck run duration gauge should be registered")
	}

	if len(metrics.HealthChecks.HealthChecks()) != 1 {
		t.Errorf("HealthChecks : %v", metrics.HealthChecks.HealthChecks())
	}
	if len(metrics.HealthChecks.SucceededHealthChecks()) != 1 {
		t.Errorf("SucceededHealthChecks : %v", metrics.HealthChecks.SucceededHealthChecks())
	}
	if len(metrics.HealthChecks.FailedHealthChecks()) != 0 {
		t.Errorf("FailedHealthChecks : %v", metrics.HealthChecks.FailedHealthChecks())
	}
}

func TestNewHealthCheck_Failing(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	var failing metrics.RunHealthCheck = func() error {
		return errors.New("connection refused")
	}

	check := metrics.NewHealthCheck(prometheus.GaugeOpts{
		Name: "datastore_conn",
		Help: "checks the NATS connection",
	}, 0, failing)

	result := check.Run()
	if result.Success() {
		t.Errorf("the healthcheck should have failed : %v", result)
	}
	if result.Value() != metrics.HEALTHCHECK_FAILURE {
		t.Errorf("result value : %v", result.Value())
	}
	if len(metrics.HealthChecks.FailedHealthChecks()) != 1 {
		t.Errorf("FailedHealthChecks : %v", metrics.HealthChecks.FailedHealthChecks())
	}

	// running all failed healthchecks re-runs the check
	count := 0
	for range metrics.HealthChecks.RunAllFailedHealthChecks() {
		count++
	}
	if count != 1 {
		t.Errorf("RunAllFailedHealthChecks : %d", count)
	}
}

func TestNewHealthCheck_Panicking(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	var panicking metrics.RunHealthCheck = func() error {
		panic("BOOM")
	}

	check := metrics.NewHealthCheck(prometheus.GaugeOpts{
		Name: "panicking",
		Help: "a panicking healthcheck fails",
	}, 0, panicking)

	result := check.Run()
	if result.Success() {
		t.Error("a panic should be reported as a failure")
	}
	if result.Err == nil {
		t.Error("the failure cause should be set")
	}
}

func TestNewHealthCheck_WithNilRunFunc(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	shouldPanic(t, "creating a healthcheck with a nil run func should panic", func() {
		metrics.NewHealthCheck(prometheus.GaugeOpts{Name: "ping", Help: "ping"}, 0, nil)
	})
}

func TestNewHealthCheck_AlreadyRegistered(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	var ping metrics.RunHealthCheck = func() error {
		return nil
	}
	opts := prometheus.GaugeOpts{Name: "ping", Help: "ping always succeeds"}
	metrics.NewHealthCheck(opts, 0, ping)

	shouldPanic(t, "registering the same healthcheck twice should panic", func() {
		metrics.NewHealthCheck(opts, 0, ping)
	})
}

func TestNewHealthCheckVector(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	var ping metrics.RunHealthCheck = func() error {
		return nil
	}

	opts := &metrics.GaugeVecOpts{
		GaugeOpts: &prometheus.GaugeOpts{
			Name: "db_conn",
			Help: "checks the database connection",
		},
		Labels: []string{"db"},
	}
	check := metrics.NewHealthCheckVector(opts, 0, ping, []string{"releases"})

	if check.Labels()["db"] != "releases" {
		t.Errorf("Labels : %v", check.Labels())
	}
	// the key carries the label values plus the healthcheck marker label
	if key := check.Key().String(); key != "db_conn[db=releases healthcheck=status]" {
		t.Errorf("Key : %v", key)
	}

	result := check.Run()
	if !result.Success() {
		t.Errorf("the healthcheck should have succeeded : %v", result)
	}

	// a second instance with different label values is a separate healthcheck
	check2 := metrics.NewHealthCheckVector(opts, 0, ping, []string{"events"})
	if check2.Key().String() == check.Key().String() {
		t.Error("the healthcheck keys should differ")
	}
	if len(metrics.HealthChecks.HealthChecks()) != 2 {
		t.Errorf("HealthChecks : %v", metrics.HealthChecks.HealthChecks())
	}

	shouldPanic(t, "label values must match the declared labels", func() {
		metrics.NewHealthCheckVector(opts, 0, ping, []string{"a", "b"})
	})
}

func TestHealthCheck_Scheduler(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	runs := make(chan struct{}, 16)
	var ping metrics.RunHealthCheck = func() error {
		select {
		case runs <- struct{}{}:
		default:
		}
		return nil
	}

	check := metrics.NewHealthCheck(prometheus.GaugeOpts{
		Name: "scheduled_ping",
		Help: "a scheduled ping",
	}, 10*time.Millisecond, ping)

	if !check.Scheduled() {
		t.Error("the healthcheck should be scheduled")
	}
	if check.RunInterval() != 10*time.Millisecond {
		t.Errorf("RunInterval : %v", check.RunInterval())
	}

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("the scheduler should have run the healthcheck")
	}

	check.StopScheduler()
	if check.Scheduled() {
		t.Error("the scheduler should be stopped")
	}

	// restarting the scheduler resumes the periodic runs
	check.StartScheduler()
	if !check.Scheduled() {
		t.Error("the scheduler should be running again")
	}
	check.StopScheduler()
}

func TestHealthCheckRegistry_RunAllHealthChecks(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	var ping metrics.RunHealthCheck = func() error {
		return nil
	}
	var failing metrics.RunHealthCheck = func() error {
		return errors.New("FAIL")
	}

	metrics.NewHealthCheck(prometheus.GaugeOpts{Name: "check_1", Help: "check 1"}, 0, ping)
	metrics.NewHealthCheck(prometheus.GaugeOpts{Name: "check_2", Help: "check 2"}, 0, failing)

	count := 0
	for healthcheck := range metrics.HealthChecks.RunAllHealthChecks() {
		count++
		if healthcheck.LastResult() == nil {
			t.Errorf("the healthcheck should have been run : %v", healthcheck)
		}
	}
	if count != 2 {
		t.Errorf("RunAllHealthChecks : %d", count)
	}

	if len(metrics.HealthChecks.FailedHealthChecks()) != 1 {
		t.Errorf("FailedHealthChecks : %v", metrics.HealthChecks.FailedHealthChecks())
	}
	if len(metrics.HealthChecks.SucceededHealthChecks()) != 1 {
		t.Errorf("SucceededHealthChecks : %v", metrics.HealthChecks.SucceededHealthChecks())
	}
}
