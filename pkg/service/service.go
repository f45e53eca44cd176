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

package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver"
	"github.com/oceanops/capstan/pkg/commons"
	"github.com/oceanops/capstan/pkg/logging"
	"github.com/oceanops/capstan/pkg/metrics"
	"github.com/rs/zerolog"
)

var logger = logging.NewPackageLogger("service")

// Service is a supervised unit of work within the container.
// Use NewService() to create a new instance.
type Service interface {
	Desc() *Descriptor

	// Name is the service's registration name, i.e., the app name from the release manifest
	Name() string

	StartAsync() error

	Stop()
	StopAsync()

	StopTriggered() bool
	StopTrigger() StopTrigger

	AwaitUntilRunning() error
	AwaitRunning(wait time.Duration) error

	AwaitUntilStopped() error
	AwaitStopped(wait time.Duration) error

	State() State
	FailureCause() error

	Logger() zerolog.Logger

	Dependencies() Dependencies

	// Config is the service's config payload from the release manifest - nil if the service has none
	Config() map[string]interface{}

	HealthChecks

	// MetricOpts define the service related metrics
	MetricOpts() *metrics.MetricOpts
}

// Dependencies represents a service's dependencies with version constraints,
// keyed by the dependency's registration name. A nil constraint means any version is acceptable.
type Dependencies map[string]*semver.Constraints

// HealthChecks groups the service's health check operations
type HealthChecks interface {
	HealthChecks() []metrics.HealthCheck

	FailedHealthChecks() []metrics.HealthCheck

	SucceededHealthChecks() []metrics.HealthCheck

	RunAllHealthChecks() <-chan metrics.HealthCheck

	RunAllFailedHealthChecks() <-chan metrics.HealthCheck
}

// service drives the Init -> Run -> Destroy lifecycle in its own goroutine.
// State transitions flow through ServiceState and are logged async as
// STATE_CHANGED events, so log goroutines may not flush if the process
// exits immediately after shutdown. Each service carries its own logger,
// its manifest config payload, and its declared dependencies.
//
// Services must be thread safe: structure them as message processors over
// channels and let the Run func own any mutable state.
type service struct {
	*Descriptor

	lifeCycle

	logger zerolog.Logger

	dependencies Dependencies

	config map[string]interface{}

	healthchecks []metrics.HealthCheck

	metricOpts *metrics.MetricOpts
}

// lifeCycle holds the service's state machine and its backend funcs
type lifeCycle struct {
	serviceState *ServiceState

	stopTriggered bool
	// closed to signal the Run func that stop has been triggered
	stopTrigger chan struct{}

	init    Init
	run     Run
	destroy Destroy
}

// Context is handed to the lifecycle funcs and exposes the service they belong to
type Context struct {
	Service
}

// Init initializes the service during startup
type Init func(*Context) error

// Run performs the service's work until the StopTrigger channel is closed.
// Once the trigger fires, Run should return as soon as possible.
type Run func(*Context) error

// Destroy cleans up during service shutdown
type Destroy func(*Context) error

func (a *service) Desc() *Descriptor {
	return a.Descriptor
}

func (a *service) Name() string {
	return a.Descriptor.Component()
}

// guardPanics wraps a lifecycle func so that a panic surfaces as a PanicError
func guardPanics(f func(*Context) error, msg string) func(*Context) error {
	if f == nil {
		return func(ctx *Context) error { return nil }
	}
	return func(ctx *Context) (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = &PanicError{Panic: p, Message: msg}
			}
		}()
		return f(ctx)
	}
}

// NewService creates and returns a new Service instance in the 'New' state.
//
// Descriptor is required - the method panics if it is nil.
// All lifecycle funcs are optional; a missing Run simply blocks on the stop
// trigger. Panics raised by the supplied funcs are converted to PanicErrors.
func NewService(settings Settings) Service {
	checkSettings(&settings)

	init := guardPanics(settings.Init, "Service.init()")
	destroy := guardPanics(settings.Destroy, "Service.destroy()")
	var run Run
	if settings.Run == nil {
		run = func(ctx *Context) error {
			<-ctx.StopTrigger()
			return nil
		}
	} else {
		run = Run(guardPanics(settings.Run, "Service.run()"))
	}

	svcLog := logging.NewServiceLogger(settings.Descriptor.Component())
	if settings.LogOutput != nil {
		svcLog = svcLog.Output(settings.LogOutput)
	}
	if settings.LogLevel != nil {
		svcLog = svcLog.Level(*settings.LogLevel)
	}
	logSettings(svcLog.Info().Str(logging.FUNC, "NewService"), &settings).Msg("")

	svc := &service{
		Descriptor: settings.Descriptor,
		lifeCycle: lifeCycle{
			serviceState: NewServiceState(),
			init:         init,
			run:          run,
			destroy:      destroy,
		},
		logger:       svcLog,
		config:       settings.Config,
		healthchecks: settings.HealthChecks,
		metricOpts:   settings.Metrics,
	}
	if len(settings.Dependencies) > 0 {
		svc.dependencies = settings.Dependencies
	}
	if svc.metricOpts == nil {
		svc.metricOpts = &metrics.MetricOpts{}
	}
	return svc
}

// panics if settings are invalid
func checkSettings(settings *Settings) {
	if settings.Descriptor == nil {
		logger.Panic().Msg("Descriptor is required")
	}
	if settings.Descriptor.Version() == nil {
		logger.Panic().Str(logging.SERVICE, settings.Descriptor.Component()).Msgf("Version is required")
	}
}

func logSettings(log *zerolog.Event, settings *Settings) *zerolog.Event {
	log.Str(logging.NAMESPACE, settings.Namespace()).
		Str(logging.SYSTEM, settings.System()).
		Str(logging.COMPONENT, settings.Component()).
		Str(logging.VERSION, settings.Version().String())

	if settings.Dependencies != nil {
		deps := make([]string, 0, len(settings.Dependencies))
		for name, constraint := range settings.Dependencies {
			deps = append(deps, fmt.Sprintf("%v : %v", name, constraint))
		}
		log.Strs("Dependencies", deps)
	}
	if len(settings.HealthChecks) > 0 {
		names := make([]string, len(settings.HealthChecks))
		for i, healthcheck := range settings.HealthChecks {
			names[i] = healthcheck.Key().String()
		}
		log.Strs("HealthChecks", names)
	}
	if settings.Metrics != nil {
		log.Dict("Metrics", metricNamesDict(settings.Metrics))
	}

	return log
}

// metricNamesDict builds a log dict listing the fully qualified names of the
// service's declared metrics, grouped per metric kind
func metricNamesDict(opts *metrics.MetricOpts) *zerolog.Event {
	dict := zerolog.Dict()

	appendNames := func(key string, count int, name func(i int) string) {
		if count == 0 {
			return
		}
		names := make([]string, count)
		for i := range names {
			names[i] = name(i)
		}
		dict.Strs(key, names)
	}

	appendNames("Counters", len(opts.CounterOpts), func(i int) string {
		return metrics.CounterFQName(opts.CounterOpts[i])
	})
	appendNames("CounterVecs", len(opts.CounterVecOpts), func(i int) string {
		return metrics.CounterFQName(opts.CounterVecOpts[i].CounterOpts)
	})
	appendNames("Gauges", len(opts.GaugeOpts), func(i int) string {
		return metrics.GaugeFQName(opts.GaugeOpts[i])
	})
	appendNames("GaugeVecs", len(opts.GaugeVecOpts), func(i int) string {
		return metrics.GaugeFQName(opts.GaugeVecOpts[i].GaugeOpts)
	})

	return dict
}

// MetricOpts returns the service related metrics
func (a *service) MetricOpts() *metrics.MetricOpts {
	return a.metricOpts
}

// State returns the current State
func (a *service) State() State {
	state, _ := a.serviceState.State()
	return state
}

// FailureCause returns the error that caused the service to fail.
// The service State should be Failed.
func (a *service) FailureCause() error {
	return a.serviceState.FailureCause()
}

// awaitState blocks until the desired state is reached.
// A timeout <= 0 blocks indefinitely. Reaching a later state than desired
// yields a PastStateError, or the failure cause if the service failed.
func (a *service) awaitState(desiredState State, timeout time.Duration) error {
	matches := func(currentState State) (bool, error) {
		switch {
		case currentState == desiredState:
			return true, nil
		case currentState > desiredState:
			if a.State().Failed() {
				return false, a.FailureCause()
			}
			return false, &PastStateError{Past: desiredState, Current: currentState}
		default:
			return false, nil
		}
	}

	if reachedState, err := matches(a.State()); err != nil {
		return err
	} else if reachedState {
		return nil
	}

	l := a.serviceState.NewStateChangeListener()
	if timeout > 0 {
		timer := time.AfterFunc(timeout, l.Cancel)
		defer func() {
			timer.Stop()
			l.Cancel()
		}()
	} else {
		defer l.Cancel()
	}
	// seed the listener with the current state in case the transition raced
	// ahead of listener registration. The channel may already be closed if
	// the service failed, hence the panic guard.
	go func() {
		defer commons.IgnorePanic()
		if stateChangeChann := a.serviceState.stateChangeChannel(l); stateChangeChann != nil {
			stateChangeChann <- a.State()
		}
	}()
	for state := range l.Channel() {
		if reachedState, err := matches(state); err != nil {
			return err
		} else if reachedState {
			return nil
		}
	}

	return a.FailureCause()
}

// AwaitRunning waits for the Service to reach the running state
func (a *service) AwaitRunning(wait time.Duration) error {
	return a.awaitState(Running, wait)
}

// AwaitUntilRunning waits for the Service to reach the running state
func (a *service) AwaitUntilRunning() error {
	i := 0
	for {
		if err := a.AwaitRunning(10 * time.Second); err != nil {
			return err
		}
		if a.State().Running() {
			return nil
		}
		i++
		a.logger.Info().Str(logging.FUNC, "AwaitUntilRunning").Int("i", i).Msg("")
	}
}

// AwaitStopped waits for the Service to terminate, i.e., reach the Terminated or Failed state
// if the service terminates in a Failed state, then the service failure cause is returned
func (a *service) AwaitStopped(wait time.Duration) error {
	if err := a.awaitState(Terminated, wait); err != nil {
		return a.FailureCause()
	}
	return nil
}

// AwaitUntilStopped waits until the service is stopped
// If the service failed, then the failure cause is returned
func (a *service) AwaitUntilStopped() error {
	if a.State().Stopped() {
		return a.FailureCause()
	}
	i := 0
	for {
		a.AwaitStopped(10 * time.Second)
		if a.State().Stopped() {
			return a.FailureCause()
		}
		i++
		a.logger.Debug().Str(logging.FUNC, "AwaitUntilStopped").Int("i", i).Msg("")
	}
}

// StartAsync initiates service startup and returns immediately.
// Returns an IllegalStateError unless the service state is 'New'.
// A stopped service may not be restarted - construct a new instance instead.
func (a *service) StartAsync() error {
	const FUNC = "StartAsync"

	if !a.serviceState.state.New() {
		err := &IllegalStateError{
			State:   a.serviceState.state,
			Message: "A service can only be started in the 'New' state",
		}
		a.logger.Info().Str(logging.FUNC, FUNC).Err(err).Msg("")
		return err
	}

	// log state changes async - wait for the goroutine to start before proceeding
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		wait.Done()
		l := a.lifeCycle.serviceState.NewStateChangeListener()
		for stateChange := range l.Channel() {
			a.logger.Info().
				Dict(logging.EVENT, STATE_CHANGED.Dict()).
				Str(logging.STATE, stateChange.String()).
				Msg("")
		}
	}()
	wait.Wait()

	go func() {
		a.stopTrigger = make(chan struct{})
		ctx := &Context{a}
		a.serviceState.Starting()
		if err := a.init(ctx); err != nil {
			a.destroy(ctx)
			a.serviceState.Failed(&ServiceError{State: Starting, Err: err})
			return
		}
		a.serviceState.Running()
		if err := a.run(ctx); err != nil {
			a.destroy(ctx)
			a.serviceState.Failed(&ServiceError{State: Running, Err: err})
			return
		}
		a.serviceState.Stopping()
		if err := a.destroy(ctx); err != nil {
			a.serviceState.Failed(&ServiceError{State: Stopping, Err: err})
			return
		}
		a.serviceState.Terminated()
	}()

	a.logger.Info().Str(logging.FUNC, FUNC).Msg("")

	return nil
}

// StopAsync initiates service shutdown and returns immediately.
// A service that was never started is terminated directly.
// Stopping an already stopped service is a no-op.
func (a *service) StopAsync() {
	const FUNC = "StopAsync"
	if a.serviceState.state.Stopped() {
		a.logger.Info().Str(logging.FUNC, FUNC).Msg("service is already stopped")
		return
	}
	a.stopTriggered = true
	if a.serviceState.state.New() {
		a.serviceState.Terminated()
		a.logger.Info().Str(logging.FUNC, FUNC).Msg("service was never started")
		return
	}
	commons.CloseQuietly(a.stopTrigger)

	a.logger.Info().Str(logging.FUNC, FUNC).Dict(logging.EVENT, STOP_TRIGGERED.Dict()).Msg("")
}

// Stop invokes StopAsync() followed by AwaitUntilStopped()
func (a *service) Stop() {
	if a.State().Stopped() {
		return
	}
	a.StopAsync()
	a.AwaitUntilStopped()
}

// StopTriggered returns true if the service was triggered to stop.
func (a *service) StopTriggered() bool {
	return a.stopTriggered
}

// StopTrigger returns the channel to listen on for the stop signal
func (a *service) StopTrigger() StopTrigger {
	return a.stopTrigger
}

// Logger returns the service's logger
func (a *service) Logger() zerolog.Logger {
	return a.logger
}

// Dependencies returns the service's dependencies
func (a *service) Dependencies() Dependencies {
	return a.dependencies
}

// Config returns the service's config payload from the release manifest
func (a *service) Config() map[string]interface{} {
	return a.config
}

func (a *service) String() string {
	return fmt.Sprintf("Service : %v", a.Descriptor.ID())
}

func (a *service) HealthChecks() []metrics.HealthCheck {
	return a.healthchecks
}

// FailedHealthChecks returns the health checks whose last run failed.
// Checks that have never run are not included.
func (a *service) FailedHealthChecks() []metrics.HealthCheck {
	failed := []metrics.HealthCheck{}
	for _, healthcheck := range a.healthchecks {
		if healthcheck.LastResult() != nil && !healthcheck.LastResult().Success() {
			failed = append(failed, healthcheck)
		}
	}
	return failed
}

// SucceededHealthChecks returns the health checks whose last run succeeded
func (a *service) SucceededHealthChecks() []metrics.HealthCheck {
	succeeded := []metrics.HealthCheck{}
	for _, healthcheck := range a.healthchecks {
		if healthcheck.LastResult() != nil && healthcheck.LastResult().Success() {
			succeeded = append(succeeded, healthcheck)
		}
	}
	return succeeded
}

// RunAllHealthChecks runs the service's health checks concurrently,
// delivering each on the returned channel as it completes
func (a *service) RunAllHealthChecks() <-chan metrics.HealthCheck {
	return runHealthChecks(a.healthchecks)
}

// RunAllFailedHealthChecks re-runs the health checks whose last run failed
func (a *service) RunAllFailedHealthChecks() <-chan metrics.HealthCheck {
	return runHealthChecks(a.FailedHealthChecks())
}

func runHealthChecks(healthchecks []metrics.HealthCheck) <-chan metrics.HealthCheck {
	c := make(chan metrics.HealthCheck, len(healthchecks))
	wait := sync.WaitGroup{}
	wait.Add(len(healthchecks))

	for _, healthcheck := range healthchecks {
		go func(healthcheck metrics.HealthCheck) {
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

// StopTrigger signals the service to stop. Closing the channel is the signal.
type StopTrigger <-chan struct{}

// ServiceConstructor returns a new instance of a Service in the New state
type ServiceConstructor func() Service

// ServiceReference represents something that has a reference to a service.
type ServiceReference interface {
	Service() Service
}