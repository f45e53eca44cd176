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
	"strings"
)

// InvalidStateTransition indicates an invalid transition was attempted
type InvalidStateTransition struct {
	From State
	To   State
}

func (e *InvalidStateTransition) Error() string {
	return fmt.Sprintf("InvalidStateTransition: %v -> %v", e.From, e.To)
}

// IllegalStateError indicates we are in an illegal state
type IllegalStateError struct {
	State
	Message string
}

func (e *IllegalStateError) Error() string {
	if e.Message == "" {
		return e.State.String()
	}
	return fmt.Sprintf("%v : %v", e.State, e.Message)
}

// UnknownFailureCause indicates that the service is in a Failed state, but the failure cause is unknown.
type UnknownFailureCause struct{}

func (e UnknownFailureCause) Error() string {
	return "UnknownFailureCause"
}

// PastStateError indicates that we are currently in a state that is past the desired state
type PastStateError struct {
	Past    State
	Current State
}

func (e *PastStateError) Error() string {
	return fmt.Sprintf("Current state (%v) is past state (%v)", e.Current, e.Past)
}

// ServiceError contains the error and the state the service was in when the error occurred
type ServiceError struct {
	// State in which the error occurred
	State
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%v : %v", e.State, e.Err)
}

// PanicError wraps a trapped panic along with supplemental info about the context of the panic
type PanicError struct {
	Panic interface{}
	// additional info
	Message string
}

func (e *PanicError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("panic: %v : %v", e.Panic, e.Message)
	}
	return fmt.Sprintf("panic: %v", e.Panic)
}

// ServiceNotFoundError occurs when no service is registered under the name.
type ServiceNotFoundError struct {
	Name string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("Service not found : %v", e.Name)
}

// FactoryNotRegisteredError occurs when a release manifest names a processapp
// registration key that no service factory was registered for.
type FactoryNotRegisteredError struct {
	App string
	Key string
}

func (e *FactoryNotRegisteredError) Error() string {
	return fmt.Sprintf("app %q : no service factory is registered for processapp key %q", e.App, e.Key)
}

// ServiceAlreadyRegisteredError occurs when a service is registered under a
// name that is already taken.
type ServiceAlreadyRegisteredError struct {
	Name string
}

func (e *ServiceAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("Service is already registered : %v", e.Name)
}

// DependencyMappings maps a service to its service dependencies
type DependencyMappings struct {
	Name         string
	Dependencies []string
}

func (a *DependencyMappings) addDependency(dependency string) {
	if !a.contains(dependency) {
		a.Dependencies = append(a.Dependencies, dependency)
	}
}

func (a *DependencyMappings) contains(dependency string) bool {
	for _, v := range a.Dependencies {
		if v == dependency {
			return true
		}
	}
	return false
}

func (a *DependencyMappings) String() string {
	return fmt.Sprintf("%v -> %v", a.Name, a.Dependencies)
}

// ServiceDependenciesMissing indicates that a service's dependencies are not registered
type ServiceDependenciesMissing struct {
	*DependencyMappings
}

func (a *ServiceDependenciesMissing) Error() string {
	return fmt.Sprintf("Service dependencies are missing : %v", a.DependencyMappings)
}

// AddMissingDependency adds the missing dependency, if it has not already been added
func (a *ServiceDependenciesMissing) AddMissingDependency(dependency string) {
	a.addDependency(dependency)
}

// Missing returns true if the service is missing the specified dependency
func (a *ServiceDependenciesMissing) Missing(dependency string) bool {
	return a.contains(dependency)
}

// HasMissing returns true if the service has any missing dependencies
func (a *ServiceDependenciesMissing) HasMissing() bool {
	return len(a.Dependencies) > 0
}

// ServiceDependenciesNotRunning indicates that a service's dependencies are registered, but not running
type ServiceDependenciesNotRunning struct {
	*DependencyMappings
}

func (a *ServiceDependenciesNotRunning) Error() string {
	return fmt.Sprintf("Service dependencies are not running : %v", a.DependencyMappings)
}

// AddDependencyNotRunning adds the dependency, if it has not already been added
func (a *ServiceDependenciesNotRunning) AddDependencyNotRunning(dependency string) {
	a.addDependency(dependency)
}

// NotRunning returns true if the specified dependency is not running
func (a *ServiceDependenciesNotRunning) NotRunning(dependency string) bool {
	return a.contains(dependency)
}

// HasNotRunning returns true if the service has any dependencies that are not running
func (a *ServiceDependenciesNotRunning) HasNotRunning() bool {
	return len(a.Dependencies) > 0
}

// ServiceDependencyErrors aggregates service dependency related errors. The types of errors are :
//  1. ServiceDependenciesMissing
//  2. ServiceDependenciesNotRunning
type ServiceDependencyErrors struct {
	Errors []error
}

func (a *ServiceDependencyErrors) Error() string {
	errorMessages := make([]string, len(a.Errors))
	for i, v := range a.Errors {
		errorMessages[i] = v.Error()
	}
	return fmt.Sprintf("Error count = %d : %v", len(errorMessages), strings.Join(errorMessages, " | "))
}

// HasErrors returns true if there are any dependency related errors
func (a *ServiceDependencyErrors) HasErrors() bool {
	return len(a.Errors) > 0
}
