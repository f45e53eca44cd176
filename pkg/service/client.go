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
	"sync"

	"github.com/oceanops/capstan/pkg/manifest"
)

// Client represents the service from the client's perspective. It follows the client-server design pattern.
//
// The client instance is stable, meaning when retrieved from the Application, the same instance is returned.
// The backend service instance is not stable - meaning the instance may change over time, i.e. when restarted.
//
// The client and server instances are decoupled using channels to communicate. Each client method should use
// a typed channel to communicate with the "backend" service reference. The backend service's Run function becomes a message processor.
//
// Client Implementation Design Pattern:
// 1. create a client struct
//    - embed RestartableService, which provides the ServiceReference and Restartable functionality
//    - for each client method, define a channel and corresponding request and response messages
//    - implement the client method using the channel to communicate with the backend service
// 2. implement service life cycle functions (Init, Run, Destroy) as needed
//    - Init
//      - lookup service dependencies
//      - register additional services
//      - initialize resources
//    - Run
//      - process service messages
//      - exit when shutdown is triggered
//    - Destroy
//      - clean up any resources created by the service
// 3. create a ClientConstructor function, or a ServiceFactory when the service is booted from a release manifest
type Client interface {
	ServiceReference

	Restartable
}

// Restartable provides the ability to restart a service
type Restartable interface {
	// Restart restarts the service. Because a stopped service may not be started, a new backend service
	// instance is created and started.
	Restart()

	// RestartCount returns the number of times the service has been restarted
	RestartCount() int
}

// ClientConstructor is a service factory function that will construct a new Client and return it.
// The returned client's service will be in a New state.
// The constructor is given the application that is creating the client, i.e., the client will be managed by the given application.
//
// Use cases for making the application available to the client :
// 1. The client uses the application to lookup service dependencies. Service dependencies should be obtained
//    during the service's init phase. Once the dependency reference is obtained, the service should await
//    until the service dependency is running during the service's run phase.
// 2. The service uses the application to register additional services.
type ClientConstructor func(application Application) Client

// ServiceFactory constructs a new Client for an app declared in a release manifest.
// Factories are registered with the application under the app's processapp registration key -
// see manifest.ProcessApp.Key().
//
// The factory is given the app spec so that it can wire in the app's name, version, config payload,
// and service dependencies.
type ServiceFactory func(application Application, spec *manifest.App) Client

// RestartableService provides support to "restart" a service.
// The service is not really restarted because it is illegal to start a service that has been stopped.
// Instead a new instance of the service is created (via the provided ServiceConstructor) and then started.
// New instances should be created using NewRestartableService()
type RestartableService struct {
	serviceMutex sync.RWMutex
	service      Service
	restartCount int

	NewService ServiceConstructor
}

// Service returns the managed service instance
func (a *RestartableService) Service() Service {
	a.serviceMutex.RLock()
	defer a.serviceMutex.RUnlock()
	return a.service
}

// Restart restarts the service. It performs the following steps:
// 1. stops the service
// 2. waits for the service to stop
// 3. creates a new service instance and starts it async
// 4. increments the restart counter
func (a *RestartableService) Restart() {
	a.serviceMutex.Lock()
	defer a.serviceMutex.Unlock()
	if a.service != nil {
		a.service.StopAsync()
		a.service.AwaitUntilStopped()
	}
	a.service = a.NewService()
	a.service.StartAsync()
	a.restartCount++
	serviceRestartsCounter(a.service.Desc()).Inc()
}

// RestartCount returns the number of times the service has been restarted
func (a *RestartableService) RestartCount() int {
	a.serviceMutex.RLock()
	defer a.serviceMutex.RUnlock()
	return a.restartCount
}

// NewRestartableService is used to create a new RestartableService instance.
func NewRestartableService(newService ServiceConstructor) *RestartableService {
	return &RestartableService{
		service:    newService(),
		NewService: newService,
	}
}
