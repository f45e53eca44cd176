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

// Registry is a Client registry.
// It is used to register/unregister Client(s) and lookup Client(s).
// Services are keyed by their registration name, i.e., the app name from the release manifest.
type Registry interface {
	// ServiceByName looks up a service and returns nil if the service is not found.
	ServiceByName(name string) Client

	// ServiceByNameAsync returns a ServiceTicket that can be used to receive the service client via a channel.
	ServiceByNameAsync(name string) *ServiceTicket

	// Returns a snapshot of the number of open ServiceTicket(s) per service name
	ServiceTicketCounts() map[string]int

	// Services returns the list of registered services as Client(s)
	Services() []Client

	// ServiceCount returns the number of services registered
	ServiceCount() int

	// ServiceNames returns the registration names for all registered services, in registration order
	ServiceNames() []string

	// MustRegisterService will create a new instance of the service using the supplied service constructor.
	// It will then register the service and start it async.
	// NOTE: only a single version of the service may be registered
	//
	// A panic occurs if registration fails for any of the following reasons:
	// 1. Descriptor is nil
	// 2. Version is nil
	// 3. a service with the same registration name is already registered
	MustRegisterService(newService ClientConstructor) Client

	RegisterService(newService ClientConstructor) (Client, error)

	// UnRegisterService will unregister the service and returns false if no such service is registered.
	// The service is simply unregistered, i.e., it is not stopped.
	// This will not normally be used in an application. It's main purpose is to support testing.
	UnRegisterService(service Client) bool
}

// FactoryRegistry is a ServiceFactory registry.
// Factories are keyed by the processapp registration key from the release manifest - see manifest.ProcessApp.Key()
type FactoryRegistry interface {
	// MustRegisterFactory registers the factory under the specified key.
	// A panic occurs if a factory is already registered under the key.
	MustRegisterFactory(key string, factory ServiceFactory)

	// Factory returns the factory registered under the key - nil if there is none
	Factory(key string) ServiceFactory

	// FactoryKeys returns the keys for all registered factories
	FactoryKeys() []string
}

// ServiceManager groups methods used to manage registered services
type ServiceManager interface {
	// ServiceStates returns a snapshot of the current state for each registered service
	ServiceStates() map[string]State

	StopServiceByName(name string) error

	RestartServiceByName(name string) error

	RestartAllServices()

	RestartAllFailedServices()

	StopAllServices()
}
