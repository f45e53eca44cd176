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
	"os"
	"os/signal"
	"syscall"
	"time"

	"io"

	"fmt"

	"sync"

	"github.com/Masterminds/semver"
	"github.com/google/uuid"
	"github.com/oceanops/capstan/pkg/logging"
	"github.com/oceanops/capstan/pkg/manifest"
	"github.com/rs/zerolog"
)

// Application is a service, which serves as a container for other services.
// Services are booted from a release manifest via Deploy() : apps are instantiated
// bootlevel by bootlevel in manifest order, and stopped in reverse registration order on shutdown.
type Application interface {
	// Descriptor exposes the application Descriptor
	Descriptor() *Descriptor
	// UpdateDescriptor is exposed to set the application name and version before the application starts running.
	// This should be set in the application main() method before the application is started.
	UpdateDescriptor(namespace string, system string, component string, version string)

	// InstanceID is the unique id assigned to this container instance
	InstanceID() string

	// CoreVersion is the container core version that release manifests declare compatibility against
	CoreVersion() *semver.Version

	// refers to the application service - used to manage the application lifecycle
	ServiceReference

	Registry

	FactoryRegistry

	ServiceManager

	ServiceDependencyChecks

	// Deploy boots the release : each app with a processapp record is instantiated via its
	// registered factory and started, bootlevel by bootlevel. Deploy blocks until every app
	// in a bootlevel is running before starting the next level.
	Deploy(release *manifest.Release) error

	// Release returns the currently deployed release - nil if no release has been deployed
	Release() *manifest.Release

	// Start the application and waits until the app is running
	Start()

	// Stop the application and waits until the app is stopped
	Stop()

	// RegisterShutdownHook registers a function that will be invoked when the application shutsdown.
	// The function will be invoked after all application managed services are stopped.
	RegisterShutdownHook(f func())
}

// application.services map entry type
type registeredService struct {
	NewService ClientConstructor
	Client
}

// application is used to manage a set of services
// application itself is a service, by composition.
//
// Features
// 1. Triggering the application to shutdown, triggers each of its registered services to shutdown.
// 2. SIGTERM, SIGINT, SIGQUIT signals are trapped and trigger application shutdown.
//
// Use NewApplication() to create a new application instance
type application struct {
	registry registry

	factories factories

	service Service
	// the application service's logger, bound once so level methods can be chained
	logger zerolog.Logger

	instanceID  string
	coreVersion *semver.Version

	releaseMutex sync.RWMutex
	release      *manifest.Release

	*serviceTickets
	serviceDependencyChecks

	shutdownHooks []func()
}

type registry struct {
	sync.RWMutex
	// once a service is stopped, it will be removed from this map
	services map[string]*registeredService
	// registration order - services are stopped in reverse order
	names []string
}

type factories struct {
	sync.RWMutex
	constructors map[string]ServiceFactory
}

func (a *application) RegisterShutdownHook(f func()) {
	a.registry.Lock()
	defer a.registry.Unlock()
	a.shutdownHooks = append(a.shutdownHooks, func() {
		defer func() {
			if p := recover(); p != nil {
				a.logger.Error().Err(fmt.Errorf("%v", p)).Msg("shutdown hook panic")
			}
		}()
		f()
	})
}

// Service returns the Application Service
func (a *application) Service() Service {
	return a.service
}

// ApplicationSettings provides application settings used to create a new application
type ApplicationSettings struct {
	*Descriptor

	// CoreVersion is the container core version - releases are checked against it on Deploy.
	// If nil, the descriptor version is used.
	CoreVersion *semver.Version

	LogOutput io.Writer
	LogLevel  *zerolog.Level
}

// NewApplicationDesc creates a new application Descriptor
func NewApplicationDesc(
	namespace string,
	system string,
	component string,
	version string,
) *Descriptor {
	return NewDescriptor(namespace, system, component, version)
}

// NewApplication returns a new application
func NewApplication(settings ApplicationSettings) Application {
	app := &application{
		registry:       registry{services: make(map[string]*registeredService)},
		factories:      factories{constructors: make(map[string]ServiceFactory)},
		serviceTickets: &serviceTickets{},
		instanceID:     uuid.New().String(),
	}
	app.serviceDependencyChecks.application = app

	if settings.Descriptor == nil {
		settings.Descriptor = NewApplicationDesc("capstan", "container", "application", "1.0.0")
	}
	if settings.CoreVersion == nil {
		app.coreVersion = settings.Descriptor.Version()
	} else {
		app.coreVersion = settings.CoreVersion
	}

	app.service = NewService(Settings{
		Descriptor:  settings.Descriptor,
		LogSettings: LogSettings{LogOutput: settings.LogOutput, LogLevel: settings.LogLevel},
		Run:         app.run,
		Destroy:     app.destroy,
	})
	app.logger = app.service.Logger()
	return app
}

// Descriptor exposes the application Descriptor
func (a *application) Descriptor() *Descriptor {
	return a.service.Desc()
}

// UpdateDescriptor is exposed to set the application name and version before the application starts running.
// This should be set in the application main() method before the application is started.
func (a *application) UpdateDescriptor(namespace string, system string, component string, version string) {
	desc := NewApplicationDesc(namespace, system, component, version)
	a.Descriptor().namespace = desc.namespace
	a.Descriptor().system = desc.system
	a.Descriptor().component = desc.component
	a.Descriptor().version = desc.version
}

func (a *application) InstanceID() string {
	return a.instanceID
}

func (a *application) CoreVersion() *semver.Version {
	return a.coreVersion
}

// ServiceByName looks up a service via its registration name.
func (a *application) ServiceByName(name string) Client {
	a.registry.RLock()
	defer a.registry.RUnlock()
	return a.serviceByName(name)
}

func (a *application) serviceByName(name string) Client {
	if s, exists := a.registry.services[name]; exists {
		return s.Client
	}
	return nil
}

// ServiceByNameAsync returns channel that will be used to send the Client, when one is available
func (a *application) ServiceByNameAsync(name string) *ServiceTicket {
	ticket := &ServiceTicket{name, make(chan Client, 1), time.Now()}
	serviceClient := a.ServiceByName(name)
	if serviceClient != nil {
		ticket.channel <- serviceClient
		close(ticket.channel)
		return ticket
	}

	a.serviceTickets.add(ticket)
	go a.checkServiceTickets()
	return ticket
}

// checkServiceTickets delivers clients to any tickets whose service is now registered
func (a *application) checkServiceTickets() {
	a.ticketsMutex.RLock()
	tickets := make([]*ServiceTicket, len(a.tickets))
	copy(tickets, a.tickets)
	a.ticketsMutex.RUnlock()

	for _, ticket := range tickets {
		serviceClient := a.ServiceByName(ticket.Name)
		if serviceClient != nil {
			func() {
				defer func() { recover() }()
				ticket.channel <- serviceClient
				close(ticket.channel)
			}()
			a.deleteServiceTicket(ticket)
		}
	}
}

// Services returns all registered services
func (a *application) Services() []Client {
	a.registry.RLock()
	defer a.registry.RUnlock()
	var services []Client
	for _, name := range a.registry.names {
		services = append(services, a.registry.services[name].Client)
	}
	return services
}

// ServiceNames returns the registration names for all registered services, in registration order
func (a *application) ServiceNames() []string {
	a.registry.RLock()
	defer a.registry.RUnlock()
	names := make([]string, len(a.registry.names))
	copy(names, a.registry.names)
	return names
}

// ServiceCount returns the number of registered services
func (a *application) ServiceCount() int {
	a.registry.RLock()
	defer a.registry.RUnlock()
	return len(a.registry.services)
}

// MustRegisterService will register the service and start it, if it is not already registered.
// A panic occurs if registration fails for any of the following reasons:
// 1. Descriptor is nil
// 2. Version is nil
// 3. A service with the same registration name is already registered.
func (a *application) MustRegisterService(create ClientConstructor) Client {
	validate := func(service Client) {
		if service.Service().Desc() == nil {
			a.logger.Panic().Msg("Service failed to register because it has no Descriptor")
		}

		if service.Service().Desc().Version() == nil {
			a.logger.Panic().
				Str(logging.SERVICE, service.Service().Name()).
				Msgf("Service failed to register because it has no version")
		}
	}

	a.registry.Lock()
	defer a.registry.Unlock()
	service := create(Application(a))
	validate(service)
	name := service.Service().Name()
	if _, exists := a.registry.services[name]; exists {
		a.logger.Panic().
			Str(logging.SERVICE, name).
			Msgf("Service is already registered : %v", name)
	}
	a.registry.services[name] = &registeredService{NewService: create, Client: service}
	a.registry.names = append(a.registry.names, name)
	serviceUpGauge(service.Service().Desc()).Set(1)
	service.Service().StartAsync()
	go a.checkServiceTickets()
	return service
}

func (a *application) RegisterService(create ClientConstructor) (client Client, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return a.MustRegisterService(create), nil
}

// UnRegisterService unregisters the specified service.
// The service is simply unregistered, i.e., it is not stopped.
func (a *application) UnRegisterService(service Client) bool {
	a.registry.Lock()
	defer a.registry.Unlock()
	name := service.Service().Name()
	if _, exists := a.registry.services[name]; exists {
		delete(a.registry.services, name)
		for i, n := range a.registry.names {
			if n == name {
				a.registry.names = append(a.registry.names[:i], a.registry.names[i+1:]...)
				break
			}
		}
		serviceUpGauge(service.Service().Desc()).Set(0)
		return true
	}
	return false
}

// MustRegisterFactory registers the factory under the specified key.
func (a *application) MustRegisterFactory(key string, factory ServiceFactory) {
	a.factories.Lock()
	defer a.factories.Unlock()
	if factory == nil {
		a.logger.Panic().Msgf("factory is required : %v", key)
	}
	if _, exists := a.factories.constructors[key]; exists {
		a.logger.Panic().Msgf("A factory is already registered : %v", key)
	}
	a.factories.constructors[key] = factory
}

// Factory returns the factory registered under the key - nil if there is none
func (a *application) Factory(key string) ServiceFactory {
	a.factories.RLock()
	defer a.factories.RUnlock()
	return a.factories.constructors[key]
}

// FactoryKeys returns the keys for all registered factories
func (a *application) FactoryKeys() []string {
	a.factories.RLock()
	defer a.factories.RUnlock()
	keys := make([]string, 0, len(a.factories.constructors))
	for key := range a.factories.constructors {
		keys = append(keys, key)
	}
	return keys
}

// Deploy boots the release.
//
// Deploy performs the following steps :
// 1. validates the release manifest
// 2. checks the release's core constraint against the container core version
// 3. resolves a factory for every app with a processapp record - apps without one are
//    configuration-only records and are skipped
// 4. starts the apps bootlevel by bootlevel, in manifest order, awaiting until every app
//    in a level is running before starting the next level
// 5. checks that all service dependencies are satisfied
func (a *application) Deploy(release *manifest.Release) error {
	if err := release.Validate(); err != nil {
		return err
	}
	if err := release.CheckCore(a.coreVersion); err != nil {
		return err
	}

	// resolve factories up front - a missing factory should fail the deploy before anything starts
	for _, app := range release.Apps {
		if app.ProcessApp == nil {
			continue
		}
		if a.Factory(app.ProcessApp.Key()) == nil {
			return &FactoryNotRegisteredError{App: app.Name, Key: app.ProcessApp.Key()}
		}
	}

	a.logger.Info().
		Dict(logging.EVENT, DEPLOY_STARTED.Dict()).
		Str(logging.RELEASE, release.Name).
		Str(logging.VERSION, release.Version).
		Msg("")

	for _, level := range release.BootLevels() {
		var clients []Client
		for _, app := range level.Apps {
			if app.ProcessApp == nil {
				continue
			}
			factory := a.Factory(app.ProcessApp.Key())
			spec := app
			client, err := a.RegisterService(func(application Application) Client {
				return factory(application, spec)
			})
			if err != nil {
				return err
			}
			clients = append(clients, client)
		}
		for _, client := range clients {
			if err := client.Service().AwaitUntilRunning(); err != nil {
				return err
			}
		}
		a.logger.Info().
			Dict(logging.EVENT, BOOTLEVEL_STARTED.Dict()).
			Int(logging.BOOTLEVEL, level.Level).
			Msg("")
	}

	if err := a.CheckAllServiceDependencies(); err != nil {
		return err
	}

	a.releaseMutex.Lock()
	a.release = release
	a.releaseMutex.Unlock()

	deploysCounter().Inc()
	a.logger.Info().
		Dict(logging.EVENT, DEPLOY_COMPLETED.Dict()).
		Str(logging.RELEASE, release.Name).
		Str(logging.VERSION, release.Version).
		Msg("")

	return nil
}

// Release returns the currently deployed release - nil if no release has been deployed
func (a *application) Release() *manifest.Release {
	a.releaseMutex.RLock()
	defer a.releaseMutex.RUnlock()
	return a.release
}

func (a *application) run(ctx *Context) error {
	a.logger.Info().Str(logging.ID, a.instanceID).Msg(a.Descriptor().ID())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	for {
		select {
		case <-sigs:
			return nil
		case <-ctx.StopTrigger():
			return nil
		}
	}
}

func (a *application) destroy(ctx *Context) error {
	a.serviceTickets.closeAllServiceTickets()

	// stop services in reverse registration order, i.e., reverse bootlevel order
	a.registry.RLock()
	names := make([]string, len(a.registry.names))
	copy(names, a.registry.names)
	a.registry.RUnlock()

	for i := len(names) - 1; i >= 0; i-- {
		client := a.ServiceByName(names[i])
		if client == nil {
			continue
		}
		client.Service().StopAsync()
		svcLogger := client.Service().Logger()
		for {
			client.Service().AwaitStopped(5 * time.Second)
			if client.Service().State().Stopped() {
				break
			}
			svcLogger.Warn().Msg("Waiting for service to stop")
		}
	}

	for _, f := range a.shutdownHooks {
		f()
	}
	return nil
}

func (a *application) ServiceStates() map[string]State {
	a.registry.RLock()
	defer a.registry.RUnlock()
	serviceStates := make(map[string]State)
	for k, s := range a.registry.services {
		serviceStates[k] = s.Service().State()
	}
	return serviceStates
}

func (a *application) StopServiceByName(name string) error {
	client := a.ServiceByName(name)
	if client == nil {
		return &ServiceNotFoundError{name}
	}
	client.Service().StopAsync()
	return nil
}

func (a *application) RestartServiceByName(name string) error {
	client := a.ServiceByName(name)
	if client == nil {
		return &ServiceNotFoundError{name}
	}
	client.Restart()
	return nil
}

func (a *application) RestartAllServices() {
	a.registry.RLock()
	defer a.registry.RUnlock()
	for _, client := range a.registry.services {
		go client.Restart()
	}
}

func (a *application) RestartAllFailedServices() {
	a.registry.RLock()
	defer a.registry.RUnlock()
	for _, client := range a.registry.services {
		if client.Service().FailureCause() != nil {
			go client.Restart()
		}
	}
}

func (a *application) StopAllServices() {
	a.registry.RLock()
	defer a.registry.RUnlock()
	for _, client := range a.registry.services {
		client.Service().Stop()
	}
}

func (a *application) Start() {
	a.Service().StartAsync()
	a.Service().AwaitUntilRunning()
}

func (a *application) Stop() {
	a.Service().Stop()
}
