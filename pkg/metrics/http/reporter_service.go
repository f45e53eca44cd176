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

package http

import (
	"github.com/oceanops/capstan/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace name
	Namespace = "capstan"
	// System name
	System = "metrics"
	// Component name
	Component = "prometheus_http"
	// Version is the service version
	Version = "1.0.0"

	// DefaultHTTPPort is the default port that metrics are reported on
	DefaultHTTPPort uint = 4444
)

// Reporter interface
type Reporter interface {
	// Registry is the registry that is used to report metrics
	Registry() *prometheus.Registry
}

// NewReporterClient returns a service.ClientConstructor that reports metrics on the specified port.
// If port is 0, then DefaultHTTPPort is used.
func NewReporterClient(port uint) service.ClientConstructor {
	if port == 0 {
		port = DefaultHTTPPort
	}
	return func(app service.Application) service.Client {
		c := &reporter{port: port}
		c.RestartableService = service.NewRestartableService(c.newService)
		return c
	}
}

func (a *reporter) newService() service.Service {
	settings := service.Settings{
		Descriptor: service.NewDescriptor(Namespace, System, Component, Version),
		Init:       a.init,
		Destroy:    a.destroy,
	}
	return service.NewService(settings)
}
