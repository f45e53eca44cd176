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
	"io"

	"github.com/oceanops/capstan/pkg/metrics"
	"github.com/rs/zerolog"
)

// Settings is used by NewService to create a new service instance
type Settings struct {
	// REQUIRED - identifies the service : the component is the service's registration name
	*Descriptor

	// OPTIONAL - functions that define the service lifecycle
	Init
	Run
	Destroy

	// OPTIONAL - the registration names of the services that this service depends on, with version constraints.
	// It is used to check that all service dependencies are satisfied by the application.
	Dependencies

	LogSettings

	HealthChecks []metrics.HealthCheck

	// service metrics
	Metrics *metrics.MetricOpts

	// OPTIONAL - the service's config payload from the release manifest
	Config map[string]interface{}
}

// LogSettings groups the log settings for the service
type LogSettings struct {
	// OPTIONAL - used to specify an alternative writer for the service logger
	LogOutput io.Writer

	// OPTIONAL - if not specified then the global default log level is used
	LogLevel *zerolog.Level
}
