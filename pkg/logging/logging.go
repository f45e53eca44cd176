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

// Package logging standardizes the log field names used across the container
// and provides constructors for package and component scoped loggers.
package logging

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// standard logger field names
const (
	PACKAGE   = "pkg"
	FUNC      = "func"
	SERVICE   = "svc"
	RELEASE   = "rel"
	NAME      = "name"
	EVENT     = "event"
	ID        = "id"
	CODE      = "code"
	STATE     = "state"
	VERSION   = "ver"
	BOOTLEVEL = "bootlevel"

	NAMESPACE = "ns"
	SYSTEM    = "sys"
	COMPONENT = "comp"

	HEALTHCHECK = "healthcheck"
)

// Event is used to define application log events in a standard way.
// The Id must be unique within the application.
type Event struct {
	Id    int
	Level zerolog.Level
}

// Dict renders the event as a standard zerolog dictionary
func (e Event) Dict() *zerolog.Event {
	return zerolog.Dict().Int(ID, e.Id).Str("level", e.Level.String())
}

// NewPackageLogger returns a new logger with pkg={pkg}
func NewPackageLogger(pkg string) zerolog.Logger {
	return log.With().Str(PACKAGE, pkg).Logger()
}

// NewServiceLogger returns a new logger with svc={name}
// where {name} is the service's registration name
func NewServiceLogger(name string) zerolog.Logger {
	return log.With().Str(SERVICE, name).Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
