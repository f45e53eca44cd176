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
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
)

// Descriptor describes a service : a named component that is part of a
// system (the release) which belongs to a namespace. The service is versioned.
type Descriptor struct {
	namespace string
	system    string
	component string
	version   *semver.Version
}

var wordRE = regexp.MustCompile("[[:word:]]")

// NewDescriptor creates a new descriptor.
// namespace, system, and component must not be blank, and must only consist of word characters.
// They will be trimmed and lower cased.
func NewDescriptor(namespace string, system string, component string, version string) *Descriptor {
	validate := func(name, s string) string {
		s = strings.TrimSpace(s)
		if len(s) == 0 {
			logger.Panic().Msgf("%q cannot be blank", name)
		}
		if !wordRE.MatchString(s) {
			logger.Panic().Msgf("%q contains a non-word character : [%s]", name, s)
		}
		return strings.ToLower(s)
	}

	return &Descriptor{
		namespace: validate("namespace", namespace),
		system:    validate("system", system),
		component: validate("component", component),
		version:   NewVersion(version),
	}
}

// NewVersion parses the version, panicking if it is not valid semver.
// It is intended for versions that must be valid by construction.
func NewVersion(version string) *semver.Version {
	v, err := semver.NewVersion(version)
	if err != nil {
		logger.Panic().Err(err).Msgf("invalid version : %q", version)
	}
	return v
}

// ID returns the unique service id composed of {namespace}-{system}-{component}-{version}
func (a *Descriptor) ID() string {
	return strings.Join([]string{a.namespace, a.system, a.component, a.version.String()}, "-")
}

func (a *Descriptor) String() string {
	return fmt.Sprintf("%v/%v/%v@%v", a.namespace, a.system, a.component, a.version)
}

// Namespace returns the namespace that the service belongs to
func (a *Descriptor) Namespace() string {
	return a.namespace
}

// System returns the name of the system that the service belongs to, i.e., the release name
func (a *Descriptor) System() string {
	return a.system
}

// Component returns the name of the component, i.e., the app name from the release manifest
func (a *Descriptor) Component() string {
	return a.component
}

// Version returns the service version
func (a *Descriptor) Version() *semver.Version {
	return a.version
}
