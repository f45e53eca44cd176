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

package manifest

import (
	"fmt"
	"strings"
)

// MissingNameError indicates the release or an app entry has no name.
type MissingNameError struct {
	// App is empty when the release itself has no name
	App int
}

func (e *MissingNameError) Error() string {
	if e.App == 0 {
		return "release name is required"
	}
	return fmt.Sprintf("apps[%d] has no name", e.App-1)
}

// DuplicateAppError indicates two apps share the same name.
// App names must be unique within the manifest.
type DuplicateAppError struct {
	Name string
}

func (e *DuplicateAppError) Error() string {
	return fmt.Sprintf("duplicate app name : %q", e.Name)
}

// MalformedVersionError indicates a version string does not parse as semver.
type MalformedVersionError struct {
	// App is empty when the release version itself is malformed
	App     string
	Version string
	Err     error
}

func (e *MalformedVersionError) Error() string {
	if e.App == "" {
		return fmt.Sprintf("release version %q is malformed : %v", e.Version, e.Err)
	}
	return fmt.Sprintf("app %q version %q is malformed : %v", e.App, e.Version, e.Err)
}

// MalformedConstraintError indicates a version constraint does not parse.
type MalformedConstraintError struct {
	App        string
	Constraint string
	Err        error
}

func (e *MalformedConstraintError) Error() string {
	if e.App == "" {
		return fmt.Sprintf("core constraint %q is malformed : %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("app %q dependency constraint %q is malformed : %v", e.App, e.Constraint, e.Err)
}

// IncompleteProcessAppError indicates a processapp descriptor is missing its
// registration key, module path, or class name.
type IncompleteProcessAppError struct {
	App string
}

func (e *IncompleteProcessAppError) Error() string {
	return fmt.Sprintf("app %q has an incomplete processapp descriptor : name, module, and class are all required", e.App)
}

// UnresolvedServiceRefError indicates an app references a service that does
// not appear earlier in the manifest sequence.
type UnresolvedServiceRefError struct {
	App string
	Ref string
}

func (e *UnresolvedServiceRefError) Error() string {
	return fmt.Sprintf("app %q references service %q, which does not appear earlier in the manifest", e.App, e.Ref)
}

// BootLevelRegressionError indicates an app declares a bootlevel lower than
// the app before it. Bootlevels must be non-decreasing in sequence order.
type BootLevelRegressionError struct {
	App      string
	Level    int
	Previous int
}

func (e *BootLevelRegressionError) Error() string {
	return fmt.Sprintf("app %q bootlevel %d regresses below the preceding level %d", e.App, e.Level, e.Previous)
}

// IncompatibleCoreError indicates the container core version does not
// satisfy the release's core compatibility constraint.
type IncompatibleCoreError struct {
	Release    string
	Constraint string
	Core       string
}

func (e *IncompatibleCoreError) Error() string {
	return fmt.Sprintf("release %q requires core %q, but the container core is %v", e.Release, e.Constraint, e.Core)
}

// ReleaseErrors aggregates all invariant violations found in a Release.
type ReleaseErrors struct {
	Errors []error
}

func (e *ReleaseErrors) Error() string {
	errorMessages := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		errorMessages[i] = v.Error()
	}
	return fmt.Sprintf("Error count = %d : %v", len(errorMessages), strings.Join(errorMessages, " | "))
}

// HasErrors returns true if any invariant was violated
func (e *ReleaseErrors) HasErrors() bool {
	return len(e.Errors) > 0
}
