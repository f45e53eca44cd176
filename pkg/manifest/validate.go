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
	"github.com/Masterminds/semver"
)

// Validate checks the manifest invariants and returns the first violation
// found, or nil if the manifest is sound.
//
// Invariants :
//  1. the release has a name and a semver version
//  2. the core compatibility constraint, when present, parses
//  3. every app has a name, unique within the manifest
//  4. every app version parses as semver
//  5. a processapp descriptor, when present, is complete
//  6. bootlevels are non-decreasing in sequence order
//  7. every referenced service appears earlier in the sequence
//  8. dependency version constraints parse
func (r *Release) Validate() error {
	for _, err := range r.problems(true) {
		return err
	}
	return nil
}

// Problems checks the manifest invariants and returns all violations.
// nil is returned if the manifest is sound.
func (r *Release) Problems() *ReleaseErrors {
	if errs := r.problems(false); len(errs) > 0 {
		return &ReleaseErrors{Errors: errs}
	}
	return nil
}

func (r *Release) problems(firstOnly bool) []error {
	var errs []error
	report := func(err error) bool {
		errs = append(errs, err)
		return firstOnly
	}

	if r.Name == "" {
		if report(&MissingNameError{}) {
			return errs
		}
	}
	if _, err := semver.NewVersion(r.Version); err != nil {
		if report(&MalformedVersionError{Version: r.Version, Err: err}) {
			return errs
		}
	}
	if r.Core != "" {
		if _, err := semver.NewConstraint(r.Core); err != nil {
			if report(&MalformedConstraintError{Constraint: r.Core, Err: err}) {
				return errs
			}
		}
	}

	seen := map[string]bool{}
	previousLevel := 0
	for i, app := range r.Apps {
		if app.Name == "" {
			if report(&MissingNameError{App: i + 1}) {
				return errs
			}
			continue
		}
		if seen[app.Name] {
			if report(&DuplicateAppError{Name: app.Name}) {
				return errs
			}
		}

		if _, err := semver.NewVersion(app.Version); err != nil {
			if report(&MalformedVersionError{App: app.Name, Version: app.Version, Err: err}) {
				return errs
			}
		}

		if p := app.ProcessApp; p != nil {
			if p.Name == "" || p.Module == "" || p.Class == "" {
				if report(&IncompleteProcessAppError{App: app.Name}) {
					return errs
				}
			}
		}

		if app.BootLevel < previousLevel {
			if report(&BootLevelRegressionError{App: app.Name, Level: app.BootLevel, Previous: previousLevel}) {
				return errs
			}
		}
		previousLevel = app.BootLevel

		for _, ref := range app.ServiceRefs() {
			if !seen[ref] {
				if report(&UnresolvedServiceRefError{App: app.Name, Ref: ref}) {
					return errs
				}
			}
		}
		for _, dep := range app.Dependencies {
			if _, constraint := splitDependency(dep); constraint != "" {
				if _, err := semver.NewConstraint(constraint); err != nil {
					if report(&MalformedConstraintError{App: app.Name, Constraint: constraint, Err: err}) {
						return errs
					}
				}
			}
		}

		seen[app.Name] = true
	}

	return errs
}

// CheckCore verifies the container core version against the release's core
// compatibility constraint. A release without a constraint accepts any core.
func (r *Release) CheckCore(core *semver.Version) error {
	if r.Core == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(r.Core)
	if err != nil {
		return &MalformedConstraintError{Constraint: r.Core, Err: err}
	}
	if !constraint.Check(core) {
		return &IncompatibleCoreError{Release: r.Name, Constraint: r.Core, Core: core.String()}
	}
	return nil
}

// DependencyConstraints returns the app's explicit dependency names mapped to
// their version constraints. Dependencies without a constraint map to nil,
// meaning any version satisfies them.
func (a *App) DependencyConstraints() (map[string]*semver.Constraints, error) {
	if len(a.Dependencies) == 0 {
		return nil, nil
	}
	constraints := make(map[string]*semver.Constraints, len(a.Dependencies))
	for _, dep := range a.Dependencies {
		name, raw := splitDependency(dep)
		if raw == "" {
			constraints[name] = nil
			continue
		}
		c, err := semver.NewConstraint(raw)
		if err != nil {
			return nil, &MalformedConstraintError{App: a.Name, Constraint: raw, Err: err}
		}
		constraints[name] = c
	}
	return constraints, nil
}
