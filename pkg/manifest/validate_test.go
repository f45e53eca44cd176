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

package manifest_test

import (
	"testing"

	"github.com/Masterminds/semver"
	"github.com/oceanops/capstan/pkg/manifest"
)

func mustVersion(t *testing.T, v string) *semver.Version {
	t.Helper()
	version, err := semver.NewVersion(v)
	if err != nil {
		t.Fatalf("bad version %q : %v", v, err)
	}
	return version
}

func parseRelease(t *testing.T, src string) *manifest.Release {
	t.Helper()
	release, err := manifest.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed : %v", err)
	}
	return release
}

func TestValidate_SoundManifest(t *testing.T) {
	release := parseRelease(t, observatoryRelease)
	if err := release.Validate(); err != nil {
		t.Errorf("manifest should be valid : %v", err)
	}
	if problems := release.Problems(); problems != nil {
		t.Errorf("manifest should have no problems : %v", problems)
	}
}

func TestValidate_DuplicateAppName(t *testing.T) {
	release := parseRelease(t, `
name: rel
version: 1.0.0
apps:
  - {name: datastore, version: 1.0.0}
  - {name: datastore, version: 1.0.1}
`)
	switch err := release.Validate().(type) {
	case *manifest.DuplicateAppError:
		if err.Name != "datastore" {
			t.Errorf("error should name the duplicate : %v", err.Name)
		}
	default:
		t.Errorf("expected *manifest.DuplicateAppError, but was %T", err)
	}
}

func TestValidate_MalformedVersion(t *testing.T) {
	release := parseRelease(t, `
name: rel
version: 1.0.0
apps:
  - {name: datastore, version: not-a-version}
`)
	switch err := release.Validate().(type) {
	case *manifest.MalformedVersionError:
		if err.App != "datastore" {
			t.Errorf("error should name the app : %v", err.App)
		}
	default:
		t.Errorf("expected *manifest.MalformedVersionError, but was %T", err)
	}
}

func TestValidate_ForwardServiceReference(t *testing.T) {
	release := parseRelease(t, `
name: rel
version: 1.0.0
apps:
  - name: resource_registry
    version: 1.0.0
    config:
      ion.services.coi.resource_registry:
        datastore_service: datastore
  - {name: datastore, version: 1.0.0}
`)
	switch err := release.Validate().(type) {
	case *manifest.UnresolvedServiceRefError:
		if err.App != "resource_registry" || err.Ref != "datastore" {
			t.Errorf("error should name the app and the reference : %v", err)
		}
	default:
		t.Errorf("a referenced service must appear earlier in the sequence : expected *manifest.UnresolvedServiceRefError, but was %T", err)
	}
}

func TestValidate_IncompleteProcessApp(t *testing.T) {
	release := parseRelease(t, `
name: rel
version: 1.0.0
apps:
  - name: datastore
    version: 1.0.0
    processapp:
      name: datastore
      module: ion.services.coi.datastore
`)
	switch err := release.Validate().(type) {
	case *manifest.IncompleteProcessAppError:
		t.Logf("IncompleteProcessAppError : %v", err)
	default:
		t.Errorf("expected *manifest.IncompleteProcessAppError, but was %T", err)
	}
}

func TestValidate_BootLevelRegression(t *testing.T) {
	release := parseRelease(t, `
name: rel
version: 1.0.0
apps:
  - {name: a, version: 1.0.0, bootlevel: 2}
  - {name: b, version: 1.0.0, bootlevel: 1}
`)
	switch err := release.Validate().(type) {
	case *manifest.BootLevelRegressionError:
		if err.App != "b" || err.Level != 1 || err.Previous != 2 {
			t.Errorf("error should carry the regression : %v", err)
		}
	default:
		t.Errorf("expected *manifest.BootLevelRegressionError, but was %T", err)
	}
}

func TestValidate_MissingReleaseName(t *testing.T) {
	release := parseRelease(t, `
version: 1.0.0
apps: []
`)
	switch err := release.Validate().(type) {
	case *manifest.MissingNameError:
		t.Logf("MissingNameError : %v", err)
	default:
		t.Errorf("expected *manifest.MissingNameError, but was %T", err)
	}
}

func TestProblems_ReportsAllViolations(t *testing.T) {
	release := parseRelease(t, `
name: rel
version: bogus
apps:
  - {name: a, version: 1.0.0}
  - {name: a, version: also-bogus}
`)
	problems := release.Problems()
	if problems == nil {
		t.Fatal("expected problems")
	}
	if len(problems.Errors) != 3 {
		t.Errorf("expected 3 problems, got %d : %v", len(problems.Errors), problems)
	}
}

func TestCheckCore(t *testing.T) {
	release := parseRelease(t, observatoryRelease)

	if err := release.CheckCore(mustVersion(t, "0.4.2")); err != nil {
		t.Errorf("core 0.4.2 should be compatible : %v", err)
	}

	switch err := release.CheckCore(mustVersion(t, "0.3.0")).(type) {
	case *manifest.IncompatibleCoreError:
		t.Logf("IncompatibleCoreError : %v", err)
	default:
		t.Errorf("expected *manifest.IncompatibleCoreError, but was %T", err)
	}

	// a release without a constraint accepts any core
	open := parseRelease(t, "name: rel\nversion: 1.0.0\napps: []\n")
	if err := open.CheckCore(mustVersion(t, "9.9.9")); err != nil {
		t.Errorf("release without a core constraint should accept any core : %v", err)
	}
}
