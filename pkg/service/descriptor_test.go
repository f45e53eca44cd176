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

package service_test

import (
	"testing"

	"github.com/oceanops/capstan/pkg/service"
)

func shouldPanic(t *testing.T, msg string, f func()) {
	t.Helper()
	defer func() {
		if p := recover(); p == nil {
			t.Error(msg)
		}
	}()
	f()
}

func TestNewDescriptor(t *testing.T) {
	desc := service.NewDescriptor("capstan", "research", "datastore", "1.2.0")
	if desc.Namespace() != "capstan" {
		t.Errorf("namespace : %v", desc.Namespace())
	}
	if desc.System() != "research" {
		t.Errorf("system : %v", desc.System())
	}
	if desc.Component() != "datastore" {
		t.Errorf("component : %v", desc.Component())
	}
	if desc.Version().String() != "1.2.0" {
		t.Errorf("version : %v", desc.Version())
	}
	if desc.ID() != "capstan-research-datastore-1.2.0" {
		t.Errorf("id : %v", desc.ID())
	}
	if desc.String() != "capstan/research/datastore@1.2.0" {
		t.Errorf("string : %v", desc)
	}
}

func TestNewDescriptor_NamesAreNormalized(t *testing.T) {
	desc := service.NewDescriptor(" Capstan ", "\tResearch", "DataStore ", "1.2.0")
	if desc.Namespace() != "capstan" || desc.System() != "research" || desc.Component() != "datastore" {
		t.Errorf("names should be trimmed and lower cased : %v", desc)
	}
}

func TestNewDescriptor_Invalid(t *testing.T) {
	shouldPanic(t, "a blank namespace should panic", func() {
		service.NewDescriptor("  ", "research", "datastore", "1.2.0")
	})
	shouldPanic(t, "a blank system should panic", func() {
		service.NewDescriptor("capstan", "", "datastore", "1.2.0")
	})
	shouldPanic(t, "a blank component should panic", func() {
		service.NewDescriptor("capstan", "research", "", "1.2.0")
	})
	shouldPanic(t, "an invalid version should panic", func() {
		service.NewDescriptor("capstan", "research", "datastore", "not-semver")
	})
}

func TestNewVersion(t *testing.T) {
	v := service.NewVersion("2.1.3")
	if v.Major() != 2 || v.Minor() != 1 || v.Patch() != 3 {
		t.Errorf("version : %v", v)
	}

	shouldPanic(t, "an invalid version should panic", func() {
		service.NewVersion("x.y.z")
	})
}
