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
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Release is a parsed release manifest.
// It is built once by Load/Parse and never mutated afterwards.
type Release struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`

	// Core is a semver constraint naming the container core versions this
	// release is compatible with, e.g. ">= 0.4.0"
	Core string `yaml:"core"`

	Apps []*App `yaml:"apps"`
}

// App is a single service record in the release manifest.
type App struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// ProcessApp describes how to instantiate the service.
	// Apps without one are configuration-only records.
	ProcessApp *ProcessApp `yaml:"processapp"`

	// Config is the service's configuration payload, keyed by fully
	// qualified module path. The payload is opaque to the container and is
	// handed to the service's own initialization.
	Config map[string]map[string]interface{} `yaml:"config"`

	// BootLevel is the startup tier. 0 means unset : the app inherits the
	// previous app's level (the first app defaults to level 1).
	BootLevel int `yaml:"bootlevel"`

	// Dependencies names services this app requires to be started earlier.
	// Entries may carry a version constraint : "datastore >= 1.2.0"
	Dependencies []string `yaml:"dependencies"`
}

// ProcessApp is the instantiation descriptor triplet : the registration key
// the container resolves a service factory by, plus the module path and
// class name of the implementation.
type ProcessApp struct {
	Name   string `yaml:"name"`
	Module string `yaml:"module"`
	Class  string `yaml:"class"`
}

// Key returns the registration key the container resolves a service factory
// by : {module}/{class}
func (p *ProcessApp) Key() string {
	return p.Module + "/" + p.Class
}

// UnmarshalYAML accepts both the mapping form
//
//	processapp: {name: datastore, module: ion.services.coi.datastore, class: DataStoreService}
//
// and the positional triplet form
//
//	processapp: [datastore, ion.services.coi.datastore, DataStoreService]
func (p *ProcessApp) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var triplet []string
		if err := value.Decode(&triplet); err != nil {
			return err
		}
		if len(triplet) != 3 {
			return fmt.Errorf("processapp triplet must have 3 elements, got %d", len(triplet))
		}
		p.Name, p.Module, p.Class = triplet[0], triplet[1], triplet[2]
		return nil
	case yaml.MappingNode:
		type plain ProcessApp
		return value.Decode((*plain)(p))
	default:
		return fmt.Errorf("processapp must be a mapping or a 3-element sequence")
	}
}

// Load reads and parses the release manifest file at path.
func Load(path string) (*Release, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses release manifest source and normalizes bootlevels : apps
// without an explicit level inherit the previous app's level, and the first
// app defaults to level 1.
func Parse(src []byte) (*Release, error) {
	release := &Release{}
	if err := yaml.Unmarshal(src, release); err != nil {
		return nil, err
	}

	level := 1
	for _, app := range release.Apps {
		if app.BootLevel == 0 {
			app.BootLevel = level
		} else {
			level = app.BootLevel
		}
	}

	return release, nil
}

// App looks up an app by name. nil is returned if no such app exists.
func (r *Release) App(name string) *App {
	for _, app := range r.Apps {
		if app.Name == name {
			return app
		}
	}
	return nil
}

// BootLevels returns the apps grouped by bootlevel, in start order.
func (r *Release) BootLevels() []BootLevel {
	var levels []BootLevel
	for _, app := range r.Apps {
		if n := len(levels); n > 0 && levels[n-1].Level == app.BootLevel {
			levels[n-1].Apps = append(levels[n-1].Apps, app)
			continue
		}
		levels = append(levels, BootLevel{Level: app.BootLevel, Apps: []*App{app}})
	}
	return levels
}

// BootLevel groups the apps that start within the same tier.
type BootLevel struct {
	Level int
	Apps  []*App
}

// ServiceRefs returns the names of the services this app references : its
// explicit dependencies (constraint suffixes stripped) followed by every
// *_service field value found in its configuration payload.
func (a *App) ServiceRefs() []string {
	var refs []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}

	for _, dep := range a.Dependencies {
		name, _ := splitDependency(dep)
		add(name)
	}
	for _, payload := range a.Config {
		for key, value := range payload {
			if !strings.HasSuffix(key, "_service") {
				continue
			}
			if name, ok := value.(string); ok {
				add(name)
			}
		}
	}
	return refs
}

// splitDependency splits a dependency entry into the service name and an
// optional version constraint, e.g. "datastore >= 1.2.0" -> ("datastore", ">= 1.2.0")
func splitDependency(dep string) (name, constraint string) {
	dep = strings.TrimSpace(dep)
	if i := strings.IndexAny(dep, " \t"); i > 0 {
		return dep[:i], strings.TrimSpace(dep[i:])
	}
	return dep, ""
}

func (a *App) String() string {
	if a.ProcessApp != nil {
		return fmt.Sprintf("%v-%v (%v.%v)", a.Name, a.Version, a.ProcessApp.Module, a.ProcessApp.Class)
	}
	return fmt.Sprintf("%v-%v", a.Name, a.Version)
}
