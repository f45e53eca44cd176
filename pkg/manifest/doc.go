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

// Package manifest loads and validates release manifests.
//
// A release manifest is static release data : top level metadata (type,
// name, version, description, and a core version compatibility constraint)
// and an ordered list of apps. Each app names a service with a semantic
// version, an optional processapp descriptor (registration key, module path,
// class name) describing how to instantiate it, and an optional
// configuration payload keyed by fully qualified module path.
//
// The ordering of the apps list encodes startup priority. Bootlevels are
// explicit : an app without a bootlevel inherits the previous app's level,
// and levels must be non-decreasing in sequence order. A service referenced
// by another app - through an explicit dependencies entry or through a
// *_service field in a configuration payload - must appear earlier in the
// sequence.
//
// The manifest is loaded once at deployment time and never mutated.
package manifest
