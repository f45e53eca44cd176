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

// Package metrics provides metrics support via prometheus.
//
// The package maintains a global prometheus Registry. Metrics are registered
// through the GetOrMustRegisterXXX functions, which cache the metric along
// with its opts so that registration is idempotent - re-registering with the
// same opts returns the cached metric, re-registering with different opts
// panics.
//
// Health checks are modelled as gauge metrics, where
//
//	0 = FAIL
//	1 = PASS
//
// and each health check also records its run duration as a gauge. Health
// checks can be scheduled to run periodically.
package metrics
