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

// Package service is the container runtime : an application is a container
// for named, versioned services, booted from a release manifest.
//
// Services have a lifecycle defined by their Init, Run, and Destroy
// functions and run in their own goroutine. The lifecycle state is tracked
// by ServiceState and every transition can be observed through state change
// listeners. Each service gets its own logger.
//
//	Normal life cycle : New -> Starting -> Running -> Stopping -> Terminated
//
// A service that fails while starting, running, or stopping transitions to
// Failed. A stopped service may not be restarted - Client wraps services
// with restart support by constructing a fresh instance.
//
// The Application resolves service factories by the processapp registration
// key from the release manifest, instantiates apps bootlevel by bootlevel in
// manifest order, awaits each level running before starting the next, and
// stops everything in reverse order on shutdown.
//
// Services must be designed to be concurrency safe. The recommended approach
// is to design the service as a message processor leveraging channels and
// goroutines.
//
// Key Interfaces
//
//	Service
//	Client
//	Application
//
// All exported functions and methods are safe to be used concurrently unless
// specified otherwise.
package service
