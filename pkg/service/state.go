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

import "fmt"

// State is an enum representing the service lifecycle state
type State int

// State enum values
// Normal service life cycle : New -> Starting -> Running -> Stopping -> Terminated
// If the service fails while starting, running, or stopping, then it goes into the Failed state.
// A stopped service may not be restarted.
// The ordering is defined such that if there is a state transition from A -> B then A < B.
const (
	// New - the service is inactive and has never been started
	New State = iota
	// Starting - the service is transitioning to Running
	Starting
	// Running - the service is operational
	Running
	// Stopping - the service is transitioning to Terminated
	Stopping
	// Terminated - the service completed execution normally
	Terminated
	// Failed - the service encountered a problem and is not operational. It cannot be started nor stopped.
	Failed
)

// New returns true if the State is New
func (s State) New() bool { return s == New }

// Starting returns true if the State is Starting
func (s State) Starting() bool { return s == Starting }

// Running returns true if the State is Running
func (s State) Running() bool { return s == Running }

// Stopping returns true if the State is Stopping
func (s State) Stopping() bool { return s == Stopping }

// Terminated returns true if the State is Terminated
func (s State) Terminated() bool { return s == Terminated }

// Failed returns true if the State is Failed
func (s State) Failed() bool { return s == Failed }

// Stopped returns true if the service is Terminated or Failed
func (s State) Stopped() bool {
	return s == Terminated || s == Failed
}

// ValidTransitions returns the States the current State is permitted to transition to
func (s State) ValidTransitions() (states []State) {
	switch s {
	case New:
		states = []State{Starting, Terminated}
	case Starting:
		states = []State{Running, Stopping, Terminated, Failed}
	case Running:
		states = []State{Stopping, Terminated, Failed}
	case Stopping:
		states = []State{Terminated, Failed}
	case Terminated:
	case Failed:
	default:
		panic(fmt.Sprintf("Unknown State : %v", int(s)))
	}
	return
}

// ValidTransition returns true if the state transition is permitted
func (s State) ValidTransition(to State) bool {
	for _, validState := range s.ValidTransitions() {
		if validState == to {
			return true
		}
	}
	return false
}

func (s State) String() string {
	switch s {
	case New:
		return "New"
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	case Terminated:
		return "Terminated"
	case Failed:
		return "Failed"
	default:
		panic(fmt.Sprintf("UNKNOWN STATE : %d", s))
	}
}
