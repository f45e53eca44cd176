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
	"sync"
	"time"

	"github.com/oceanops/capstan/pkg/commons"
)

// ServiceState manages the service's lifecycle state.
// Use NewServiceState to construct new ServiceState instances.
type ServiceState struct {
	mutex        sync.Mutex
	state        State
	failureCause error
	timestamp    time.Time

	// registered listeners for state changes
	// once the service is stopped, the listeners are cleared
	stateChangeListeners []chan State
}

// NewServiceState initializes the state timestamp to now
func NewServiceState() *ServiceState {
	return &ServiceState{timestamp: time.Now()}
}

func (s *ServiceState) String() string {
	if s.failureCause != nil {
		return fmt.Sprintf("State : %v, Timestamp : %v, FailureCause : %v", s.state, s.timestamp, s.failureCause)
	}
	return fmt.Sprintf("State : %v, Timestamp : %v", s.state, s.timestamp)
}

// State returns the current State and when it transitioned to the State
func (s *ServiceState) State() (State, time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state, s.timestamp
}

// FailureCause returns the error that caused this service to fail.
// Returns nil if the service has no error.
// NOTE: if the service has a failure cause, then the State must be Failed
func (s *ServiceState) FailureCause() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.failureCause
}

// SetState transitions to the specified State only if it is allowed, and records the timestamp.
// If the current state matches the new desired state, then false is returned.
// If an illegal state transition is attempted, then the state is not changed and an error is returned.
func (s *ServiceState) SetState(state State) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.state == state {
		return false, nil
	}
	if !s.state.ValidTransition(state) {
		return false, &InvalidStateTransition{s.state, state}
	}
	s.state = state
	s.timestamp = time.Now()
	if state == Failed && s.failureCause == nil {
		s.failureCause = UnknownFailureCause{}
	}
	s.notifyStateChangeListeners(state)
	return true, nil
}

// Failed transitions to Failed with the specified error only if it is a valid transition.
// If err is nil, then the failure cause is set to UnknownFailureCause.
// If the current state is already Failed, then the failure cause is updated if err is not nil,
// but state change listeners are not notified.
func (s *ServiceState) Failed(err error) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	setFailureCause := func() {
		if err != nil {
			s.failureCause = err
		}
		if s.failureCause == nil {
			s.failureCause = UnknownFailureCause{}
		}
	}

	if s.state == Failed {
		setFailureCause()
		return false
	}
	if !s.state.ValidTransition(Failed) {
		return false
	}
	s.state = Failed
	s.timestamp = time.Now()
	setFailureCause()
	s.notifyStateChangeListeners(Failed)
	return true
}

// Starting transitions to Starting or returns an InvalidStateTransition error
func (s *ServiceState) Starting() (bool, error) { return s.SetState(Starting) }

// Running transitions to Running or returns an InvalidStateTransition error
func (s *ServiceState) Running() (bool, error) { return s.SetState(Running) }

// Stopping transitions to Stopping or returns an InvalidStateTransition error
func (s *ServiceState) Stopping() (bool, error) { return s.SetState(Stopping) }

// Terminated transitions to Terminated or returns an InvalidStateTransition error
func (s *ServiceState) Terminated() (bool, error) { return s.SetState(Terminated) }

// NewStateChangeListener returns a listener that can be used to monitor the service lifecycle.
// After the service has reached a terminal state, the listener channel is closed.
func (s *ServiceState) NewStateChangeListener() StateChangeListener {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	// there are at most 4 state transitions - buffering them all ensures
	// notifications are never blocked by slow listeners
	c := make(chan State, 4)
	if s.state.Stopped() {
		c <- s.state
		close(c)
	} else {
		s.stateChangeListeners = append(s.stateChangeListeners, c)
	}
	return StateChangeListener{c, s}
}

// deleteStateChangeListener closes the listener channel and removes it from the listener list.
// Returns false if the channel is not currently owned by this ServiceState.
func (s *ServiceState) deleteStateChangeListener(l chan State) bool {
	for i, v := range s.stateChangeListeners {
		if l == v {
			closeStateChanQuietly(l)
			s.stateChangeListeners[i] = s.stateChangeListeners[len(s.stateChangeListeners)-1]
			// release the last slot so the channel can be garbage collected
			s.stateChangeListeners[len(s.stateChangeListeners)-1] = nil
			s.stateChangeListeners = s.stateChangeListeners[:len(s.stateChangeListeners)-1]
			return true
		}
	}
	return false
}

func (s *ServiceState) deleteAllStateChangeListeners() {
	temp := make([]chan State, len(s.stateChangeListeners))
	copy(temp, s.stateChangeListeners)
	for _, l := range temp {
		s.deleteStateChangeListener(l)
	}
}

// ignores the panic if the channel is already closed
func closeStateChanQuietly(c chan State) {
	defer commons.IgnorePanic()
	close(c)
}

// stateChangeChannel looks up the StateChangeListener channel. If it is not found, then nil is returned.
func (s *ServiceState) stateChangeChannel(l StateChangeListener) chan State {
	for _, v := range s.stateChangeListeners {
		if l.c == v {
			return v
		}
	}
	return nil
}

// each StateChangeListener is notified within the state transition's critical section
func (s *ServiceState) notifyStateChangeListeners(state State) {
	if state.Stopped() {
		for _, l := range s.stateChangeListeners {
			func(l chan State) {
				// ignore panics caused by sending on a closed channel
				defer commons.IgnorePanic()
				l <- state
			}(l)
		}
		s.deleteAllStateChangeListeners()
		return
	}

	var closedChannels []chan State
	for _, l := range s.stateChangeListeners {
		func(l chan State) {
			defer func() {
				if p := recover(); p != nil {
					closedChannels = append(closedChannels, l)
				}
			}()
			l <- state
		}(l)
	}
	for _, l := range closedChannels {
		s.deleteStateChangeListener(l)
	}
}

// StateChangeListener contains a channel used to listen for service state changes.
// After a terminal state is reached, the channel is closed.
// NOTE: a StateChangeListener must be created using ServiceState.NewStateChangeListener()
type StateChangeListener struct {
	c chan State
	// owns the listener channel
	s *ServiceState
}

// Channel returns the channel the listener should receive on
func (a *StateChangeListener) Channel() <-chan State {
	return a.c
}

// Cancel deletes the listener from the ServiceState that created it, which also closes the channel.
// Any messages on the channel are drained.
func (a *StateChangeListener) Cancel() {
	a.s.mutex.Lock()
	defer a.s.mutex.Unlock()
	if !a.s.deleteStateChangeListener(a.c) {
		// the ServiceState no longer owns the channel - close it manually in
		// case goroutines are still blocked receiving from it
		closeStateChanQuietly(a.c)
	}
	for range a.c {
	}
}
