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
	"sync"
	"testing"
	"time"

	"github.com/oceanops/capstan/pkg/service"
)

func TestServiceState_NewServiceState(t *testing.T) {
	now := time.Now()
	serviceState := service.NewServiceState()
	if state, ts := serviceState.State(); state != service.New {
		t.Errorf("A new ServiceState should initially be in a New State, but it was : %v", state)
		if ts.Before(now) {
			t.Errorf("The state timestamp is too old. It should have been around now")
		}
	}
}

func TestServiceState_SetState(t *testing.T) {
	serviceState := service.NewServiceState()
	_, ts1 := serviceState.State()
	serviceState.SetState(service.Starting)
	state2, ts2 := serviceState.State()
	if state2 != service.Starting {
		t.Errorf("State should have changed to Starting but is : %v", state2)
	}
	if ts2.Before(ts1) {
		t.Errorf("The timestamp after changing the state should not be before the previous state timestamp : previous (%v) current (%v)", ts1, ts2)
	}

	if set, err := serviceState.SetState(service.Starting); set || err != nil {
		t.Errorf("Setting to the same state should not update the state")
	}
	if _, ts3 := serviceState.State(); ts3 != ts2 {
		t.Errorf("Setting to the same state should not update the timestamp : %v -> %v", ts2, ts3)
	}

	if set, err := serviceState.SetState(service.New); set || err == nil {
		t.Errorf("An invalid state transition should have failed : set = %v, err = %v", set, err)
	} else {
		switch err.(type) {
		case *service.InvalidStateTransition:
			t.Logf("expected error : %v", err)
		default:
			t.Errorf("The error type should be *service.InvalidStateTransition, but was %T", err)
		}
	}
}

func TestServiceState_SetState_Failed(t *testing.T) {
	serviceState := service.NewServiceState()
	serviceState.SetState(service.Starting)
	serviceState.SetState(service.Failed)
	if err := serviceState.FailureCause(); err == nil {
		t.Error("FailureCause should be UnknownFailureCause but was nil")
	} else {
		switch err.(type) {
		case service.UnknownFailureCause:
		default:
			t.Errorf("FailureCause should be UnknownFailureCause but was : %T", err)
		}
	}
}

func TestServiceState_Failed(t *testing.T) {
	serviceState := service.NewServiceState()

	// New -> Failed is not a valid transition
	if serviceState.Failed(nil) {
		t.Error("Transitioning from New -> Failed should not be allowed")
	}
	if err := serviceState.FailureCause(); err != nil {
		t.Errorf("FailureCause should be nil, but was : %v", err)
	}

	serviceState.SetState(service.Starting)
	if !serviceState.Failed(nil) {
		t.Error("Transitioning from Starting -> Failed should be allowed")
	}
	if state, _ := serviceState.State(); state != service.Failed {
		t.Errorf("The state should have been Failed, but was %v", state)
	}
	switch serviceState.FailureCause().(type) {
	case service.UnknownFailureCause:
	default:
		t.Errorf("The FailureCause type should have been UnknownFailureCause but was %T", serviceState.FailureCause())
	}

	// once Failed, the failure cause is updated but the state is unchanged
	_, stateTS := serviceState.State()
	if serviceState.Failed(&service.IllegalStateError{State: service.Failed}) {
		t.Error("The state should not have been updated because it is already Failed")
	}
	if _, ts := serviceState.State(); !ts.Equal(stateTS) {
		t.Errorf("The state timestamp should not have changed : %v -> %v", stateTS, ts)
	}
	switch serviceState.FailureCause().(type) {
	case *service.IllegalStateError:
	default:
		t.Errorf("The FailureCause type should have been IllegalStateError but was %T", serviceState.FailureCause())
	}
}

func TestServiceState_NewStateChangeListener(t *testing.T) {
	serviceState := service.NewServiceState()
	l := serviceState.NewStateChangeListener()

	stateChanges := []service.State{}
	lClosed := sync.WaitGroup{}
	lClosed.Add(1)
	go func() {
		defer lClosed.Done()
		for state := range l.Channel() {
			stateChanges = append(stateChanges, state)
		}
	}()

	serviceState.Starting()
	serviceState.Running()
	serviceState.Stopping()
	serviceState.Terminated()

	lClosed.Wait()

	if len(stateChanges) != 4 {
		t.Errorf("Expected 4 State transitions but got %d : %v", len(stateChanges), stateChanges)
	}
	if stateChanges[0] != service.Starting {
		t.Errorf("Expected state[0] to be Starting but was : %v", stateChanges[0])
	}
	if stateChanges[3] != service.Terminated {
		t.Errorf("Expected state[3] to be Terminated but was : %v", stateChanges[3])
	}
}

func TestServiceState_NewStateChangeListener_AfterStopped(t *testing.T) {
	serviceState := service.NewServiceState()
	serviceState.Starting()
	serviceState.Running()
	serviceState.Stopping()
	serviceState.Terminated()

	// a listener created after the terminal state receives the terminal state and is closed
	l := serviceState.NewStateChangeListener()
	count := 0
	for state := range l.Channel() {
		count++
		if state != service.Terminated {
			t.Errorf("Expected state to be Terminated, but was %v", state)
		}
	}
	if count != 1 {
		t.Errorf("Expected a single state message : %d", count)
	}
}

func TestStateChangeListener_Cancel(t *testing.T) {
	serviceState := service.NewServiceState()
	l := serviceState.NewStateChangeListener()

	serviceState.Starting()
	l.Cancel()

	// the channel must be closed after cancelling
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-l.Channel():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("The listener channel should have been closed")
		}
	}
}
