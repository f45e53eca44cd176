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
	"github.com/oceanops/capstan/pkg/logging"
	"github.com/rs/zerolog"
)

// service log events
var (
	// STATE_CHANGED is logged for each service lifecycle state transition
	STATE_CHANGED = logging.Event{Id: 1000, Level: zerolog.InfoLevel}

	// STOP_TRIGGERED is logged when service shutdown is triggered
	STOP_TRIGGERED = logging.Event{Id: 1001, Level: zerolog.InfoLevel}

	// DEPLOY_STARTED is logged when the application begins deploying a release
	DEPLOY_STARTED = logging.Event{Id: 1100, Level: zerolog.InfoLevel}

	// BOOTLEVEL_STARTED is logged when all apps at a bootlevel are running
	BOOTLEVEL_STARTED = logging.Event{Id: 1101, Level: zerolog.InfoLevel}

	// DEPLOY_COMPLETED is logged when all apps in the release are running
	DEPLOY_COMPLETED = logging.Event{Id: 1102, Level: zerolog.InfoLevel}
)
