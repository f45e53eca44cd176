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

package logconfig

import (
	"fmt"
	"strings"
)

// MissingSectionError indicates a required index section ([loggers],
// [handlers], [formatters]) or a referenced entity section is absent.
type MissingSectionError struct {
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("missing section : [%v]", e.Section)
}

// MissingRootLoggerError indicates the root logger is not defined.
// The root logger must always exist.
type MissingRootLoggerError struct{}

func (e *MissingRootLoggerError) Error() string {
	return "the root logger is not defined"
}

// UnknownHandlerRefError indicates a logger references a handler that is not
// defined in [handlers].
type UnknownHandlerRefError struct {
	Logger  string
	Handler string
}

func (e *UnknownHandlerRefError) Error() string {
	return fmt.Sprintf("logger %q references unknown handler %q", e.Logger, e.Handler)
}

// UnknownFormatterRefError indicates a handler references a formatter that is
// not defined in [formatters].
type UnknownFormatterRefError struct {
	Handler   string
	Formatter string
}

func (e *UnknownFormatterRefError) Error() string {
	return fmt.Sprintf("handler %q references unknown formatter %q", e.Handler, e.Formatter)
}

// UnknownClassError indicates a handler class name is not recognized.
type UnknownClassError struct {
	Handler string
	Class   string
}

func (e *UnknownClassError) Error() string {
	if e.Handler == "" {
		return fmt.Sprintf("unknown handler class : %q", e.Class)
	}
	return fmt.Sprintf("handler %q has unknown class %q", e.Handler, e.Class)
}

// UnknownLevelError indicates a severity level name is not recognized.
type UnknownLevelError struct {
	Level string
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("unknown level : %q", e.Level)
}

// ArgsSyntaxError indicates a handler args tuple could not be parsed.
type ArgsSyntaxError struct {
	Handler string
	Args    string
	Reason  string
}

func (e *ArgsSyntaxError) Error() string {
	return fmt.Sprintf("handler %q has malformed args %q : %v", e.Handler, e.Args, e.Reason)
}

// MissingFilenameError indicates a file based handler has no file path.
type MissingFilenameError struct {
	Handler string
}

func (e *MissingFilenameError) Error() string {
	return fmt.Sprintf("handler %q requires a file path", e.Handler)
}

// InvalidRotationError indicates a rotating file handler has an invalid max
// byte size or backup count. maxBytes must be positive and backupCount must
// be non-negative.
type InvalidRotationError struct {
	Handler     string
	MaxBytes    int64
	BackupCount int
}

func (e *InvalidRotationError) Error() string {
	return fmt.Sprintf("handler %q has invalid rotation parameters : maxBytes = %d, backupCount = %d",
		e.Handler, e.MaxBytes, e.BackupCount)
}

// ConfigErrors aggregates all invariant violations found in a Config.
type ConfigErrors struct {
	Errors []error
}

func (e *ConfigErrors) Error() string {
	errorMessages := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		errorMessages[i] = v.Error()
	}
	return fmt.Sprintf("Error count = %d : %v", len(errorMessages), strings.Join(errorMessages, " | "))
}

// HasErrors returns true if any invariant was violated
func (e *ConfigErrors) HasErrors() bool {
	return len(e.Errors) > 0
}
