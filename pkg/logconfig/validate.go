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

// Validate checks the configuration invariants and returns the first
// violation found, or nil if the configuration is sound.
//
// Invariants :
//  1. the root logger is defined
//  2. every handler referenced by a logger is defined
//  3. every formatter referenced by a handler is defined
//  4. file based handlers have a file path
//  5. rotating file handlers have maxBytes > 0 and backupCount >= 0
func (cfg *Config) Validate() error {
	for _, err := range cfg.problems(true) {
		return err
	}
	return nil
}

// Problems checks the configuration invariants and returns all violations.
// nil is returned if the configuration is sound.
func (cfg *Config) Problems() *ConfigErrors {
	if errs := cfg.problems(false); len(errs) > 0 {
		return &ConfigErrors{Errors: errs}
	}
	return nil
}

func (cfg *Config) problems(firstOnly bool) []error {
	var errs []error
	report := func(err error) bool {
		errs = append(errs, err)
		return firstOnly
	}

	if _, exists := cfg.Loggers[RootLogger]; !exists {
		if report(&MissingRootLoggerError{}) {
			return errs
		}
	}

	for _, name := range cfg.LoggerNames {
		logger := cfg.Loggers[name]
		for _, handler := range logger.Handlers {
			if _, exists := cfg.Handlers[handler]; !exists {
				if report(&UnknownHandlerRefError{Logger: name, Handler: handler}) {
					return errs
				}
			}
		}
	}

	for _, name := range cfg.HandlerNames {
		handler := cfg.Handlers[name]
		if handler.Formatter != "" {
			if _, exists := cfg.Formatters[handler.Formatter]; !exists {
				if report(&UnknownFormatterRefError{Handler: name, Formatter: handler.Formatter}) {
					return errs
				}
			}
		}
		switch handler.Class {
		case FileHandler:
			if handler.Filename == "" {
				if report(&MissingFilenameError{Handler: name}) {
					return errs
				}
			}
		case RotatingFileHandler:
			if handler.Filename == "" {
				if report(&MissingFilenameError{Handler: name}) {
					return errs
				}
			}
			if handler.MaxBytes <= 0 || handler.BackupCount < 0 {
				if report(&InvalidRotationError{Handler: name, MaxBytes: handler.MaxBytes, BackupCount: handler.BackupCount}) {
					return errs
				}
			}
		}
	}

	return errs
}
