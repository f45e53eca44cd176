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

// Package logconfig loads the container's logging configuration.
//
// The configuration is a section based key/value file with three index
// sections - [loggers], [handlers], [formatters] - whose 'keys' entries name
// the defined entities, and one section per entity :
//
//	[logger_<name>]    level, handlers, qualname, propagate
//	[handler_<name>]   class, level, formatter, args, filename, mode, maxBytes, backupCount
//	[formatter_<name>] format, datefmt
//
// The configuration is parsed once at process start and is immutable for the
// process lifetime. Validate enforces the referential integrity invariants :
// every handler referenced by a logger must be defined, every formatter
// referenced by a handler must be defined, and the root logger must exist.
//
// Apply realizes the configuration as zerolog loggers :
//
//	StreamHandler               -> console writer on stdout/stderr
//	FileHandler                 -> plain file sink (append or truncate)
//	handlers.RotatingFileHandler -> size rotated file sink
//
// Key Functions
//
//	Load(path) / Parse(src)
//	(*Config).Validate() / (*Config).Problems()
//	Apply(cfg)
package logconfig
