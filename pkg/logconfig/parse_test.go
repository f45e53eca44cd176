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

package logconfig_test

import (
	"testing"

	"github.com/oceanops/capstan/pkg/logconfig"
)

const containerLogConf = `
[loggers]
keys=root,container,tracer

[handlers]
keys=consoleHandler,fileHandler,tracefileHandler

[formatters]
keys=consoleFormatter,fileFormatter

[logger_root]
level=WARNING
handlers=consoleHandler

[logger_container]
level=INFO
qualname=capstan.container
handlers=consoleHandler,fileHandler
propagate=0

[logger_tracer]
level=DEBUG
qualname=capstan.trace
handlers=tracefileHandler

[handler_consoleHandler]
class=StreamHandler
level=WARNING
formatter=consoleFormatter
args=(sys.stdout,)

[handler_fileHandler]
class=FileHandler
level=INFO
formatter=fileFormatter
args=('logs/container.log', 'a')

[handler_tracefileHandler]
class=handlers.RotatingFileHandler
level=DEBUG
formatter=fileFormatter
args=('logs/trace.log', 'a', 10*1024*1024, 3)

[formatter_consoleFormatter]
format=%(asctime)s [%(levelname)s] %(message)s
datefmt=%H:%M:%S

[formatter_fileFormatter]
format=%(asctime)s [%(levelname)s] %(name)s: %(message)s
datefmt=%Y-%m-%d %H:%M:%S
`

func TestParse(t *testing.T) {
	cfg, err := logconfig.Parse([]byte(containerLogConf))
	if err != nil {
		t.Fatalf("Parse failed : %v", err)
	}

	if len(cfg.Loggers) != 3 || len(cfg.Handlers) != 3 || len(cfg.Formatters) != 2 {
		t.Errorf("wrong entity counts : %d loggers, %d handlers, %d formatters",
			len(cfg.Loggers), len(cfg.Handlers), len(cfg.Formatters))
	}

	root := cfg.Loggers["root"]
	if root == nil {
		t.Fatal("root logger was not parsed")
	}
	if root.Level != logconfig.Warning {
		t.Errorf("root level should be WARNING : %v", root.Level)
	}
	if len(root.Handlers) != 1 || root.Handlers[0] != "consoleHandler" {
		t.Errorf("root handlers are wrong : %v", root.Handlers)
	}

	container := cfg.Loggers["container"]
	if container.Qualname != "capstan.container" {
		t.Errorf("wrong qualname : %v", container.Qualname)
	}
	if container.Propagate {
		t.Error("propagate=0 should disable propagation")
	}
	if !cfg.Loggers["tracer"].Propagate {
		t.Error("propagate should default to true")
	}
}

func TestParse_RotatingHandlerArgs(t *testing.T) {
	cfg, err := logconfig.Parse([]byte(containerLogConf))
	if err != nil {
		t.Fatalf("Parse failed : %v", err)
	}

	handler := cfg.Handlers["tracefileHandler"]
	if handler.Class != logconfig.RotatingFileHandler {
		t.Errorf("wrong class : %v", handler.Class)
	}
	if handler.Filename != "logs/trace.log" {
		t.Errorf("wrong filename : %v", handler.Filename)
	}
	if handler.Mode != "a" {
		t.Errorf("wrong mode : %v", handler.Mode)
	}
	if handler.MaxBytes != 10*1024*1024 {
		t.Errorf("maxBytes product was not evaluated : %d", handler.MaxBytes)
	}
	if handler.BackupCount != 3 {
		t.Errorf("wrong backupCount : %d", handler.BackupCount)
	}
	if handler.Formatter != "fileFormatter" {
		t.Errorf("wrong formatter ref : %v", handler.Formatter)
	}
}

func TestParse_StreamHandlerArgs(t *testing.T) {
	cfg, err := logconfig.Parse([]byte(containerLogConf))
	if err != nil {
		t.Fatalf("Parse failed : %v", err)
	}
	if stream := cfg.Handlers["consoleHandler"].Stream; stream != "sys.stdout" {
		t.Errorf("wrong stream : %v", stream)
	}
}

func TestParse_ExplicitKeysOverrideArgs(t *testing.T) {
	conf := `
[loggers]
keys=root
[handlers]
keys=h
[formatters]
keys=
[logger_root]
level=INFO
handlers=h
[handler_h]
class=handlers.RotatingFileHandler
args=('a.log', 'a', 1024, 1)
filename=b.log
maxBytes=2048
backupCount=5
`
	cfg, err := logconfig.Parse([]byte(conf))
	if err != nil {
		t.Fatalf("Parse failed : %v", err)
	}
	h := cfg.Handlers["h"]
	if h.Filename != "b.log" || h.MaxBytes != 2048 || h.BackupCount != 5 {
		t.Errorf("explicit keys should override args : %+v", h)
	}
}

func TestParse_MissingSections(t *testing.T) {
	if _, err := logconfig.Parse([]byte("[loggers]\nkeys=root\n")); err == nil {
		t.Error("expected a MissingSectionError")
	} else {
		switch err.(type) {
		case *logconfig.MissingSectionError:
			t.Logf("MissingSectionError : %v", err)
		default:
			t.Errorf("expected *logconfig.MissingSectionError, but was %T", err)
		}
	}

	conf := `
[loggers]
keys=root,ghost
[handlers]
keys=
[formatters]
keys=
[logger_root]
level=INFO
`
	if _, err := logconfig.Parse([]byte(conf)); err == nil {
		t.Error("a listed logger without a section should fail to parse")
	}
}

func TestParse_UnknownClass(t *testing.T) {
	conf := `
[loggers]
keys=root
[handlers]
keys=h
[formatters]
keys=
[logger_root]
level=INFO
[handler_h]
class=SyslogHandler
`
	if _, err := logconfig.Parse([]byte(conf)); err == nil {
		t.Error("expected an UnknownClassError")
	} else {
		switch e := err.(type) {
		case *logconfig.UnknownClassError:
			if e.Handler != "h" {
				t.Errorf("error should name the handler : %v", e.Handler)
			}
		default:
			t.Errorf("expected *logconfig.UnknownClassError, but was %T", err)
		}
	}
}

func TestParse_MalformedArgs(t *testing.T) {
	conf := `
[loggers]
keys=root
[handlers]
keys=h
[formatters]
keys=
[logger_root]
level=INFO
[handler_h]
class=FileHandler
args=('unterminated
`
	if _, err := logconfig.Parse([]byte(conf)); err == nil {
		t.Error("expected an ArgsSyntaxError")
	} else {
		switch err.(type) {
		case *logconfig.ArgsSyntaxError:
			t.Logf("ArgsSyntaxError : %v", err)
		default:
			t.Errorf("expected *logconfig.ArgsSyntaxError, but was %T", err)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for name, level := range map[string]logconfig.Level{
		"DEBUG":    logconfig.Debug,
		"info":     logconfig.Info,
		"WARN":     logconfig.Warning,
		"WARNING":  logconfig.Warning,
		"ERROR":    logconfig.Error,
		"CRITICAL": logconfig.Critical,
		"":         logconfig.NotSet,
	} {
		parsed, err := logconfig.ParseLevel(name)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed : %v", name, err)
		}
		if parsed != level {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, parsed, level)
		}
	}

	if _, err := logconfig.ParseLevel("LOUD"); err == nil {
		t.Error("expected an UnknownLevelError")
	}
}
