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

package http_test

import (
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"testing"
	"time"

	metricshttp "github.com/oceanops/capstan/pkg/metrics/http"
	"github.com/oceanops/capstan/pkg/service"
)

// get retries while the reporter's listener is binding
func get(t *testing.T, url string) *nethttp.Response {
	t.Helper()
	var err error
	for i := 0; i < 50; i++ {
		var resp *nethttp.Response
		if resp, err = nethttp.Get(url); err == nil {
			return resp
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal(err)
	return nil
}

func TestReporter(t *testing.T) {
	const port uint = 18562

	app := service.NewApplication(service.ApplicationSettings{})
	client := app.MustRegisterService(metricshttp.NewReporterClient(port))
	defer client.Service().Stop()

	if err := client.Service().AwaitUntilRunning(); err != nil {
		t.Fatal(err)
	}

	reporter, ok := client.(metricshttp.Reporter)
	if !ok {
		t.Fatalf("the client should implement Reporter : %T", client)
	}
	if reporter.Registry() == nil {
		t.Fatal("the reporter should expose the metrics registry")
	}

	resp := get(t, fmt.Sprintf("http://localhost:%d/metrics", port))
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status : %v", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("the response should report the Go collector metrics")
	}
}

func TestNewReporterClient_DefaultPort(t *testing.T) {
	app := service.NewApplication(service.ApplicationSettings{})
	client := app.MustRegisterService(metricshttp.NewReporterClient(0))
	defer client.Service().Stop()

	if err := client.Service().AwaitUntilRunning(); err != nil {
		t.Fatal(err)
	}
	if client.Service().Name() != metricshttp.Component {
		t.Errorf("registration name : %v", client.Service().Name())
	}

	resp := get(t, fmt.Sprintf("http://localhost:%d/metrics", metricshttp.DefaultHTTPPort))
	resp.Body.Close()
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status : %v", resp.Status)
	}
}
