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

// capstan boots service containers from release manifests.
//
//	capstan validate -manifest release.yml [-logconfig logging.conf] [-all]
//	capstan plan -manifest release.yml
//	capstan history -store releases.db
//	capstan run -manifest release.yml [-logconfig logging.conf] [-store releases.db] [-metrics-port 4444] [-core 1.0.0]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver"
	"github.com/oceanops/capstan/pkg/data/releases"
	"github.com/oceanops/capstan/pkg/logconfig"
	"github.com/oceanops/capstan/pkg/manifest"
	metricshttp "github.com/oceanops/capstan/pkg/metrics/http"
	"github.com/oceanops/capstan/pkg/service"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "validate":
		os.Exit(validateCmd(os.Args[2:]))
	case "plan":
		os.Exit(planCmd(os.Args[2:]))
	case "history":
		os.Exit(historyCmd(os.Args[2:]))
	case "run":
		os.Exit(runCmd(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command : %v\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: capstan <validate|plan|history|run> [flags]")
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}

// validateCmd checks the release manifest and/or logging config invariants
func validateCmd(args []string) int {
	flags := flag.NewFlagSet("validate", flag.ExitOnError)
	manifestPath := flags.String("manifest", "", "release manifest file")
	logConfigPath := flags.String("logconfig", "", "logging config file")
	all := flags.Bool("all", false, "report all problems instead of only the first")
	flags.Parse(args)

	if *manifestPath == "" && *logConfigPath == "" {
		fmt.Fprintln(os.Stderr, "either -manifest or -logconfig is required")
		return 2
	}

	exitCode := 0
	if *manifestPath != "" {
		release, err := manifest.Load(*manifestPath)
		if err != nil {
			return fail(err)
		}
		if *all {
			if problems := release.Problems(); problems != nil {
				for _, err := range problems.Errors {
					fmt.Fprintln(os.Stderr, err)
				}
				exitCode = 1
			}
		} else if err := release.Validate(); err != nil {
			return fail(err)
		}
		if exitCode == 0 {
			fmt.Printf("%v %v : OK\n", release.Name, release.Version)
		}
	}

	if *logConfigPath != "" {
		cfg, err := logconfig.Load(*logConfigPath)
		if err != nil {
			return fail(err)
		}
		if *all {
			if problems := cfg.Problems(); problems != nil {
				for _, err := range problems.Errors {
					fmt.Fprintln(os.Stderr, err)
				}
				exitCode = 1
			}
		} else if err := cfg.Validate(); err != nil {
			return fail(err)
		}
		if exitCode == 0 {
			fmt.Printf("%v : OK\n", *logConfigPath)
		}
	}

	return exitCode
}

// planCmd prints the boot plan : bootlevel groups with dependency edges
func planCmd(args []string) int {
	flags := flag.NewFlagSet("plan", flag.ExitOnError)
	manifestPath := flags.String("manifest", "", "release manifest file")
	flags.Parse(args)

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "-manifest is required")
		return 2
	}
	release, err := manifest.Load(*manifestPath)
	if err != nil {
		return fail(err)
	}
	if err := release.Validate(); err != nil {
		return fail(err)
	}

	fmt.Printf("%v %v\n", release.Name, release.Version)
	for _, level := range release.BootLevels() {
		fmt.Printf("bootlevel %d:\n", level.Level)
		for _, app := range level.Apps {
			line := fmt.Sprintf("  %v %v", app.Name, app.Version)
			if app.ProcessApp != nil {
				line += fmt.Sprintf(" [%v]", app.ProcessApp.Key())
			} else {
				line += " [config only]"
			}
			if refs := app.ServiceRefs(); len(refs) > 0 {
				line += " -> " + strings.Join(refs, ", ")
			}
			fmt.Println(line)
		}
	}
	return 0
}

// historyCmd lists the recorded deployments
func historyCmd(args []string) int {
	flags := flag.NewFlagSet("history", flag.ExitOnError)
	storePath := flags.String("store", "", "release store file")
	flags.Parse(args)

	if *storePath == "" {
		fmt.Fprintln(os.Stderr, "-store is required")
		return 2
	}
	store, err := releases.OpenStore(*storePath)
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	history, err := store.History()
	if err != nil {
		return fail(err)
	}
	for _, deployment := range history {
		fmt.Printf("%d\t%v\t%v %v\t%d apps\n",
			deployment.Seq,
			deployment.Time.Format(time.RFC3339),
			deployment.Release.Name,
			deployment.Release.Version,
			len(deployment.Release.Apps))
	}
	return 0
}

// runCmd boots the release and blocks until the container is stopped
func runCmd(args []string) int {
	flags := flag.NewFlagSet("run", flag.ExitOnError)
	manifestPath := flags.String("manifest", "", "release manifest file")
	logConfigPath := flags.String("logconfig", "", "logging config file")
	storePath := flags.String("store", "", "release store file - deployments are recorded when set")
	metricsPort := flags.Uint("metrics-port", uint(metricshttp.DefaultHTTPPort), "prometheus /metrics port")
	coreVersion := flags.String("core", "1.0.0", "container core version")
	flags.Parse(args)

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "-manifest is required")
		return 2
	}
	release, err := manifest.Load(*manifestPath)
	if err != nil {
		return fail(err)
	}

	if *logConfigPath != "" {
		cfg, err := logconfig.Load(*logConfigPath)
		if err != nil {
			return fail(err)
		}
		loggers, err := logconfig.Apply(cfg)
		if err != nil {
			return fail(err)
		}
		defer loggers.Close()
	}

	core, err := semver.NewVersion(*coreVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -core version : %v\n", err)
		return 2
	}
	app := service.NewApplication(service.ApplicationSettings{CoreVersion: core})
	app.UpdateDescriptor("capstan", release.Name, "container", *coreVersion)
	app.MustRegisterService(metricshttp.NewReporterClient(*metricsPort))
	for _, spec := range release.Apps {
		if spec.ProcessApp != nil {
			app.MustRegisterFactory(spec.ProcessApp.Key(), supervisedFactory)
		}
	}

	app.Start()
	if err := app.Deploy(release); err != nil {
		app.Stop()
		return fail(err)
	}

	if *storePath != "" {
		store, err := releases.CreateStore(*storePath)
		if err != nil {
			app.Stop()
			return fail(err)
		}
		app.RegisterShutdownHook(func() { store.Close() })
		if _, err := store.Record(release); err != nil {
			app.Stop()
			return fail(err)
		}
	}

	app.Service().AwaitUntilStopped()
	return 0
}

type supervisedClient struct {
	*service.RestartableService
}

// supervisedFactory builds a generic supervised service from an app's manifest
// record : it carries the app's name, version, dependencies, and config payload,
// and runs until the container stops it. Embedding programs register their own
// factories for their service implementations.
func supervisedFactory(application service.Application, spec *manifest.App) service.Client {
	newService := func() service.Service {
		var config map[string]interface{}
		if spec.ProcessApp != nil {
			config = spec.Config[spec.ProcessApp.Module]
		}
		return service.NewService(service.Settings{
			Descriptor:   service.NewDescriptor("capstan", "release", spec.Name, spec.Version),
			Dependencies: service.ManifestDependencies(spec),
			Config:       config,
		})
	}
	return &supervisedClient{service.NewRestartableService(newService)}
}
