// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gvzbm/oxlr/internal/uuid"
	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/logging"
	"github.com/gvzbm/oxlr/machine"
	"github.com/gvzbm/oxlr/metrics"
	"github.com/gvzbm/oxlr/world"
)

const defaultVersionReq = "*"

type runParams struct {
	modulePath  string
	heapSize    int
	stackSize   int
	logLevel    string
	metricsAddr string
}

func initRun(root *cobra.Command) {
	var params runParams

	runCmd := &cobra.Command{
		Use:   "run <module-path> [version-requirement]",
		Short: "Run a compiled module's entry function",
		Long: `Run loads the module universe rooted at OXLR_MODULE_PATH (or
--module-path), resolves <module-path> against [version-requirement]
(default "*"), and executes its "start" function on the SSA interpreter.

The returned value is printed to stdout and the process exits 0. Any
failure during load or execution is printed to stderr and the process
exits 1.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			versionReq := defaultVersionReq
			if len(args) == 2 {
				versionReq = args[1]
			}
			return runModule(args[0], versionReq, params)
		},
	}

	runCmd.Flags().StringVar(&params.modulePath, "module-path", "", "override OXLR_MODULE_PATH for this invocation")
	runCmd.Flags().IntVar(&params.heapSize, "heap-size", 0, "heap byte ceiling (0 uses the runtime default)")
	runCmd.Flags().IntVar(&params.stackSize, "stack-size", 0, "data stack byte capacity (0 uses the runtime default)")
	runCmd.Flags().StringVar(&params.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	runCmd.Flags().StringVar(&params.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics at this address for the run's duration")

	root.AddCommand(runCmd)
}

func runModule(modulePathArg, versionReq string, params runParams) error {
	modulePath, err := ir.ParsePath(modulePathArg)
	if err != nil {
		return fmt.Errorf("invalid module path %q: %w", modulePathArg, err)
	}

	level, err := logging.GetLevel(params.logLevel)
	if err != nil {
		return err
	}
	std := logging.New()
	std.SetLevel(level)

	// Every log line from this run (loader warnings, GC hook invocations)
	// carries the same run id, so interleaved output from repeated
	// invocations of a long-lived wrapper stays attributable.
	log := std.WithFields(map[string]any{"run_id": uuid.New()})

	if params.modulePath != "" {
		if err := os.Setenv("OXLR_MODULE_PATH", params.modulePath); err != nil {
			return err
		}
	}

	w, err := world.New(log)
	if err != nil {
		return fmt.Errorf("initializing module universe: %w", err)
	}
	if err := w.Load(modulePath, versionReq); err != nil {
		return fmt.Errorf("loading module %s: %w", modulePath, err)
	}

	reg := metrics.GlobalMetricsRegistry
	vm := metrics.New(reg)

	if params.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: params.metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server stopped: %v", err)
			}
		}()
		defer srv.Close()
	}

	opts := machine.Options{Log: log, Metrics: vm}
	if params.heapSize > 0 {
		opts.HeapSize = params.heapSize
	}
	if params.stackSize > 0 {
		opts.StackSize = params.stackSize
	}

	m := machine.New(w, opts)
	result, err := m.Start(modulePath)
	if err != nil {
		return fmt.Errorf("running %s::%s: %w", modulePath, machine.EntryFunctionName, err)
	}

	fmt.Println(result.String())
	return nil
}
