// Copyright 2017 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package metrics instruments the machine and memory packages with
// Prometheus counters so a long-running host process can observe
// interpreter behavior (instructions executed, allocations, GC hook
// invocations, call depth) without the runtime depending on any
// particular exporter.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// VM collects the runtime's execution counters. The zero value is not
// usable; construct with New.
type VM struct {
	Instructions prometheus.Counter
	Calls        prometheus.Counter
	Allocations  prometheus.Counter
	GCRuns       prometheus.Counter
	CallDepth    prometheus.Histogram
}

// New creates a VM metrics collector and registers it with reg. Passing
// GlobalMetricsRegistry ties it into the process-wide registry; tests
// typically pass a fresh prometheus.NewRegistry() instead to avoid
// duplicate-registration panics across parallel runs.
func New(reg *prometheus.Registry) *VM {
	v := &VM{
		Instructions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxlr_instructions_executed_total",
			Help: "Total number of SSA instructions executed by the machine.",
		}),
		Calls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxlr_calls_total",
			Help: "Total number of function/implementation calls dispatched.",
		}),
		Allocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxlr_allocations_total",
			Help: "Total number of heap allocations performed.",
		}),
		GCRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxlr_gc_runs_total",
			Help: "Total number of times the GC hook was invoked.",
		}),
		CallDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oxlr_call_depth",
			Help:    "Observed call stack depth at each call.",
			Buckets: prometheus.LinearBuckets(0, 4, 10),
		}),
	}
	reg.MustRegister(v.Instructions, v.Calls, v.Allocations, v.GCRuns, v.CallDepth)
	return v
}

// NoOp returns a VM collector backed by a private registry, for code paths
// (like unit tests) that want the instrumentation calls to be valid but
// don't care about the values.
func NoOp() *VM {
	return New(prometheus.NewRegistry())
}
