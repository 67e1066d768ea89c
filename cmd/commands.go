// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package cmd implements the oxlr command-line interface: a thin cobra
// wrapper that loads a module universe, resolves one module's entry
// function, runs it to completion on the SSA interpreter, and reports the
// result.
package cmd

import (
	"github.com/spf13/cobra"
)

// RootCommand is the base CLI command that every verb is registered
// against, the same shape as OPA's own cmd.RootCommand.
var RootCommand = &cobra.Command{
	Use:   "oxlr",
	Short: "oxlr runs compiled SSA-IR modules",
	Long:  "oxlr loads a compiled module universe and executes one module's entry function on the SSA interpreter.",

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	initRun(RootCommand)
}
