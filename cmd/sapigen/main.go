package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/toyz/sapigen/internal/cli"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := cli.ParseArgs(args, os.Stderr)
	if err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return 0
		}
		var sapiErr errors.SapiError
		if !stderrors.As(err, &sapiErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\nRun 'sapigen --help' for usage.\n", err)
			return 2
		}
		cli.NewDiagnosticReporter(false).ReportError(err)
		return 1
	}

	if cfg.ShowVersion {
		fmt.Printf("sapigen %s\n", cli.Version)
		return 0
	}

	diagnostics := utils.NewDiagnosticSystem(cfg.DiagnosticLevel())

	if cfg.Verbose {
		diagnostics.Section("Sandboxed API Header Generator")
		diagnostics.Subsection("Configuration")
		diagnostics.List("Inputs: %s", strings.Join(cfg.Inputs, ", "))
		if cfg.ConfigFile != "" {
			diagnostics.List("Config file: %s", cfg.ConfigFile)
		}
		if cfg.WorkDir != "" {
			diagnostics.List("Work dir: %s", cfg.WorkDir)
		}
		if len(cfg.FunctionNames) > 0 {
			diagnostics.List("Functions: %s", strings.Join(cfg.FunctionNames, ", "))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator := cli.NewGenerator(cfg.Verbose, diagnostics)
	if err := generator.Run(ctx, cfg); err != nil {
		if stderrors.Is(err, context.Canceled) {
			diagnostics.Error("Generation interrupted")
			return 130
		}
		generator.Reporter().ReportError(err)
		return 1
	}

	diagnostics.Summary("Generation Summary", generator.GetSummary().Stats())
	diagnostics.GenerationComplete()
	return 0
}
