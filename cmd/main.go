package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	licenses "github.com/ethereum-optimism/infra/op-licenses"
	"github.com/ethereum-optimism/infra/op-licenses/exitcodes"
	"github.com/ethereum-optimism/infra/op-licenses/flags"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "op-licenses"
	app.Usage = "Third-party license collector"
	app.Description = "op-licenses reads Go package paths from stdin, finds each package's license in the vendor tree and writes a single report"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run)
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if licenses.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if licenses.IsMissingLicenseError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.MissingLicense))
			} else {
				// Anything that is not an unlicensed dependency is a runtime error
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			}
		}
	}
	app.OnUsageError = func(c *cli.Context, err error, isSubcommand bool) error {
		return licenses.NewRuntimeError(fmt.Errorf("invalid usage: %w", err))
	}

	ctx := ctxinterrupt.WithSignalWaiterMain(context.Background())
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		// The configured logger is not installed until run, so report directly.
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(exitcodes.RuntimeErr)
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	// stdout carries the report
	logCfg := oplog.ReadCLIConfig(ctx)
	log := oplog.NewLogger(os.Stderr, logCfg)
	oplog.SetGlobalLogHandler(log.Handler())
	oplog.SetupDefaults()

	cfg, err := licenses.NewConfig(ctx, log)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return nil, licenses.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config", "config", cfg)

	app, err := licenses.New(ctx.Context, cfg, Version, closeApp)
	if err != nil {
		return nil, licenses.NewRuntimeError(fmt.Errorf("failed to create collector: %w", err))
	}

	return app, nil
}
