package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-licenses/types"
	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_LICENSES"

var (
	Vendor = &cli.StringSliceFlag{
		Name:    "vendor",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "VENDOR"),
		Usage:   "Vendor root to search for license files, in order. May be repeated. Defaults to ./vendor if it exists",
	}
	Input = &cli.StringFlag{
		Name:    "input",
		Value:   "-",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "INPUT"),
		Usage:   "File with one package path per line ('-' reads stdin)",
	}
	Output = &cli.StringFlag{
		Name:    "output",
		Value:   "-",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "OUTPUT"),
		Usage:   "File to write the report to ('-' writes stdout). Only written when every package has a license",
	}
	Format = &cli.StringFlag{
		Name:    "format",
		Value:   string(types.FormatMarkdown),
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FORMAT"),
		Usage:   fmt.Sprintf("Report format. Must be one of: %v", types.ValidFormats()),
	}
	Policy = &cli.StringFlag{
		Name:    "policy",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "POLICY"),
		Usage:   "Path to a policy file with exceptions, seeded licenses and extra vendor roots (eg. 'licenses.yaml')",
	}
	GoMod = &cli.StringFlag{
		Name:    "gomod",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "GOMOD"),
		Usage:   "Path to the go.mod of the audited module. Packages of that module are skipped",
	}
	Summary = &cli.BoolFlag{
		Name:    "summary",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SUMMARY"),
		Usage:   "Print a summary table to stderr after a successful run",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Vendor,
	Input,
	Output,
	Format,
	Policy,
	GoMod,
	Summary,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
