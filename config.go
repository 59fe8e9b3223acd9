package licenses

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-licenses/flags"
	"github.com/ethereum-optimism/infra/op-licenses/types"
	"github.com/ethereum/go-ethereum/log"

	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

// Config holds the application configuration
type Config struct {
	VendorDirs    []string            // Vendor roots from the command line, in search order
	Input         string              // Package list file; "-" or "" reads stdin
	Output        string              // Report file; "-" or "" writes stdout
	Format        types.Format        // Report format
	PolicyFile    string              // Optional policy file
	GoMod         string              // Optional go.mod of the audited module
	Summary       bool                // Print a summary table to stderr after a successful run
	MetricsConfig opmetrics.CLIConfig // Metrics server settings
	Log           log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	format, err := types.ParseFormat(ctx.String(flags.Format.Name))
	if err != nil {
		return nil, err
	}

	var vendorDirs []string
	for _, dir := range ctx.StringSlice(flags.Vendor.Name) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for vendor root '%s': %w", dir, err)
		}
		vendorDirs = append(vendorDirs, abs)
	}

	policyFile, err := absOrEmpty(ctx.String(flags.Policy.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for policy file: %w", err)
	}
	goMod, err := absOrEmpty(ctx.String(flags.GoMod.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for go.mod: %w", err)
	}

	metricsCfg := opmetrics.ReadCLIConfig(ctx)
	if err := metricsCfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}

	return &Config{
		VendorDirs:    vendorDirs,
		Input:         ctx.String(flags.Input.Name),
		Output:        ctx.String(flags.Output.Name),
		Format:        format,
		PolicyFile:    policyFile,
		GoMod:         goMod,
		Summary:       ctx.Bool(flags.Summary.Name),
		MetricsConfig: metricsCfg,
		Log:           log,
	}, nil
}

func absOrEmpty(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}
