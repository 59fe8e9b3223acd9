package licenses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ethereum-optimism/infra/op-licenses/collector"
	"github.com/ethereum-optimism/infra/op-licenses/metrics"
	"github.com/ethereum-optimism/infra/op-licenses/pkglist"
	"github.com/ethereum-optimism/infra/op-licenses/registry"
	"github.com/ethereum-optimism/infra/op-licenses/reporting"
	"github.com/ethereum-optimism/infra/op-licenses/types"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/httputil"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const (
	runStatusSuccess = "success"
	runStatusMissing = "missing"
	runStatusError   = "error"
)

// app implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &app{}

// app collects the licenses of one package list and writes the report.
type app struct {
	config  *Config
	version string
	runID   string

	registry  *registry.Registry
	collector *collector.Collector
	formatter reporting.ReportFormatter
	writer    reporting.ReportWriter
	metrics   *metrics.Metrics

	promRegistry  *prometheus.Registry
	metricsServer *httputil.HTTPServer

	stdin   io.Reader
	summary io.Writer
	result  *types.LicenseSet

	running atomic.Bool

	shutdownCallback func(error) // Callback to signal application shutdown
}

// New wires the policy, the vendor roots, the collector and the report
// formatter from config.
func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*app, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if shutdownCallback == nil {
		shutdownCallback = func(error) {}
	}

	runID := uuid.New().String()
	logger := config.Log.New("run", runID)
	config.Log = logger

	reg, err := registry.NewRegistry(registry.Config{
		Log:        logger,
		PolicyFile: config.PolicyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	roots := resolveVendorRoots(config.VendorDirs, reg.VendorDirs())
	if len(roots) == 0 {
		logger.Warn("No vendor roots found, every package will be reported as missing")
	}

	var module collector.ModuleMatcher
	if config.GoMod != "" {
		filter, err := pkglist.NewModuleFilter(config.GoMod)
		if err != nil {
			return nil, fmt.Errorf("failed to create module filter: %w", err)
		}
		logger.Debug("Skipping packages of audited module", "module", filter.Path())
		module = filter
	}

	promRegistry := opmetrics.NewRegistry()
	m := metrics.New(promRegistry, logger)

	coll, err := collector.New(collector.Config{
		Log:     logger,
		Finder:  collector.NewFinder(roots),
		Policy:  reg,
		Module:  module,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collector: %w", err)
	}

	formatter, err := reporting.NewFormatter(config.Format)
	if err != nil {
		return nil, err
	}

	logger.Debug("Created license collector",
		"vendor", roots,
		"policy", config.PolicyFile,
		"seeded", reg.SeededPackages(),
		"format", config.Format,
		"output", config.Output)

	return &app{
		config:           config,
		version:          version,
		runID:            runID,
		registry:         reg,
		collector:        coll,
		formatter:        formatter,
		writer:           reporting.NewWriter(config.Output),
		metrics:          m,
		promRegistry:     promRegistry,
		stdin:            os.Stdin,
		summary:          os.Stderr,
		shutdownCallback: shutdownCallback,
	}, nil
}

// resolveVendorRoots returns the command line roots followed by the policy
// roots. Only when neither names a root is ./vendor discovered.
func resolveVendorRoots(flagRoots, policyRoots []string) []string {
	roots := make([]string, 0, len(flagRoots)+len(policyRoots))
	roots = append(roots, flagRoots...)
	roots = append(roots, policyRoots...)
	if len(roots) == 0 {
		return collector.DiscoverVendorRoots(".")
	}
	return roots
}

// Start runs one collection and then asks the application to shut down.
// Start implements the cliapp.Lifecycle interface.
func (a *app) Start(ctx context.Context) error {
	a.running.Store(true)
	a.config.Log.Info("Starting op-licenses", "version", a.version)

	if err := a.startMetricsServer(); err != nil {
		a.running.Store(false)
		return NewRuntimeError(err)
	}

	if err := a.Collect(ctx); err != nil {
		if stopErr := a.Stop(ctx); stopErr != nil {
			a.config.Log.Warn("Failed to stop after collection error", "err", stopErr)
		}
		return err
	}

	go func() {
		a.shutdownCallback(nil)
	}()
	return nil
}

func (a *app) startMetricsServer() error {
	if !a.config.MetricsConfig.Enabled {
		return nil
	}
	metricsCfg := a.config.MetricsConfig
	a.config.Log.Info("Starting metrics server", "addr", metricsCfg.ListenAddr, "port", metricsCfg.ListenPort)
	srv, err := opmetrics.StartServer(a.promRegistry, metricsCfg.ListenAddr, metricsCfg.ListenPort)
	if err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	a.config.Log.Info("Started metrics server", "endpoint", srv.Addr())
	a.metricsServer = srv
	return nil
}

// Collect reads the package list, resolves every license and writes the
// report. Nothing is written unless every package resolved.
func (a *app) Collect(ctx context.Context) error {
	pkgs, err := pkglist.ReadFile(a.config.Input, a.stdin)
	if err != nil {
		a.metrics.RecordRun(runStatusError, 0)
		return NewRuntimeError(err)
	}
	a.warnInvalid(pkgs)
	a.config.Log.Info("Collecting licenses", "packages", len(pkgs))

	set, err := a.collector.Collect(ctx, pkgs)
	if err != nil {
		if IsMissingLicenseError(err) {
			a.metrics.RecordRun(runStatusMissing, 0)
			a.config.Log.Error("Package has no license", "err", err)
			return err
		}
		a.metrics.RecordRun(runStatusError, 0)
		a.metrics.RecordError("collect", err)
		return NewRuntimeError(err)
	}

	report, err := a.formatter.Format(set)
	if err != nil {
		a.metrics.RecordRun(runStatusError, 0)
		return NewRuntimeError(fmt.Errorf("failed to format report: %w", err))
	}
	if err := a.writer.Write(report); err != nil {
		a.metrics.RecordRun(runStatusError, 0)
		return NewRuntimeError(fmt.Errorf("failed to write report: %w", err))
	}

	a.result = set
	a.metrics.RecordRun(runStatusSuccess, set.Len())
	if a.config.Summary {
		fmt.Fprintln(a.summary, reporting.SummaryTable(set, a.runID))
	}
	a.config.Log.Info("License collection completed",
		"packages", set.Len(),
		"distinct", set.DistinctLicenses(),
		"format", a.config.Format)
	return nil
}

func (a *app) warnInvalid(pkgs []string) {
	invalid := pkglist.Invalid(pkgs)
	names := make([]string, 0, len(invalid))
	for pkg := range invalid {
		names = append(names, pkg)
	}
	sort.Strings(names)
	for _, pkg := range names {
		a.config.Log.Warn("Invalid import path", "package", pkg, "err", invalid[pkg])
	}
}

// Result returns the licenses of the last successful collection.
func (a *app) Result() *types.LicenseSet {
	return a.result
}

// RunID returns the id attached to this run's log lines.
func (a *app) RunID() string {
	return a.runID
}

// Stop stops the metrics server.
// Stop implements the cliapp.Lifecycle interface.
func (a *app) Stop(ctx context.Context) error {
	a.running.Store(false)
	if a.metricsServer != nil {
		if err := a.metricsServer.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
		a.metricsServer = nil
	}
	return nil
}

// Stopped implements the cliapp.Lifecycle interface.
func (a *app) Stopped() bool {
	return !a.running.Load()
}
