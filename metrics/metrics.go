package metrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "op_licenses"
)

// Skip reasons used as label values.
const (
	SkipException = "exception"
	SkipModule    = "own_module"
	SkipSeeded    = "seeded"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

// Recorder is implemented by Metrics and NoopMetrics.
type Recorder interface {
	RecordResolved(depth int, inherited bool)
	RecordSkipped(reason string)
	RecordMissing()
	RecordError(label string, err error)
	RecordRun(status string, packages int)
}

// Metrics holds the collector metrics registered against a single registry.
type Metrics struct {
	Debug bool
	log   log.Logger

	errorsTotal      *prometheus.CounterVec
	resolvedTotal    *prometheus.CounterVec
	skippedTotal     *prometheus.CounterVec
	missingTotal     prometheus.Counter
	walkDepth        prometheus.Histogram
	runsTotal        *prometheus.CounterVec
	packagesReported prometheus.Gauge
}

var _ Recorder = (*Metrics)(nil)

// New creates the metrics and registers them with reg. A nil registerer
// creates unregistered metrics, which is convenient in tests.
func New(reg prometheus.Registerer, logger log.Logger) *Metrics {
	if logger == nil {
		logger = log.Root()
	}
	factory := promauto.With(reg)
	return &Metrics{
		log: logger,
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "errors_total",
			Help:      "Count of errors",
		}, []string{
			"error",
		}),
		resolvedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "packages_resolved_total",
			Help:      "Packages whose license was found in a vendor root",
		}, []string{
			"inherited",
		}),
		skippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "packages_skipped_total",
			Help:      "Packages that were not looked up in a vendor root",
		}, []string{
			"reason",
		}),
		missingTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "packages_missing_total",
			Help:      "Packages without a discoverable license",
		}),
		walkDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "walk_depth",
			Help:      "Number of path segments stripped before a license was found",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8},
		}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "runs_total",
			Help:      "Collection runs by outcome",
		}, []string{
			"status",
		}),
		packagesReported: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "packages_reported",
			Help:      "Number of packages in the last report",
		}),
	}
}

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func (m *Metrics) RecordResolved(depth int, inherited bool) {
	if m.Debug {
		m.log.Debug("metric inc", "m", "packages_resolved_total", "depth", depth, "inherited", inherited)
	}
	m.resolvedTotal.WithLabelValues(fmt.Sprintf("%t", inherited)).Inc()
	m.walkDepth.Observe(float64(depth))
}

func (m *Metrics) RecordSkipped(reason string) {
	if m.Debug {
		m.log.Debug("metric inc", "m", "packages_skipped_total", "reason", reason)
	}
	m.skippedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordMissing() {
	m.missingTotal.Inc()
}

// RecordError concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func (m *Metrics) RecordError(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	if m.Debug {
		m.log.Debug("metric inc", "m", "errors_total", "error", label)
	}
	m.errorsTotal.WithLabelValues(label).Inc()
}

func (m *Metrics) RecordRun(status string, packages int) {
	m.runsTotal.WithLabelValues(status).Inc()
	m.packagesReported.Set(float64(packages))
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

var _ Recorder = NoopMetrics{}

func (NoopMetrics) RecordResolved(int, bool)  {}
func (NoopMetrics) RecordSkipped(string)      {}
func (NoopMetrics) RecordMissing()            {}
func (NoopMetrics) RecordError(string, error) {}
func (NoopMetrics) RecordRun(string, int)     {}
