// Package metrics exposes installation progress as Prometheus metrics, so a
// fleet of unattended installs can be watched remotely.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blunux/installer/internal/install"
)

// Observer decorates another install.Observer with Prometheus
// instrumentation. Step durations are measured between consecutive Step
// calls.
type Observer struct {
	next install.Observer

	stepCurrent  prometheus.Gauge
	stepTotal    prometheus.Gauge
	warnings     prometheus.Counter
	stepDuration *prometheus.HistogramVec

	lastStep      int
	lastStepStart time.Time
}

// NewObserver registers the installer metrics on reg and returns an observer
// forwarding to next.
func NewObserver(next install.Observer, reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		next: next,
		stepCurrent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "installer_step_current",
			Help: "Index of the pipeline step currently running.",
		}),
		stepTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "installer_step_total",
			Help: "Total number of pipeline steps.",
		}),
		warnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "installer_warnings_total",
			Help: "Non-fatal problems reported during the run.",
		}),
		stepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "installer_step_duration_seconds",
			Help:    "Wall-clock duration of completed pipeline steps.",
			Buckets: prometheus.ExponentialBuckets(1, 3, 10),
		}, []string{"step"}),
	}
}

func (o *Observer) Step(current, total int, message string) {
	if o.lastStep > 0 {
		o.stepDuration.WithLabelValues(strconv.Itoa(o.lastStep)).
			Observe(time.Since(o.lastStepStart).Seconds())
	}
	o.lastStep = current
	o.lastStepStart = time.Now()

	o.stepCurrent.Set(float64(current))
	o.stepTotal.Set(float64(total))
	o.next.Step(current, total, message)
}

func (o *Observer) Printf(format string, v ...interface{}) {
	o.next.Printf(format, v...)
}

func (o *Observer) Warn(message string) {
	o.warnings.Inc()
	o.next.Warn(message)
}

// Finish records the duration of the last step after the run completes.
func (o *Observer) Finish() {
	if o.lastStep > 0 {
		o.stepDuration.WithLabelValues(strconv.Itoa(o.lastStep)).
			Observe(time.Since(o.lastStepStart).Seconds())
		o.lastStep = 0
	}
}

// Serve exposes /metrics for reg on addr in the background. Serving is an
// observability aid; listen failures are logged, never fatal.
func Serve(addr string, reg *prometheus.Registry, log logr.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, fmt.Sprintf("metrics listener on %s stopped", addr))
		}
	}()
}
