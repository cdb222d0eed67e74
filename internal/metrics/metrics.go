// Package metrics exports tick outcomes of the exposure meter to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
)

const namespace = "exposure_meter"

// Collector records every tick it observes. It implements meter.Observer and
// is safe for concurrent use.
type Collector struct {
	ticks        *prometheus.CounterVec
	severity     *prometheus.CounterVec
	brightness   prometheus.Gauge
	effectiveEV  prometheus.Gauge
	smoothedEV   prometheus.Gauge
	evDifference prometheus.Histogram
	locked       prometheus.Gauge
}

// NewCollector registers the meter's metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		ticks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Ticks processed, by outcome status",
		}, []string{"status"}),
		severity: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Metered ticks, by exposure severity",
		}, []string{"severity"}),
		brightness: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "brightness",
			Help:      "Brightness of the configured metering region on the last tick (0-255)",
		}),
		effectiveEV: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "effective_ev",
			Help:      "Raw effective EV of the last metered tick",
		}),
		smoothedEV: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "smoothed_ev",
			Help:      "Displayed EV of the last metered tick",
		}),
		evDifference: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ev_difference",
			Help:      "Resolved candidate EV minus metered EV",
			Buckets:   []float64{-1, -0.6, -0.3, 0, 0.3, 0.6, 1},
		}),
		locked: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ae_locked",
			Help:      "1 while AE-lock is engaged",
		}),
	}
}

// ObserveTick records one tick result.
func (c *Collector) ObserveTick(r *meter.TickResult) {
	if r == nil {
		return
	}
	c.ticks.WithLabelValues(string(r.Status)).Inc()
	c.brightness.Set(r.Brightness)
	if r.Locked {
		c.locked.Set(1)
	} else {
		c.locked.Set(0)
	}
	if r.Reading == nil {
		return
	}
	c.effectiveEV.Set(r.Reading.EffectiveEV)
	c.smoothedEV.Set(r.Reading.SmoothedEV)
	c.evDifference.Observe(r.Reading.EVDifference)
	if r.Classification != nil {
		c.severity.WithLabelValues(r.Classification.Severity.String()).Inc()
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
