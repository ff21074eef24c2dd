// Package metrics exposes step-sensor counters and gauges in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/step-sensor/internal/logic"
	"github.com/sweeney/step-sensor/internal/status"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	samples *prometheus.CounterVec
	steps   prometheus.Counter
	resets  *prometheus.CounterVec

	stepCount       prometheus.Gauge
	calories        prometheus.Gauge
	cooldownActive  prometheus.Gauge
	sensorAvailable prometheus.Gauge
	mqttConnected   prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "step_sensor_samples_total",
			Help: "Total accelerometer samples processed, by verdict.",
		}, []string{"verdict"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "step_sensor_steps_total",
			Help: "Total steps counted since start, unaffected by resets.",
		}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "step_sensor_resets_total",
			Help: "Total count resets, by source.",
		}, []string{"source"}),
		stepCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "step_sensor_step_count",
			Help: "Current step count since the last reset.",
		}),
		calories: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "step_sensor_estimated_calories",
			Help: "Estimated calories burnt for the current step count.",
		}),
		cooldownActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "step_sensor_cooldown_active",
			Help: "1 while the post-step cooldown window is open.",
		}),
		sensorAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "step_sensor_sensor_available",
			Help: "1 if the accelerometer source was available at startup.",
		}),
		mqttConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "step_sensor_mqtt_connected",
			Help: "1 while the MQTT client has an open connection.",
		}),
	}

	m.registry.MustRegister(
		m.samples,
		m.steps,
		m.resets,
		m.stepCount,
		m.calories,
		m.cooldownActive,
		m.sensorAvailable,
		m.mqttConnected,
	)

	// Zero every verdict so absent series don't hide a quiet sensor.
	for _, v := range logic.Verdicts {
		m.samples.WithLabelValues(string(v))
	}

	return m
}

// ObserveSample counts one processed sample.
func (m *Metrics) ObserveSample(v logic.Verdict) {
	m.samples.WithLabelValues(string(v)).Inc()
	if v == logic.VerdictAccepted {
		m.steps.Inc()
	}
}

// ObserveReset counts one reset from the given surface.
func (m *Metrics) ObserveReset(source string) {
	if source == "" {
		source = "unknown"
	}
	m.resets.WithLabelValues(source).Inc()
}

// Update sets the gauges from a status snapshot.
func (m *Metrics) Update(snap status.Snapshot) {
	m.stepCount.Set(float64(snap.Steps))
	m.calories.Set(snap.Calories())
	m.cooldownActive.Set(boolToFloat(snap.CooldownActive))
	m.sensorAvailable.Set(boolToFloat(snap.SensorAvailable))
	m.mqttConnected.Set(boolToFloat(snap.MQTTConnected))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
