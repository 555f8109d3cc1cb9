package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/quic-go/qcc/internal/protocol"
)

// ccMetrics holds the Prometheus gauges exported by the simulation loop.
type ccMetrics struct {
	CongestionWindow prometheus.Gauge
	Ssthresh         prometheus.Gauge
	BytesInFlight    prometheus.Gauge
	AvailableWindow  prometheus.Gauge
	SlowStartActive  prometheus.Gauge

	SmoothedRTT prometheus.Gauge
	MinRTT      prometheus.Gauge
	RTTVariance prometheus.Gauge

	BandwidthEstimate prometheus.Gauge
	PacingRate        prometheus.Gauge

	PacketsSent prometheus.Counter
	PacketsLost prometheus.Counter
	LossRate    prometheus.Gauge

	Algorithm prometheus.Gauge
}

// newCCMetrics creates and registers every gauge/counter the demo exports.
func newCCMetrics() *ccMetrics {
	return &ccMetrics{
		CongestionWindow: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_congestion_window_bytes",
			Help: "Current congestion window in bytes",
		}),
		Ssthresh: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_slow_start_threshold_bytes",
			Help: "Current slow start threshold in bytes",
		}),
		BytesInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_bytes_in_flight",
			Help: "Bytes currently in flight",
		}),
		AvailableWindow: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_available_window_bytes",
			Help: "Congestion window minus bytes in flight",
		}),
		SlowStartActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_slow_start_active",
			Help: "Whether the active algorithm reports slow start (1) or not (0)",
		}),
		SmoothedRTT: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_smoothed_rtt_seconds",
			Help: "Smoothed RTT estimate in seconds",
		}),
		MinRTT: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_min_rtt_seconds",
			Help: "Minimum observed RTT in seconds",
		}),
		RTTVariance: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_rtt_variance_seconds",
			Help: "RTT variance estimate in seconds",
		}),
		BandwidthEstimate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_bandwidth_estimate_bytes_per_second",
			Help: "Algorithm-reported delivery rate estimate",
		}),
		PacingRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_pacing_rate_bytes_per_second",
			Help: "Algorithm-reported pacing rate, 0 if unavailable",
		}),
		PacketsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qcc_packets_sent_total",
			Help: "Total packets sent by the simulation",
		}),
		PacketsLost: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qcc_packets_lost_total",
			Help: "Total packets declared lost",
		}),
		LossRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_loss_rate",
			Help: "Current algorithm-reported loss rate",
		}),
		Algorithm: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "qcc_congestion_control_algorithm",
			Help: "Active algorithm (0 = NewReno, 1 = BBR)",
		}),
	}
}

// update refreshes every gauge from a controller stats snapshot.
func (m *ccMetrics) update(stats map[string]any, algorithmID float64) {
	setByteCount(m.CongestionWindow, stats["congestion_window"])
	setByteCount(m.Ssthresh, stats["slow_start_threshold"])
	setByteCount(m.BytesInFlight, stats["bytes_in_flight"])
	setByteCount(m.AvailableWindow, stats["available_window"])

	if inSlowStart, _ := stats["state"].(string); inSlowStart == "slow_start" || inSlowStart == "Startup" {
		m.SlowStartActive.Set(1)
	} else {
		m.SlowStartActive.Set(0)
	}

	setFloat(m.SmoothedRTT, stats["smoothed_rtt"])
	setFloat(m.MinRTT, stats["min_rtt"])
	setFloat(m.RTTVariance, stats["rtt_var"])
	setFloat(m.BandwidthEstimate, stats["bandwidth_estimate"])
	setFloat(m.PacingRate, stats["pacing_rate"])
	setFloat(m.LossRate, stats["loss_rate"])

	m.Algorithm.Set(algorithmID)
}

func setByteCount(g prometheus.Gauge, v any) {
	switch n := v.(type) {
	case protocol.ByteCount:
		g.Set(float64(n))
	case int:
		g.Set(float64(n))
	case int64:
		g.Set(float64(n))
	}
}

func setFloat(g prometheus.Gauge, v any) {
	if f, ok := v.(float64); ok {
		g.Set(f)
	}
}
