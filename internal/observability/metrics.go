package observability

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type moduleMetrics struct {
	tokensSent      *prometheus.CounterVec
	bytesSent       prometheus.Counter
	connectAttempts *prometheus.CounterVec
	writeErrors     prometheus.Counter
	activeSessions  prometheus.Gauge

	framesCaptured prometheus.Counter
	linesCaptured  prometheus.Counter

	figureRenders        *prometheus.CounterVec
	figureRenderDuration prometheus.Histogram
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			tokensSent: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "plyght_tokens_sent_total",
					Help: "Total protocol tokens written by keyword.",
				},
				[]string{"keyword"},
			),
			bytesSent: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "plyght_bytes_sent_total",
					Help: "Total bytes written to plotting servers.",
				},
			),
			connectAttempts: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "plyght_connect_attempts_total",
					Help: "Connection attempts by result (ok, transport, connect).",
				},
				[]string{"result"},
			),
			writeErrors: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "plyght_write_errors_total",
					Help: "Total write failures that moved a session into the failed state.",
				},
			),
			activeSessions: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "plyght_active_sessions",
					Help: "Sessions currently holding an open transport.",
				},
			),
			framesCaptured: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "plyght_capture_frames_total",
					Help: "Complete frames assembled by the capture sink.",
				},
			),
			linesCaptured: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "plyght_capture_lines_total",
					Help: "Token lines received by the capture sink.",
				},
			),
			figureRenders: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "plyght_figure_renders_total",
					Help: "Figure renders by status.",
				},
				[]string{"status"},
			),
			figureRenderDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "plyght_figure_render_duration_seconds",
					Help:    "Figure render duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
		}

		prometheus.MustRegister(
			m.tokensSent,
			m.bytesSent,
			m.connectAttempts,
			m.writeErrors,
			m.activeSessions,
			m.framesCaptured,
			m.linesCaptured,
			m.figureRenders,
			m.figureRenderDuration,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

// ServeMetrics exposes /metrics on addr until ctx is cancelled.
func ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func RecordTokenSent(keyword string, bytes int) {
	m := getMetrics()
	m.tokensSent.WithLabelValues(keyword).Inc()
	m.bytesSent.Add(float64(bytes))
}

func RecordConnectAttempt(result string) {
	m := getMetrics()
	m.connectAttempts.WithLabelValues(result).Inc()
	if result == "ok" {
		m.activeSessions.Inc()
	}
}

func RecordTransportReleased() {
	m := getMetrics()
	m.activeSessions.Dec()
}

func RecordWriteError() {
	m := getMetrics()
	m.writeErrors.Inc()
}

func RecordCapturedLine() {
	m := getMetrics()
	m.linesCaptured.Inc()
}

func RecordCapturedFrame() {
	m := getMetrics()
	m.framesCaptured.Inc()
}

func RecordFigureRender(duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.figureRenders.WithLabelValues(status).Inc()
	m.figureRenderDuration.Observe(duration.Seconds())
}
