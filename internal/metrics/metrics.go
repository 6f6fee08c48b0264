// Package metrics exposes engine activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stigoleg/ghost-operator/internal/engine"
)

// Emission kinds used as label values.
const (
	KindKey    = "key"
	KindMove   = "move"
	KindScroll = "scroll"
)

// Collector bundles the Prometheus metrics of one engine.
type Collector struct {
	gatherer prometheus.Gatherer

	Emissions  *prometheus.CounterVec
	SinkErrors *prometheus.CounterVec
	Suppressed prometheus.Counter
	Jiggles    prometheus.Counter

	MouseState      prometheus.Gauge
	LightSleep      prometheus.Gauge
	KeyboardEnabled prometheus.Gauge
	MouseEnabled    prometheus.Gauge
	Profile         prometheus.Gauge

	mu             sync.Mutex
	lastSuppressed uint64
	lastJiggles    uint32
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Emissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ghostop_emissions_total",
			Help: "HID emissions delivered to the sink, labeled by kind.",
		}, []string{"kind"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ghostop_sink_errors_total",
			Help: "Failed HID emissions, labeled by kind.",
		}, []string{"kind"}),
		Suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ghostop_suppressed_emissions_total",
			Help: "Emissions held back by the output gate.",
		}),
		Jiggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ghostop_jiggles_total",
			Help: "Completed mouse jiggle cycles.",
		}),
		MouseState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ghostop_mouse_state",
			Help: "Mouse state: 0 idle, 1 jiggling, 2 returning.",
		}),
		LightSleep: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ghostop_light_sleep",
			Help: "1 while the schedule holds the engine in light sleep.",
		}),
		KeyboardEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ghostop_keyboard_enabled",
			Help: "1 while keystroke output is enabled.",
		}),
		MouseEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ghostop_mouse_enabled",
			Help: "1 while mouse output is enabled.",
		}),
		Profile: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ghostop_profile",
			Help: "Active timing profile: 0 lazy, 1 normal, 2 busy.",
		}),
	}

	collectors := []prometheus.Collector{
		c.Emissions, c.SinkErrors, c.Suppressed, c.Jiggles,
		c.MouseState, c.LightSleep, c.KeyboardEnabled, c.MouseEnabled, c.Profile,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return c, nil
}

// RecordEmission counts one delivered emission.
func (c *Collector) RecordEmission(kind string) {
	if c == nil {
		return
	}
	c.Emissions.WithLabelValues(kind).Inc()
}

// RecordSinkError counts one failed emission.
func (c *Collector) RecordSinkError(kind string) {
	if c == nil {
		return
	}
	c.SinkErrors.WithLabelValues(kind).Inc()
}

// Observe updates the gauges from an engine snapshot and advances the
// counters by what changed since the previous snapshot.
func (c *Collector) Observe(st engine.Status) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if st.Stats.Suppressed > c.lastSuppressed {
		c.Suppressed.Add(float64(st.Stats.Suppressed - c.lastSuppressed))
	}
	c.lastSuppressed = st.Stats.Suppressed
	if st.Jiggles > c.lastJiggles {
		c.Jiggles.Add(float64(st.Jiggles - c.lastJiggles))
	}
	c.lastJiggles = st.Jiggles

	c.MouseState.Set(float64(st.MouseState))
	c.LightSleep.Set(boolValue(st.LightSleep))
	c.KeyboardEnabled.Set(boolValue(st.KeyEnabled))
	c.MouseEnabled.Set(boolValue(st.MouseEnabled))
	c.Profile.Set(float64(st.Profile))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve runs an HTTP server for handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		return nil
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
