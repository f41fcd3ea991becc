package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics use only bounded-cardinality labels (no per-player or per-team
// IDs) so a malicious client can't grow the metric set by hammering the
// API with distinct identities.
var (
	battleSimDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "battle_simulation_duration_seconds",
		Help:    "Time spent running sim.Simulate for a single battle",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})

	battleRoundsTotal = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "battle_rounds_total",
		Help:    "Number of rounds a battle ran before ending",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	matchmakingQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchmaking_queue_depth",
		Help: "Teams currently waiting in the matchmaking pool",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: rate_limit, origin, ws_total_limit, ws_ip_limit

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	replayConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "replay_websocket_connections_active",
		Help: "Currently active replay-stream WebSocket connections",
	})

	replayMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replay_websocket_messages_total",
		Help: "Total replay events sent over WebSocket",
	})
)

// ObservabilityConfig configures the internal debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be "127.0.0.1:6060" in production
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe, localhost-only defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{Enabled: true, ListenAddr: "127.0.0.1:6060"}
}

// StartDebugServer starts the pprof + Prometheus debug server. It must
// bind to localhost only; profiling and metrics are never meant to be
// reachable from outside the host.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("FIGHTCLUB_ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("debug server starting on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()
	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordBattleSimulation records a single battle's timing and round count.
func RecordBattleSimulation(duration time.Duration, rounds int) {
	battleSimDuration.Observe(duration.Seconds())
	battleRoundsTotal.Observe(float64(rounds))
}

// UpdateMatchmakingQueueDepth sets the matchmaking queue gauge.
func UpdateMatchmakingQueueDepth(n int) {
	matchmakingQueueDepth.Set(float64(n))
}

// RecordConnectionRejected increments the rejection counter for reason.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request latency and status metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateReplayConnections sets the active replay-connection gauge.
func UpdateReplayConnections(count int) {
	replayConnectionsActive.Set(float64(count))
}

// IncrementReplayMessages increments the replay message counter.
func IncrementReplayMessages() {
	replayMessagesTotal.Inc()
}
