// Package metrics Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "serious_game"

// Metrics 服务指标集合
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	gamesCreated prometheus.Counter
	gamesDeleted prometheus.Counter
	scores       *prometheus.CounterVec
	footprints   prometheus.Counter
	uploadBytes  *prometheus.CounterVec
	wsClients    prometheus.Gauge
	rateLimited  prometheus.Counter
}

// New 在指定注册表上注册指标，registry 为空时新建
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Games registered.",
		}),
		gamesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_deleted_total",
			Help:      "Games deleted by an admin.",
		}),
		scores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_submitted_total",
			Help:      "Score submissions by outcome.",
		}, []string{"outcome"}),
		footprints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "footprints_computed_total",
			Help:      "Carbon footprint computations stored.",
		}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Uploaded bytes by category.",
		}, []string{"category"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected leaderboard feed clients.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.gamesCreated,
		m.gamesDeleted,
		m.scores,
		m.footprints,
		m.uploadBytes,
		m.wsClients,
		m.rateLimited,
	)
	return m
}

// Registry 注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest 记录一次HTTP请求
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// GameCreated 游戏创建
func (m *Metrics) GameCreated() {
	if m != nil {
		m.gamesCreated.Inc()
	}
}

// GameDeleted 游戏删除
func (m *Metrics) GameDeleted() {
	if m != nil {
		m.gamesDeleted.Inc()
	}
}

// ScoreSubmitted 评分提交结果：accepted / rejected
func (m *Metrics) ScoreSubmitted(outcome string) {
	if m != nil {
		m.scores.WithLabelValues(outcome).Inc()
	}
}

// FootprintComputed 碳足迹已保存
func (m *Metrics) FootprintComputed() {
	if m != nil {
		m.footprints.Inc()
	}
}

// Uploaded 上传字节数
func (m *Metrics) Uploaded(category string, n int64) {
	if m != nil {
		m.uploadBytes.WithLabelValues(category).Add(float64(n))
	}
}

// ClientConnected websocket 客户端数量变化
func (m *Metrics) ClientConnected(delta int) {
	if m != nil {
		m.wsClients.Add(float64(delta))
	}
}

// RateLimited 被限流的请求
func (m *Metrics) RateLimited() {
	if m != nil {
		m.rateLimited.Inc()
	}
}
