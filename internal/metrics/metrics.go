// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordAuthAttempt(success bool)
	RecordRateLimitRejection(class string)
	RecordSessionIssued()
	RecordPlanGenerated(source string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	authAttempts   *prometheus.CounterVec
	rateLimitHits  *prometheus.CounterVec
	sessionsIssued prometheus.Counter
	plansGenerated *prometheus.CounterVec
}

// コンパイル時のインターフェース実装チェック
var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitlog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fitlog_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitlog_auth_attempts_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"result"}),
		rateLimitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitlog_rate_limit_rejections_total",
			Help: "レート制限による拒否のクラス別合計数",
		}, []string{"class"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitlog_sessions_issued_total",
			Help: "発行されたセッショントークンの合計数",
		}),
		plansGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitlog_plans_generated_total",
			Help: "生成されたプランの生成元別合計数",
		}, []string{"source"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.authAttempts,
		c.rateLimitHits,
		c.sessionsIssued,
		c.plansGenerated,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordAuthAttempt はログイン試行の結果を記録する。
func (c *Collector) RecordAuthAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttempts.WithLabelValues(result).Inc()
}

// RecordRateLimitRejection はレート制限による拒否を記録する。
// classは"auth"または"general"。
func (c *Collector) RecordRateLimitRejection(class string) {
	c.rateLimitHits.WithLabelValues(class).Inc()
}

// RecordSessionIssued はセッショントークンの発行を記録する。
func (c *Collector) RecordSessionIssued() {
	c.sessionsIssued.Inc()
}

// RecordPlanGenerated はプラン生成を記録する。sourceは"llm"または"template"。
func (c *Collector) RecordPlanGenerated(source string) {
	c.plansGenerated.WithLabelValues(source).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
