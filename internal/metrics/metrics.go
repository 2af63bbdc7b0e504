// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// リモートストア障害とローカルフォールバックのカウンタが
// 進行状況同期の診断の主目的となる。
type Collector struct {
	remoteFailure  *prometheus.CounterVec
	localFallback  *prometheus.CounterVec
	backupFailure  prometheus.Counter
	remoteLatency  prometheus.Histogram
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		remoteFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "puzzlequest_remote_store_fail_total",
			Help: "リモートストア呼び出し失敗の合計数（操作別）",
		}, []string{"op"}),
		localFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "puzzlequest_local_fallback_total",
			Help: "ローカルストアへのフォールバック成立の合計数（操作別）",
		}, []string{"op"}),
		backupFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "puzzlequest_progress_backup_fail_total",
			Help: "リモート保存成功後のローカルバックアップ書き込み失敗の合計数",
		}),
		remoteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "puzzlequest_remote_store_latency_seconds",
			Help:    "リモートストア呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "puzzlequest_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "puzzlequest_http_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.remoteFailure,
		c.localFallback,
		c.backupFailure,
		c.remoteLatency,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordRemoteFailure はリモートストア障害を操作名（load/save）付きで記録する。
func (c *Collector) RecordRemoteFailure(op string) {
	c.remoteFailure.WithLabelValues(op).Inc()
}

// RecordLocalFallback はローカルストアへのフォールバック成立を記録する。
func (c *Collector) RecordLocalFallback(op string) {
	c.localFallback.WithLabelValues(op).Inc()
}

// RecordBackupWriteFailure はリモート保存成功後のバックアップ書き込み失敗を記録する。
func (c *Collector) RecordBackupWriteFailure() {
	c.backupFailure.Inc()
}

// RecordRemoteLatency はリモートストア呼び出しのレイテンシを記録する。
func (c *Collector) RecordRemoteLatency(duration time.Duration) {
	c.remoteLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はHTTPリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
