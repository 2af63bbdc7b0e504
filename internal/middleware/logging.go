package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// StatusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type StatusRecorder struct {
	http.ResponseWriter
	StatusCode int
	written    bool
}

// NewStatusRecorder はStatusRecorderを生成する。
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *StatusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.StatusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *StatusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.StatusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// MetricsRecorder はリクエストメトリクスを記録するインターフェース。
type MetricsRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// NewLoggingMiddleware はリクエストのJSON構造化ログとメトリクスを記録するミドルウェアを返す。
// ログにはmethod、path、status、duration_msを含む。
// metricsがnilの場合はログのみを出力する。
func NewLoggingMiddleware(logger *slog.Logger, metrics MetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := NewStatusRecorder(w)

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			durationMs := float64(duration.Nanoseconds()) / float64(time.Millisecond)

			if metrics != nil {
				metrics.RecordHTTPStatus(rec.StatusCode)
				metrics.RecordRequestLatency(duration)
			}

			// slogのログレベルをステータスコードに応じて変更
			level := slog.LevelInfo
			if rec.StatusCode >= 500 {
				level = slog.LevelError
			} else if rec.StatusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http_request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.StatusCode),
				slog.Float64("duration_ms", durationMs),
			)
		})
	}
}
