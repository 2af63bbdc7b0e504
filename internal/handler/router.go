package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ZennXzy/Puzzle-Quest/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           middleware.MetricsRecorder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 各サービス
	AuthService     AuthService
	ProgressService ProgressService
	TriviaService   TriviaService

	// ヘルスチェック用DB接続
	DB *sql.DB

	// Prometheusスクレイプ用ハンドラー。nilの場合/metricsは公開しない。
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → RecoveryMiddleware
//	→ LoggingMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// CORSは最上位に置き、レート制限で拒否されたプリフライトにもヘッダーが付くようにする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService)
	progressHandler := NewProgressHandler(deps.ProgressService)
	triviaHandler := NewTriviaHandler(deps.TriviaService)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/auth", func(r chi.Router) {
			// 登録のみ厳しいレート制限を追加で適用する
			r.With(deps.RateLimiter.RegisterMiddleware()).Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/", progressHandler.Load)
			r.Post("/", progressHandler.Save)
		})

		r.Get("/trivia", triviaHandler.Random)
	})

	// ヘルスチェックはレート制限の対象外
	r.Get("/health", newHealthHandler(deps.DB))

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"success": false,
					"error":   "Database unavailable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"status":  "ok",
		})
	}
}
