package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/fitlog/internal/metrics"
	"github.com/hitoshi/fitlog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	Gate              *middleware.RequestGate
	CORSAllowedOrigin string

	// メトリクス
	Metrics  metrics.MetricsCollector
	Registry *prometheus.Registry

	// サービス
	AuthService      AuthServiceInterface
	Sessions         SessionWriter
	WorkoutService   WorkoutServiceInterface
	NutritionService NutritionServiceInterface
	ProgressService  ProgressServiceInterface
	PlanService      PlanServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → RequestGate
//
// RequestGateがCSRF・レート制限・セッション解決・認可リダイレクトを
// ルートロジックの前段で一括評価する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(deps.Gate.Middleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.Sessions, deps.Metrics)
	workoutHandler := NewWorkoutHandler(deps.WorkoutService)
	mealHandler := NewMealHandler(deps.NutritionService)
	progressHandler := NewProgressHandler(deps.ProgressService)
	planHandler := NewPlanHandler(deps.PlanService, deps.Metrics)

	// 公開エンドポイント
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler(deps.Registry))

	// 認証エンドポイント（セッション不要、ただしゲートの厳格レート制限対象）
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
		r.With(middleware.RequireIdentity()).Post("/password", authHandler.ChangePassword)
		r.With(middleware.RequireIdentity()).Delete("/me", authHandler.DeleteAccount)
	})

	// 認証が必要なエンドポイント
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity())

		// トレーニング記録
		r.Route("/api/workouts", func(r chi.Router) {
			r.Post("/", workoutHandler.Create)
			r.Get("/", workoutHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", workoutHandler.Get)
				r.Put("/", workoutHandler.Update)
				r.Delete("/", workoutHandler.Delete)
			})
		})

		// 食事記録・食品検索
		r.Route("/api/meals", func(r chi.Router) {
			r.Get("/search", mealHandler.SearchFood)
			r.Post("/", mealHandler.Create)
			r.Get("/", mealHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", mealHandler.Get)
				r.Put("/", mealHandler.Update)
				r.Delete("/", mealHandler.Delete)
			})
		})

		// 体重・進捗
		r.Route("/api/progress", func(r chi.Router) {
			r.Post("/weights", progressHandler.RecordWeight)
			r.Get("/weights", progressHandler.ListWeights)
			r.Get("/summary", progressHandler.Summary)
		})

		// プラン
		r.Route("/api/plans", func(r chi.Router) {
			r.Post("/", planHandler.Generate)
			r.Get("/", planHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", planHandler.Get)
				r.Delete("/", planHandler.Delete)
			})
		})
	})

	return r
}
