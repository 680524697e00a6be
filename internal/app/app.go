// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/fitlog/internal/aiplan"
	"github.com/hitoshi/fitlog/internal/auth"
	"github.com/hitoshi/fitlog/internal/config"
	"github.com/hitoshi/fitlog/internal/database"
	"github.com/hitoshi/fitlog/internal/handler"
	"github.com/hitoshi/fitlog/internal/logger"
	"github.com/hitoshi/fitlog/internal/metrics"
	"github.com/hitoshi/fitlog/internal/middleware"
	"github.com/hitoshi/fitlog/internal/nutrition"
	"github.com/hitoshi/fitlog/internal/nutritiondb"
	"github.com/hitoshi/fitlog/internal/plan"
	"github.com/hitoshi/fitlog/internal/progress"
	"github.com/hitoshi/fitlog/internal/ratelimit"
	"github.com/hitoshi/fitlog/internal/repository"
	"github.com/hitoshi/fitlog/internal/security"
	"github.com/hitoshi/fitlog/internal/session"
	"github.com/hitoshi/fitlog/internal/workout"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	if cfg.DefaultSecretInUse {
		slog.Warn("APP_SECRET is not set, using built-in default secret; sessions are NOT secure in this mode")
	}

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	workoutRepo := repository.NewPostgresWorkoutRepo(db)
	mealRepo := repository.NewPostgresMealRepo(db)
	weightRepo := repository.NewPostgresWeightRepo(db)
	planRepo := repository.NewPostgresPlanRepo(db)

	// 3. レート制限カウンタストアの選択
	// REDIS_URLが設定されていればRedis、なければインメモリを使用する。
	var counters ratelimit.CounterStore
	if cfg.RedisURL != "" {
		redisStore, err := ratelimit.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisStore.Close()
		counters = redisStore
		slog.Info("rate limit counters backed by redis")
	} else {
		memStore := ratelimit.NewMemoryStore()
		defer memStore.Stop()
		counters = memStore
		slog.Info("rate limit counters backed by in-process memory")
	}

	// 4. 認証・セッション基盤の初期化
	hasher := auth.NewHasher(cfg.AppSecret)
	codec := auth.NewTokenCodec(cfg.AppSecret)
	sessions := session.NewStore(codec, session.Config{
		CookieSecure: cfg.CookieSecure,
		CookieDomain: cfg.CookieDomain,
	})
	authService := auth.NewService(userRepo, hasher)

	// 5. ドメインサービスの初期化
	sanitizer := security.NewNotesSanitizer()
	workoutService := workout.NewService(workoutRepo, sanitizer)

	foodClient := nutritiondb.NewClient(
		&http.Client{Timeout: cfg.NutritionTimeout},
		slog.Default(),
		cfg.NutritionAPIURL, cfg.NutritionAPIKey, cfg.NutritionAPIMaxRPS,
	)
	nutritionService := nutrition.NewService(mealRepo, foodClient, sanitizer)

	progressService := progress.NewService(weightRepo, workoutRepo, mealRepo)

	llmClient := aiplan.NewClient(
		&http.Client{Timeout: cfg.LLMTimeout},
		slog.Default(),
		cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel,
	)
	planGenerator := aiplan.NewGenerator(llmClient, slog.Default())
	planService := plan.NewService(planRepo, weightRepo, planGenerator)

	// 6. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 7. Request Gateの構築
	gate := middleware.NewRequestGate(middleware.GateConfig{
		APIPrefix:      "/api",
		AuthPrefix:     "/api/auth",
		GeneralLimit:   cfg.RateLimitGeneral,
		AuthLimit:      cfg.RateLimitAuth,
		Window:         cfg.RateLimitWindow,
		ProtectedPaths: cfg.ProtectedPaths,
		LoginPath:      cfg.LoginPath,
		RegisterPath:   "/register",
		DashboardPath:  cfg.DashboardPath,
	}, counters, sessions, collector)

	// 8. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Gate:              gate,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Metrics:           collector,
		Registry:          registry,
		AuthService:       authService,
		Sessions:          sessions,
		WorkoutService:    workoutService,
		NutritionService:  nutritionService,
		ProgressService:   progressService,
		PlanService:       planService,
	})

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
