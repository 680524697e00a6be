package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/ratelimit"
)

// SessionReader はセッションCookieからIdentityを解決するインターフェース。
// session.Storeの部分集合として定義する。
type SessionReader interface {
	CurrentIdentity(r *http.Request) *model.Identity
}

// GateMetrics はゲートが記録するメトリクスのインターフェース。
// metrics.Collectorの部分集合として定義する。
type GateMetrics interface {
	RecordRateLimitRejection(class string)
}

// GateConfig はRequest Gateの設定。
type GateConfig struct {
	// APIPrefix 配下のパスのみレート制限の対象になる。
	APIPrefix string
	// AuthPrefix 配下のパスは厳格なレート制限クラスが適用される。
	AuthPrefix string

	// GeneralLimit はAPI全般のウィンドウあたり許容リクエスト数。
	GeneralLimit int
	// AuthLimit は認証エンドポイントのウィンドウあたり許容リクエスト数。
	AuthLimit int
	// Window は固定ウィンドウの長さ。
	Window time.Duration

	// ProtectedPaths は有効なセッションを要求するページパスのプレフィックス集合。
	ProtectedPaths []string
	// LoginPath / RegisterPath は公開エントリパス。
	// セッション保持者のアクセスはDashboardPathへリダイレクトする
	// （ルートパスはこの逆方向リダイレクトの対象外）。
	LoginPath     string
	RegisterPath  string
	DashboardPath string
}

// RequestGate はルートロジックの前段で評価される単一のポリシーチェックポイント。
// 4つのチェックを厳密な順序（CSRF → レート制限 → セッション → 認可）で評価し、
// 最初に失敗したチェックで短絡する。
type RequestGate struct {
	config   GateConfig
	counters ratelimit.CounterStore
	sessions SessionReader
	metrics  GateMetrics
}

// NewRequestGate はRequestGateを生成する。
func NewRequestGate(config GateConfig, counters ratelimit.CounterStore, sessions SessionReader, metrics GateMetrics) *RequestGate {
	return &RequestGate{
		config:   config,
		counters: counters,
		sessions: sessions,
		metrics:  metrics,
	}
}

// Middleware はゲートのミドルウェアを返す。
func (g *RequestGate) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CSRFオリジンチェック（状態変更メソッドのみ）
			if !g.checkOrigin(w, r) {
				return
			}

			// 2. レート制限（APIプレフィックス配下のみ）
			if !g.checkRateLimit(w, r) {
				return
			}

			// 3. セッション解決
			identity := g.sessions.CurrentIdentity(r)
			if identity != nil {
				r = r.WithContext(ContextWithIdentity(r.Context(), identity))
			}

			// 4. 認可・リダイレクト判定
			if g.redirect(w, r, identity) {
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkOrigin は状態変更メソッドのOriginヘッダーを検証する。
// Originが存在しリクエストのHostを含まない場合は403で短絡しfalseを返す。
// Originヘッダーがないリクエストは通過させる（同一オリジンのブラウザ
// ナビゲーションはOriginを省略することが多い）。
func (g *RequestGate) checkOrigin(w http.ResponseWriter, r *http.Request) bool {
	if !isMutatingMethod(r.Method) {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" || strings.Contains(origin, r.Host) {
		return true
	}

	slog.Warn("CSRF origin check failed",
		slog.String("origin", origin),
		slog.String("host", r.Host),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	WriteErrorResponse(w, http.StatusForbidden, model.NewCSRFRejectedError())
	return false
}

// checkRateLimit はクライアントIPごとの固定ウィンドウレート制限を評価する。
// 上限超過時は429と残量ヘッダーで短絡しfalseを返す。
// カウンタストアのエラー時はフェイルオープン（許可してログのみ）する。
func (g *RequestGate) checkRateLimit(w http.ResponseWriter, r *http.Request) bool {
	path := r.URL.Path
	if g.config.APIPrefix == "" || !strings.HasPrefix(path, g.config.APIPrefix) {
		return true
	}

	class, limit := "general", g.config.GeneralLimit
	if g.config.AuthPrefix != "" && strings.HasPrefix(path, g.config.AuthPrefix) {
		class, limit = "auth", g.config.AuthLimit
	}

	ip := clientIP(r)
	key := "ratelimit:" + class + ":" + ip

	count, err := g.counters.Incr(r.Context(), key, g.config.Window)
	if err != nil {
		// 可用性優先: カウンタストア障害時はこのチェックに限りフェイルオープン
		slog.Error("rate limit counter store failed, allowing request",
			slog.String("error", err.Error()),
			slog.String("class", class),
			slog.String("ip", ip),
		)
		return true
	}

	if count > int64(limit) {
		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		slog.Warn("rate limit exceeded",
			slog.String("class", class),
			slog.String("ip", ip),
			slog.Int64("count", count),
		)
		g.metrics.RecordRateLimitRejection(class)
		WriteErrorResponse(w, http.StatusTooManyRequests, model.NewRateLimitExceededError())
		return false
	}

	return true
}

// redirect は認可・リダイレクト判定を行う。リダイレクトを書き込んだ場合はtrueを返す。
// リダイレクトはエラーではなくナビゲーションの結果であり、エラーペイロードは持たない。
func (g *RequestGate) redirect(w http.ResponseWriter, r *http.Request, identity *model.Identity) bool {
	path := r.URL.Path

	// 保護パスへの未認証アクセスはログインへ
	if identity == nil && g.isProtected(path) {
		http.Redirect(w, r, g.config.LoginPath, http.StatusSeeOther)
		return true
	}

	// 公開エントリパスへのセッション保持アクセスはダッシュボードへ。
	// ルートパスはこの逆方向リダイレクトの対象外。
	if identity != nil && (path == g.config.LoginPath || path == g.config.RegisterPath) {
		http.Redirect(w, r, g.config.DashboardPath, http.StatusSeeOther)
		return true
	}

	return false
}

// isProtected はパスが保護プレフィックス集合に含まれるかを判定する。
func (g *RequestGate) isProtected(path string) bool {
	for _, prefix := range g.config.ProtectedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isMutatingMethod はHTTPメソッドが状態変更系かどうかを判定する。
func isMutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// clientIP はリクエストからクライアントIPを解決する。
// CF-Connecting-IP、X-Forwarded-Forの先頭エントリ、RemoteAddrの順で参照し、
// いずれも得られない場合はループバックにフォールバックする。
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return "127.0.0.1"
}
