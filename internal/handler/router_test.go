package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/fitlog/internal/auth"
	"github.com/hitoshi/fitlog/internal/metrics"
	"github.com/hitoshi/fitlog/internal/middleware"
	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/ratelimit"
	"github.com/hitoshi/fitlog/internal/session"
)

// memoryUserRepo は統合テスト用のインメモリUserRepository。
type memoryUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.byID[id], nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.byEmail[email], nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *memoryUserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if u, ok := r.byID[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *memoryUserRepo) DeleteByID(ctx context.Context, id string) error {
	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	codec := auth.NewTokenCodec("integration-test-secret")
	sessions := session.NewStore(codec, session.Config{CookieSecure: false})

	counters := ratelimit.NewMemoryStore()
	t.Cleanup(counters.Stop)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	gate := middleware.NewRequestGate(middleware.GateConfig{
		APIPrefix:      "/api",
		AuthPrefix:     "/api/auth",
		GeneralLimit:   100,
		AuthLimit:      5,
		Window:         time.Minute,
		ProtectedPaths: []string{"/dashboard"},
		LoginPath:      "/login",
		RegisterPath:   "/register",
		DashboardPath:  "/dashboard",
	}, counters, sessions, collector)

	userRepo := newMemoryUserRepo()
	authService := auth.NewService(userRepo, auth.NewHasher("test-pepper"))

	return NewRouter(&RouterDeps{
		Logger:            logger,
		Gate:              gate,
		CORSAllowedOrigin: "http://localhost:3000",
		Metrics:           collector,
		Registry:          registry,
		AuthService:       authService,
		Sessions:          sessions,
	})
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

// TestRouter_AuthLifecycle は登録→認証済みアクセス→ログアウト→拒否の
// 一連のライフサイクルを検証する。
func TestRouter_AuthLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// 1. 登録でセッションCookieが発行される
	body := `{"email":"taro@example.com","name":"Taro","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", w.Code, w.Body.String())
	}
	cookie := sessionCookie(t, w.Result())
	if cookie == nil || cookie.Value == "" {
		t.Fatal("登録成功でセッションCookieが発行されるべき")
	}
	if !cookie.HttpOnly {
		t.Error("セッションCookieはHttpOnlyであるべき")
	}

	// 2. Cookie付きで /api/auth/me が通る
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var me identityResponse
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("レスポンスのデコードに失敗した: %v", err)
	}
	if me.User.Email != "taro@example.com" {
		t.Errorf("email = %s, want taro@example.com", me.User.Email)
	}

	// 3. ログアウトでCookieが破棄される
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", w.Code)
	}
	cleared := sessionCookie(t, w.Result())
	if cleared == nil || cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Error("ログアウトでCookieが空値・負のMaxAgeで上書きされるべき")
	}

	// 4. Cookieなしでは /api/auth/me は401
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("me without cookie status = %d, want 401", w.Code)
	}
}

// TestRouter_LoginAfterRegister は登録済みユーザーのログインを検証する。
func TestRouter_LoginAfterRegister(t *testing.T) {
	router := newTestRouter(t)

	body := `{"email":"taro@example.com","name":"Taro","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", w.Code)
	}

	// 正しいパスワード
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"taro@example.com","password":"password123"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// 間違ったパスワードは401で、未登録メールと同じエラーコード
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"taro@example.com","password":"wrongpass"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", w.Code)
	}

	var wrongPass middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&wrongPass); err != nil {
		t.Fatalf("レスポンスのデコードに失敗した: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"unknown@example.com","password":"password123"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var unknownEmail middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&unknownEmail); err != nil {
		t.Fatalf("レスポンスのデコードに失敗した: %v", err)
	}
	if wrongPass.Code != unknownEmail.Code || wrongPass.Message != unknownEmail.Message {
		t.Error("パスワード不一致と未登録メールは同一レスポンスであるべき")
	}
}

// TestRouter_CrossOriginMutationRejected は異なるオリジンからの
// 状態変更リクエストがルートロジック到達前に403で拒否されることを検証する。
func TestRouter_CrossOriginMutationRejected(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@example.com","password":"x"}`))
	req.Header.Set("Origin", "https://evil.example.net")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	var got middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("レスポンスのデコードに失敗した: %v", err)
	}
	if got.Code != model.ErrCodeCSRFRejected {
		t.Errorf("code = %s, want CSRF_REJECTED", got.Code)
	}
}

// TestRouter_AuthRateLimitOnLogin は認証エンドポイントの厳格レート制限を検証する。
func TestRouter_AuthRateLimitOnLogin(t *testing.T) {
	router := newTestRouter(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"a@example.com","password":"wrong"}`))
		req.RemoteAddr = "203.0.113.7:12345"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Errorf("6th attempt status = %d, want 429", last.Code)
	}
	if last.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("429レスポンスはX-RateLimit-Limitヘッダーを含むべき")
	}

	// 拒否がメトリクスに反映されていること
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !bytes.Contains(w.Body.Bytes(), []byte(`fitlog_rate_limit_rejections_total{class="auth"} 1`)) {
		t.Error("レート制限拒否カウンタが記録されるべき")
	}
}

// TestRouter_HealthAndMetrics は公開エンドポイントがセッションなしで到達できることを検証する。
func TestRouter_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"ok"`)) {
		t.Errorf("health body = %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", w.Code)
	}
}

// TestRouter_ProtectedAPIWithoutSession は保護APIがセッションなしで401を返すことを検証する。
func TestRouter_ProtectedAPIWithoutSession(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/workouts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
