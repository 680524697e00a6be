package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/fitlog/internal/middleware"
	"github.com/hitoshi/fitlog/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, email, name, password string) (*model.User, error)
	// Login はメールアドレスとパスワードで認証する。
	Login(ctx context.Context, email, password string) (*model.User, error)
	// ChangePassword は現在のパスワードを検証して新しいパスワードに変更する。
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// DeleteAccount は現在のパスワードを検証してアカウントを削除する。
	DeleteAccount(ctx context.Context, userID, currentPassword string) error
	// GetUser はユーザー情報を取得する。
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// SessionWriter はセッションCookieの発行・破棄のインターフェース。
// session.Storeの部分集合として定義する。
type SessionWriter interface {
	CreateSession(w http.ResponseWriter, identity model.Identity) error
	DestroySession(w http.ResponseWriter)
}

// AuthMetrics は認証ハンドラーが記録するメトリクスのインターフェース。
type AuthMetrics interface {
	RecordAuthAttempt(success bool)
	RecordSessionIssued()
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionWriter
	metrics  AuthMetrics
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, sessions SessionWriter, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		metrics:  metrics,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// deleteAccountRequest は退会リクエストのボディ。
type deleteAccountRequest struct {
	CurrentPassword string `json:"current_password"`
}

// changePasswordRequest はパスワード変更リクエストのボディ。
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// identityResponse は認証成功時のAPIレスポンス。
type identityResponse struct {
	Success bool           `json:"success"`
	User    model.Identity `json:"user"`
}

// Register は新規ユーザー登録とセッション発行を処理する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	identity := model.IdentityFromUser(user)
	if err := h.sessions.CreateSession(w, identity); err != nil {
		handleServiceError(w, err)
		return
	}
	h.metrics.RecordSessionIssued()

	writeJSON(w, http.StatusCreated, identityResponse{Success: true, User: identity})
}

// Login はログインとセッション発行を処理する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthAttempt(false)
		handleServiceError(w, err)
		return
	}
	h.metrics.RecordAuthAttempt(true)

	identity := model.IdentityFromUser(user)
	if err := h.sessions.CreateSession(w, identity); err != nil {
		handleServiceError(w, err)
		return
	}
	h.metrics.RecordSessionIssued()

	writeJSON(w, http.StatusOK, identityResponse{Success: true, User: identity})
}

// Logout はセッションCookieを破棄する。
// トークンはステートレスなのでサーバー側の無効化は行わない。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.DestroySession(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me は現在のセッションのユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{Success: true, User: *identity})
}

// ChangePassword はパスワード変更を処理する。
// POST /api/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAccount は退会処理を実行し、セッションCookieを破棄する。
// DELETE /api/auth/me
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req deleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), identity.UserID, req.CurrentPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	h.sessions.DestroySession(w)
	w.WriteHeader(http.StatusNoContent)
}
