package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fitlog/internal/middleware"
	"github.com/hitoshi/fitlog/internal/model"
)

// PlanServiceInterface はプランハンドラーが必要とするサービスインターフェース。
type PlanServiceInterface interface {
	Generate(ctx context.Context, userID string, goal model.PlanGoal) (*model.Plan, error)
	Get(ctx context.Context, userID, planID string) (*model.Plan, error)
	List(ctx context.Context, userID string, limit int) ([]*model.Plan, error)
	Delete(ctx context.Context, userID, planID string) error
}

// PlanMetrics はプランハンドラーが記録するメトリクスのインターフェース。
type PlanMetrics interface {
	RecordPlanGenerated(source string)
}

// PlanHandler はプラン生成・閲覧のHTTPハンドラー。
type PlanHandler struct {
	service PlanServiceInterface
	metrics PlanMetrics
}

// NewPlanHandler はPlanHandlerを生成する。
func NewPlanHandler(service PlanServiceInterface, metrics PlanMetrics) *PlanHandler {
	return &PlanHandler{
		service: service,
		metrics: metrics,
	}
}

// generatePlanRequest はプラン生成リクエストのボディ。
type generatePlanRequest struct {
	Goal string `json:"goal"`
}

// planResponse はプランのAPIレスポンス。
type planResponse struct {
	ID        string    `json:"id"`
	Goal      string    `json:"goal"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func toPlanResponse(p *model.Plan) planResponse {
	return planResponse{
		ID:        p.ID,
		Goal:      string(p.Goal),
		Content:   p.Content,
		Source:    string(p.Source),
		CreatedAt: p.CreatedAt,
	}
}

// Generate は目標からプランを生成して保存する。
// POST /api/plans
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	p, err := h.service.Generate(r.Context(), identity.UserID, model.PlanGoal(req.Goal))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.metrics.RecordPlanGenerated(string(p.Source))

	writeJSON(w, http.StatusCreated, toPlanResponse(p))
}

// Get はプランの詳細を取得する。
// GET /api/plans/{id}
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	p, err := h.service.Get(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanResponse(p))
}

// List はプランの一覧を取得する。
// GET /api/plans?limit=
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	plans, err := h.service.List(r.Context(), identity.UserID, parseLimit(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, toPlanResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete はプランを削除する。
// DELETE /api/plans/{id}
func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	if err := h.service.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
