package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/fitlog/internal/middleware"
	"github.com/hitoshi/fitlog/internal/model"
)

// ProgressServiceInterface は進捗ハンドラーが必要とするサービスインターフェース。
type ProgressServiceInterface interface {
	RecordWeight(ctx context.Context, userID string, weightKg float64, recordedAt time.Time) (*model.WeightEntry, error)
	ListWeights(ctx context.Context, userID string, from, to time.Time) ([]*model.WeightEntry, error)
	Summary(ctx context.Context, userID string, from, to time.Time) (*model.ProgressSummary, error)
}

// ProgressHandler は体重記録と進捗サマリーのHTTPハンドラー。
type ProgressHandler struct {
	service ProgressServiceInterface
}

// NewProgressHandler はProgressHandlerを生成する。
func NewProgressHandler(service ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// weightRequest は体重記録リクエストのボディ。
type weightRequest struct {
	WeightKg   float64   `json:"weight_kg"`
	RecordedAt time.Time `json:"recorded_at"`
}

// weightResponse は体重記録のAPIレスポンス。
type weightResponse struct {
	ID         string    `json:"id"`
	WeightKg   float64   `json:"weight_kg"`
	RecordedAt time.Time `json:"recorded_at"`
}

// summaryResponse は進捗サマリーのAPIレスポンス。
type summaryResponse struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	WorkoutCount   int       `json:"workout_count"`
	TotalCalories  float64   `json:"total_calories"`
	StartWeightKg  float64   `json:"start_weight_kg"`
	LatestWeightKg float64   `json:"latest_weight_kg"`
	WeightChangeKg float64   `json:"weight_change_kg"`
}

func toWeightResponse(e *model.WeightEntry) weightResponse {
	return weightResponse{
		ID:         e.ID,
		WeightKg:   e.WeightKg,
		RecordedAt: e.RecordedAt,
	}
}

// RecordWeight は体重記録を作成する。
// POST /api/progress/weights
func (h *ProgressHandler) RecordWeight(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req weightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	entry, err := h.service.RecordWeight(r.Context(), identity.UserID, req.WeightKg, req.RecordedAt)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWeightResponse(entry))
}

// ListWeights は体重記録の一覧を取得する。
// GET /api/progress/weights?from=&to=
func (h *ProgressHandler) ListWeights(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	from, to, err := parseTimeRange(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries, err := h.service.ListWeights(r.Context(), identity.UserID, from, to)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]weightResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toWeightResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summary は期間内の進捗サマリーを取得する。
// GET /api/progress/summary?from=&to=
func (h *ProgressHandler) Summary(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	from, to, err := parseTimeRange(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), identity.UserID, from, to)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		From:           summary.From,
		To:             summary.To,
		WorkoutCount:   summary.WorkoutCount,
		TotalCalories:  summary.TotalCalories,
		StartWeightKg:  summary.StartWeightKg,
		LatestWeightKg: summary.LatestWeightKg,
		WeightChangeKg: summary.WeightChangeKg,
	})
}
