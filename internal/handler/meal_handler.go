package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fitlog/internal/middleware"
	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/nutrition"
	"github.com/hitoshi/fitlog/internal/nutritiondb"
)

// NutritionServiceInterface は食事ハンドラーが必要とするサービスインターフェース。
type NutritionServiceInterface interface {
	SearchFood(ctx context.Context, query string) ([]nutritiondb.SearchResult, error)
	CreateMeal(ctx context.Context, userID string, input nutrition.MealInput) (*model.Meal, error)
	GetMeal(ctx context.Context, userID, mealID string) (*model.Meal, error)
	ListMeals(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Meal, error)
	UpdateMeal(ctx context.Context, userID, mealID string, input nutrition.MealInput) (*model.Meal, error)
	DeleteMeal(ctx context.Context, userID, mealID string) error
}

// MealHandler は食事記録と食品検索のHTTPハンドラー。
type MealHandler struct {
	service NutritionServiceInterface
}

// NewMealHandler はMealHandlerを生成する。
func NewMealHandler(service NutritionServiceInterface) *MealHandler {
	return &MealHandler{service: service}
}

// mealRequest は食事記録作成・更新リクエストのボディ。
type mealRequest struct {
	Type      string               `json:"type"`
	FoodName  string               `json:"food_name"`
	Notes     string               `json:"notes"`
	AteAt     time.Time            `json:"ate_at"`
	Nutrition model.NutritionFacts `json:"nutrition"`
}

// mealResponse は食事記録のAPIレスポンス。
type mealResponse struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	FoodName  string               `json:"food_name"`
	Notes     string               `json:"notes"`
	AteAt     time.Time            `json:"ate_at"`
	Nutrition model.NutritionFacts `json:"nutrition"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func toMealResponse(m *model.Meal) mealResponse {
	return mealResponse{
		ID:        m.ID,
		Type:      string(m.Type),
		FoodName:  m.FoodName,
		Notes:     m.Notes,
		AteAt:     m.AteAt,
		Nutrition: m.Nutrition,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toMealInput(req mealRequest) nutrition.MealInput {
	return nutrition.MealInput{
		Type:      model.MealType(req.Type),
		FoodName:  req.FoodName,
		Notes:     req.Notes,
		AteAt:     req.AteAt,
		Nutrition: req.Nutrition,
	}
}

// SearchFood は栄養データベースで食品を検索する。
// GET /api/meals/search?q=
func (h *MealHandler) SearchFood(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.SearchFood(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Create は食事記録を作成する。
// POST /api/meals
func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req mealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	meal, err := h.service.CreateMeal(r.Context(), identity.UserID, toMealInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMealResponse(meal))
}

// Get は食事記録の詳細を取得する。
// GET /api/meals/{id}
func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	meal, err := h.service.GetMeal(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMealResponse(meal))
}

// List は食事記録の一覧を取得する。
// GET /api/meals?from=&to=&limit=
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	from, to, err := parseTimeRange(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	meals, err := h.service.ListMeals(r.Context(), identity.UserID, from, to, parseLimit(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]mealResponse, 0, len(meals))
	for _, m := range meals {
		resp = append(resp, toMealResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update は食事記録を更新する。
// PUT /api/meals/{id}
func (h *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req mealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	meal, err := h.service.UpdateMeal(r.Context(), identity.UserID, chi.URLParam(r, "id"), toMealInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMealResponse(meal))
}

// Delete は食事記録を削除する。
// DELETE /api/meals/{id}
func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	if err := h.service.DeleteMeal(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
