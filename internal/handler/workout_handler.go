package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fitlog/internal/middleware"
	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/workout"
)

// WorkoutServiceInterface はトレーニングハンドラーが必要とするサービスインターフェース。
type WorkoutServiceInterface interface {
	Create(ctx context.Context, userID string, input workout.CreateInput) (*model.Workout, error)
	Get(ctx context.Context, userID, workoutID string) (*model.Workout, error)
	List(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Workout, error)
	Update(ctx context.Context, userID, workoutID string, input workout.CreateInput) (*model.Workout, error)
	Delete(ctx context.Context, userID, workoutID string) error
}

// WorkoutHandler はトレーニング記録のHTTPハンドラー。
type WorkoutHandler struct {
	service WorkoutServiceInterface
}

// NewWorkoutHandler はWorkoutHandlerを生成する。
func NewWorkoutHandler(service WorkoutServiceInterface) *WorkoutHandler {
	return &WorkoutHandler{service: service}
}

// workoutRequest はトレーニング記録作成・更新リクエストのボディ。
type workoutRequest struct {
	PerformedAt time.Time         `json:"performed_at"`
	Notes       string            `json:"notes"`
	Exercises   []exerciseRequest `json:"exercises"`
}

type exerciseRequest struct {
	Name     string  `json:"name"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg"`
}

// workoutResponse はトレーニング記録のAPIレスポンス。
type workoutResponse struct {
	ID          string             `json:"id"`
	PerformedAt time.Time          `json:"performed_at"`
	Notes       string             `json:"notes"`
	Exercises   []exerciseResponse `json:"exercises"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type exerciseResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg"`
}

func toWorkoutResponse(w *model.Workout) workoutResponse {
	resp := workoutResponse{
		ID:          w.ID,
		PerformedAt: w.PerformedAt,
		Notes:       w.Notes,
		Exercises:   make([]exerciseResponse, 0, len(w.Exercises)),
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	for _, ex := range w.Exercises {
		resp.Exercises = append(resp.Exercises, exerciseResponse{
			ID:       ex.ID,
			Name:     ex.Name,
			Sets:     ex.Sets,
			Reps:     ex.Reps,
			WeightKg: ex.WeightKg,
		})
	}
	return resp
}

func toCreateInput(req workoutRequest) workout.CreateInput {
	input := workout.CreateInput{
		PerformedAt: req.PerformedAt,
		Notes:       req.Notes,
	}
	for _, ex := range req.Exercises {
		input.Exercises = append(input.Exercises, workout.ExerciseInput{
			Name:     ex.Name,
			Sets:     ex.Sets,
			Reps:     ex.Reps,
			WeightKg: ex.WeightKg,
		})
	}
	return input
}

// Create はトレーニング記録を作成する。
// POST /api/workouts
func (h *WorkoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.Create(r.Context(), identity.UserID, toCreateInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkoutResponse(created))
}

// Get はトレーニング記録の詳細を取得する。
// GET /api/workouts/{id}
func (h *WorkoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	found, err := h.service.Get(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutResponse(found))
}

// List はトレーニング記録の一覧を取得する。
// GET /api/workouts?from=&to=&limit=
func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	from, to, err := parseTimeRange(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	workouts, err := h.service.List(r.Context(), identity.UserID, from, to, parseLimit(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]workoutResponse, 0, len(workouts))
	for _, w2 := range workouts {
		resp = append(resp, toWorkoutResponse(w2))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update はトレーニング記録を更新する。
// PUT /api/workouts/{id}
func (h *WorkoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.service.Update(r.Context(), identity.UserID, chi.URLParam(r, "id"), toCreateInput(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutResponse(updated))
}

// Delete はトレーニング記録を削除する。
// DELETE /api/workouts/{id}
func (h *WorkoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	if err := h.service.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
