// Package workout はトレーニング記録のドメインロジックを提供する。
package workout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/repository"
	"github.com/hitoshi/fitlog/internal/security"
)

const (
	// maxExercisesPerWorkout は1記録あたりの最大種目数。
	maxExercisesPerWorkout = 30
	// defaultListLimit は一覧取得のデフォルト件数。
	defaultListLimit = 50
)

// Service はトレーニング記録のサービス層。
type Service struct {
	workoutRepo repository.WorkoutRepository
	sanitizer   security.NotesSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(workoutRepo repository.WorkoutRepository, sanitizer security.NotesSanitizer) *Service {
	return &Service{
		workoutRepo: workoutRepo,
		sanitizer:   sanitizer,
	}
}

// CreateInput はトレーニング記録作成の入力。
type CreateInput struct {
	PerformedAt time.Time
	Notes       string
	Exercises   []ExerciseInput
}

// ExerciseInput は種目の入力。
type ExerciseInput struct {
	Name     string
	Sets     int
	Reps     int
	WeightKg float64
}

// Create はトレーニング記録を作成する。
// メモはサニタイズしてから保存する。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Workout, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	w := &model.Workout{
		ID:          uuid.New().String(),
		UserID:      userID,
		PerformedAt: input.PerformedAt,
		Notes:       s.sanitizer.Sanitize(input.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, ex := range input.Exercises {
		w.Exercises = append(w.Exercises, model.Exercise{
			ID:        uuid.New().String(),
			WorkoutID: w.ID,
			Name:      strings.TrimSpace(ex.Name),
			Sets:      ex.Sets,
			Reps:      ex.Reps,
			WeightKg:  ex.WeightKg,
			CreatedAt: now,
		})
	}

	if err := s.workoutRepo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("トレーニング記録の作成に失敗しました: %w", err)
	}
	return w, nil
}

// Get は自分のトレーニング記録を取得する。
// 他ユーザーの記録は存在しないものとして扱う。
func (s *Service) Get(ctx context.Context, userID, workoutID string) (*model.Workout, error) {
	w, err := s.workoutRepo.FindByID(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("トレーニング記録の取得に失敗しました: %w", err)
	}
	if w == nil || w.UserID != userID {
		return nil, model.NewWorkoutNotFoundError(workoutID)
	}
	return w, nil
}

// List は期間内のトレーニング記録を実施日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Workout, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	workouts, err := s.workoutRepo.ListByUser(ctx, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("トレーニング記録一覧の取得に失敗しました: %w", err)
	}
	return workouts, nil
}

// Update は自分のトレーニング記録を上書き更新する。
func (s *Service) Update(ctx context.Context, userID, workoutID string, input CreateInput) (*model.Workout, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	existing.PerformedAt = input.PerformedAt
	existing.Notes = s.sanitizer.Sanitize(input.Notes)
	existing.UpdatedAt = now
	existing.Exercises = nil
	for _, ex := range input.Exercises {
		existing.Exercises = append(existing.Exercises, model.Exercise{
			ID:        uuid.New().String(),
			WorkoutID: existing.ID,
			Name:      strings.TrimSpace(ex.Name),
			Sets:      ex.Sets,
			Reps:      ex.Reps,
			WeightKg:  ex.WeightKg,
			CreatedAt: now,
		})
	}

	if err := s.workoutRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("トレーニング記録の更新に失敗しました: %w", err)
	}
	return existing, nil
}

// Delete は自分のトレーニング記録を削除する。
func (s *Service) Delete(ctx context.Context, userID, workoutID string) error {
	if _, err := s.Get(ctx, userID, workoutID); err != nil {
		return err
	}
	if err := s.workoutRepo.Delete(ctx, workoutID); err != nil {
		return fmt.Errorf("トレーニング記録の削除に失敗しました: %w", err)
	}
	return nil
}

func validateInput(input CreateInput) error {
	if input.PerformedAt.IsZero() {
		return model.NewValidationError("実施日時は必須です")
	}
	if len(input.Exercises) == 0 {
		return model.NewValidationError("種目を1つ以上入力してください")
	}
	if len(input.Exercises) > maxExercisesPerWorkout {
		return model.NewValidationError(fmt.Sprintf("種目数は%d件以内にしてください", maxExercisesPerWorkout))
	}
	for _, ex := range input.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return model.NewValidationError("種目名は必須です")
		}
		if ex.Sets < 0 || ex.Reps < 0 || ex.WeightKg < 0 {
			return model.NewValidationError("セット数・回数・重量に負の値は指定できません")
		}
	}
	return nil
}
