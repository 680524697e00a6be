// Package progress は体重記録と進捗サマリーのドメインロジックを提供する。
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/repository"
)

const (
	// minWeightKg と maxWeightKg は入力値の妥当性範囲。
	minWeightKg = 20.0
	maxWeightKg = 400.0
)

// Service は体重記録と進捗サマリーのサービス層。
type Service struct {
	weightRepo  repository.WeightRepository
	workoutRepo repository.WorkoutRepository
	mealRepo    repository.MealRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	weightRepo repository.WeightRepository,
	workoutRepo repository.WorkoutRepository,
	mealRepo repository.MealRepository,
) *Service {
	return &Service{
		weightRepo:  weightRepo,
		workoutRepo: workoutRepo,
		mealRepo:    mealRepo,
	}
}

// RecordWeight は体重記録を作成する。
func (s *Service) RecordWeight(ctx context.Context, userID string, weightKg float64, recordedAt time.Time) (*model.WeightEntry, error) {
	if weightKg < minWeightKg || weightKg > maxWeightKg {
		return nil, model.NewValidationError(fmt.Sprintf("体重は%.0f〜%.0fkgの範囲で入力してください", minWeightKg, maxWeightKg))
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	entry := &model.WeightEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		WeightKg:   weightKg,
		RecordedAt: recordedAt,
		CreatedAt:  time.Now(),
	}
	if err := s.weightRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("体重記録の作成に失敗しました: %w", err)
	}
	return entry, nil
}

// ListWeights は期間内の体重記録を記録日時の昇順で返す。
func (s *Service) ListWeights(ctx context.Context, userID string, from, to time.Time) ([]*model.WeightEntry, error) {
	entries, err := s.weightRepo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("体重記録一覧の取得に失敗しました: %w", err)
	}
	return entries, nil
}

// LatestWeight はユーザーの最新の体重記録を返す。記録がない場合はnilを返す。
func (s *Service) LatestWeight(ctx context.Context, userID string) (*model.WeightEntry, error) {
	entry, err := s.weightRepo.FindLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("最新体重の取得に失敗しました: %w", err)
	}
	return entry, nil
}

// Summary は期間内の進捗サマリーを集計する。
// 体重変化は期間内の最初の記録と最後の記録の差分。
func (s *Service) Summary(ctx context.Context, userID string, from, to time.Time) (*model.ProgressSummary, error) {
	summary := &model.ProgressSummary{
		From: from,
		To:   to,
	}

	count, err := s.workoutRepo.CountByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("トレーニング数の集計に失敗しました: %w", err)
	}
	summary.WorkoutCount = count

	calories, err := s.mealRepo.SumCalories(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("摂取カロリーの集計に失敗しました: %w", err)
	}
	summary.TotalCalories = calories

	weights, err := s.weightRepo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("体重記録の取得に失敗しました: %w", err)
	}
	if len(weights) > 0 {
		summary.StartWeightKg = weights[0].WeightKg
		summary.LatestWeightKg = weights[len(weights)-1].WeightKg
		summary.WeightChangeKg = summary.LatestWeightKg - summary.StartWeightKg
	}

	return summary, nil
}
