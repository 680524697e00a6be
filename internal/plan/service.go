// Package plan はトレーニング・食事プランのドメインロジックを提供する。
package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/repository"
)

// defaultListLimit は一覧取得のデフォルト件数。
const defaultListLimit = 20

// Generator はプラン本文生成のインターフェース。
type Generator interface {
	Generate(ctx context.Context, goal model.PlanGoal, latestWeightKg float64) (string, model.PlanSource)
}

// Service はプラン生成と永続化のサービス層。
type Service struct {
	planRepo   repository.PlanRepository
	weightRepo repository.WeightRepository
	generator  Generator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(planRepo repository.PlanRepository, weightRepo repository.WeightRepository, generator Generator) *Service {
	return &Service{
		planRepo:   planRepo,
		weightRepo: weightRepo,
		generator:  generator,
	}
}

// Generate は目標と最新体重からプランを生成して保存する。
func (s *Service) Generate(ctx context.Context, userID string, goal model.PlanGoal) (*model.Plan, error) {
	if !goal.IsValid() {
		return nil, model.NewValidationError("目標が正しくありません")
	}

	var latestWeightKg float64
	latest, err := s.weightRepo.FindLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("最新体重の取得に失敗しました: %w", err)
	}
	if latest != nil {
		latestWeightKg = latest.WeightKg
	}

	content, source := s.generator.Generate(ctx, goal, latestWeightKg)

	p := &model.Plan{
		ID:        uuid.New().String(),
		UserID:    userID,
		Goal:      goal,
		Content:   content,
		Source:    source,
		CreatedAt: time.Now(),
	}
	if err := s.planRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("プランの保存に失敗しました: %w", err)
	}
	return p, nil
}

// Get は自分のプランを取得する。
// 他ユーザーのプランは存在しないものとして扱う。
func (s *Service) Get(ctx context.Context, userID, planID string) (*model.Plan, error) {
	p, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("プランの取得に失敗しました: %w", err)
	}
	if p == nil || p.UserID != userID {
		return nil, model.NewPlanNotFoundError(planID)
	}
	return p, nil
}

// List はユーザーのプラン一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*model.Plan, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	plans, err := s.planRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("プラン一覧の取得に失敗しました: %w", err)
	}
	return plans, nil
}

// Delete は自分のプランを削除する。
func (s *Service) Delete(ctx context.Context, userID, planID string) error {
	if _, err := s.Get(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return fmt.Errorf("プランの削除に失敗しました: %w", err)
	}
	return nil
}
