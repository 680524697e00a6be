// Package nutrition は食事記録のドメインロジックを提供する。
// 栄養データベースAPIでの食品検索と、食事記録のCRUDを提供する。
package nutrition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/nutritiondb"
	"github.com/hitoshi/fitlog/internal/repository"
	"github.com/hitoshi/fitlog/internal/security"
)

// defaultListLimit は一覧取得のデフォルト件数。
const defaultListLimit = 50

// FoodSearcher は食品検索のインターフェース。
type FoodSearcher interface {
	Enabled() bool
	Search(ctx context.Context, query string) ([]nutritiondb.SearchResult, error)
}

// コンパイル時のインターフェース実装チェック
var _ FoodSearcher = (*nutritiondb.Client)(nil)

// Service は食事記録のサービス層。
type Service struct {
	mealRepo  repository.MealRepository
	searcher  FoodSearcher
	sanitizer security.NotesSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(mealRepo repository.MealRepository, searcher FoodSearcher, sanitizer security.NotesSanitizer) *Service {
	return &Service{
		mealRepo:  mealRepo,
		searcher:  searcher,
		sanitizer: sanitizer,
	}
}

// MealInput は食事記録作成・更新の入力。
type MealInput struct {
	Type      model.MealType
	FoodName  string
	Notes     string
	AteAt     time.Time
	Nutrition model.NutritionFacts
}

// SearchFood は栄養データベースAPIで食品を検索する。
// APIが未設定の場合・結果が0件の場合はFOOD_NOT_FOUNDを返す。
func (s *Service) SearchFood(ctx context.Context, query string) ([]nutritiondb.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.NewValidationError("検索キーワードは必須です")
	}
	if !s.searcher.Enabled() {
		return nil, model.NewFoodNotFoundError(query)
	}

	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("食品検索に失敗しました: %w", err)
	}
	if len(results) == 0 {
		return nil, model.NewFoodNotFoundError(query)
	}
	return results, nil
}

// CreateMeal は食事記録を作成する。
func (s *Service) CreateMeal(ctx context.Context, userID string, input MealInput) (*model.Meal, error) {
	if err := validateMealInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	meal := &model.Meal{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      input.Type,
		FoodName:  strings.TrimSpace(input.FoodName),
		Notes:     s.sanitizer.Sanitize(input.Notes),
		AteAt:     input.AteAt,
		Nutrition: input.Nutrition,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.mealRepo.Create(ctx, meal); err != nil {
		return nil, fmt.Errorf("食事記録の作成に失敗しました: %w", err)
	}
	return meal, nil
}

// GetMeal は自分の食事記録を取得する。
// 他ユーザーの記録は存在しないものとして扱う。
func (s *Service) GetMeal(ctx context.Context, userID, mealID string) (*model.Meal, error) {
	meal, err := s.mealRepo.FindByID(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("食事記録の取得に失敗しました: %w", err)
	}
	if meal == nil || meal.UserID != userID {
		return nil, model.NewMealNotFoundError(mealID)
	}
	return meal, nil
}

// ListMeals は期間内の食事記録を食事日時の降順で返す。
func (s *Service) ListMeals(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Meal, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	meals, err := s.mealRepo.ListByUser(ctx, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("食事記録一覧の取得に失敗しました: %w", err)
	}
	return meals, nil
}

// UpdateMeal は自分の食事記録を上書き更新する。
func (s *Service) UpdateMeal(ctx context.Context, userID, mealID string, input MealInput) (*model.Meal, error) {
	if err := validateMealInput(input); err != nil {
		return nil, err
	}

	existing, err := s.GetMeal(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	existing.Type = input.Type
	existing.FoodName = strings.TrimSpace(input.FoodName)
	existing.Notes = s.sanitizer.Sanitize(input.Notes)
	existing.AteAt = input.AteAt
	existing.Nutrition = input.Nutrition
	existing.UpdatedAt = time.Now()

	if err := s.mealRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("食事記録の更新に失敗しました: %w", err)
	}
	return existing, nil
}

// DeleteMeal は自分の食事記録を削除する。
func (s *Service) DeleteMeal(ctx context.Context, userID, mealID string) error {
	if _, err := s.GetMeal(ctx, userID, mealID); err != nil {
		return err
	}
	if err := s.mealRepo.Delete(ctx, mealID); err != nil {
		return fmt.Errorf("食事記録の削除に失敗しました: %w", err)
	}
	return nil
}

func validateMealInput(input MealInput) error {
	if !input.Type.IsValid() {
		return model.NewValidationError("食事区分が正しくありません")
	}
	if strings.TrimSpace(input.FoodName) == "" {
		return model.NewValidationError("食品名は必須です")
	}
	if input.AteAt.IsZero() {
		return model.NewValidationError("食事日時は必須です")
	}
	n := input.Nutrition
	if n.Calories < 0 || n.ProteinG < 0 || n.CarbsG < 0 || n.FatG < 0 {
		return model.NewValidationError("栄養素に負の値は指定できません")
	}
	return nil
}
