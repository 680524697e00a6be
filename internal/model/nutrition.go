package model

import "time"

// MealType は食事の区分を表す。
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// IsValid は定義済みの食事区分かどうかを判定する。
func (m MealType) IsValid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	default:
		return false
	}
}

// Meal は1回の食事記録を表す。
// 栄養素の値は栄養データベースAPIの検索結果またはユーザー入力に由来する。
type Meal struct {
	ID       string
	UserID   string
	Type     MealType
	FoodName string
	Notes    string
	AteAt    time.Time
	Nutrition NutritionFacts
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NutritionFacts は1食分の栄養素を表す。
type NutritionFacts struct {
	Calories  float64 `json:"calories"`
	ProteinG  float64 `json:"protein_g"`
	CarbsG    float64 `json:"carbs_g"`
	FatG      float64 `json:"fat_g"`
}
