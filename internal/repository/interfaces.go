// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/fitlog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdatePasswordHash はクレデンシャル（"salt:hash"）を上書きする。
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するworkouts、meals、weight_entries、plansはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// WorkoutRepository はトレーニング記録の永続化インターフェース。
type WorkoutRepository interface {
	// Create はトレーニング記録と種目を同一トランザクションで作成する。
	Create(ctx context.Context, workout *model.Workout) error

	// FindByID は指定IDの記録を種目付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Workout, error)

	// ListByUser はユーザーの記録一覧を実施日時の降順で返す。
	ListByUser(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Workout, error)

	// Update は記録を上書き更新する。種目は全削除のうえ再挿入する。
	Update(ctx context.Context, workout *model.Workout) error

	// Delete は指定IDの記録を削除する。
	Delete(ctx context.Context, id string) error

	// CountByUser は期間内の記録数を返す。
	CountByUser(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// MealRepository は食事記録の永続化インターフェース。
type MealRepository interface {
	// Create は食事記録を作成する。
	Create(ctx context.Context, meal *model.Meal) error

	// FindByID は指定IDの記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Meal, error)

	// ListByUser はユーザーの記録一覧を食事日時の降順で返す。
	ListByUser(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Meal, error)

	// Update は記録を上書き更新する。
	Update(ctx context.Context, meal *model.Meal) error

	// Delete は指定IDの記録を削除する。
	Delete(ctx context.Context, id string) error

	// SumCalories は期間内の摂取カロリー合計を返す。
	SumCalories(ctx context.Context, userID string, from, to time.Time) (float64, error)
}

// WeightRepository は体重記録の永続化インターフェース。
type WeightRepository interface {
	// Create は体重記録を作成する。
	Create(ctx context.Context, entry *model.WeightEntry) error

	// ListByUser は期間内の体重記録を記録日時の昇順で返す。
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*model.WeightEntry, error)

	// FindLatest はユーザーの最新の体重記録を返す。見つからない場合はnilを返す。
	FindLatest(ctx context.Context, userID string) (*model.WeightEntry, error)

	// Delete は指定IDの記録を削除する。
	Delete(ctx context.Context, id string) error
}

// PlanRepository は生成プランの永続化インターフェース。
type PlanRepository interface {
	// Create はプランを作成する。
	Create(ctx context.Context, plan *model.Plan) error

	// FindByID は指定IDのプランを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Plan, error)

	// ListByUser はユーザーのプラン一覧を作成日時の降順で返す。
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Plan, error)

	// Delete は指定IDのプランを削除する。
	Delete(ctx context.Context, id string) error
}
