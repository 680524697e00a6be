package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/fitlog/internal/model"
)

// PostgresMealRepo はPostgreSQLを使用した食事記録リポジトリ。
type PostgresMealRepo struct {
	db *sql.DB
}

// NewPostgresMealRepo はPostgresMealRepoを生成する。
func NewPostgresMealRepo(db *sql.DB) *PostgresMealRepo {
	return &PostgresMealRepo{db: db}
}

// Create は食事記録を作成する。
func (r *PostgresMealRepo) Create(ctx context.Context, meal *model.Meal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO meals (id, user_id, meal_type, food_name, notes, ate_at,
		                    calories, protein_g, carbs_g, fat_g, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		meal.ID, meal.UserID, meal.Type, meal.FoodName, meal.Notes, meal.AteAt,
		meal.Nutrition.Calories, meal.Nutrition.ProteinG, meal.Nutrition.CarbsG, meal.Nutrition.FatG,
		meal.CreatedAt, meal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

// FindByID は指定IDの記録を取得する。見つからない場合はnilを返す。
func (r *PostgresMealRepo) FindByID(ctx context.Context, id string) (*model.Meal, error) {
	meal := &model.Meal{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, meal_type, food_name, notes, ate_at,
		        calories, protein_g, carbs_g, fat_g, created_at, updated_at
		 FROM meals WHERE id = $1`,
		id,
	).Scan(&meal.ID, &meal.UserID, &meal.Type, &meal.FoodName, &meal.Notes, &meal.AteAt,
		&meal.Nutrition.Calories, &meal.Nutrition.ProteinG, &meal.Nutrition.CarbsG, &meal.Nutrition.FatG,
		&meal.CreatedAt, &meal.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find meal by ID: %w", err)
	}

	return meal, nil
}

// ListByUser はユーザーの記録一覧を食事日時の降順で返す。
func (r *PostgresMealRepo) ListByUser(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Meal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, meal_type, food_name, notes, ate_at,
		        calories, protein_g, carbs_g, fat_g, created_at, updated_at
		 FROM meals
		 WHERE user_id = $1 AND ate_at >= $2 AND ate_at < $3
		 ORDER BY ate_at DESC
		 LIMIT $4`,
		userID, from, to, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	var meals []*model.Meal
	for rows.Next() {
		m := &model.Meal{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &m.FoodName, &m.Notes, &m.AteAt,
			&m.Nutrition.Calories, &m.Nutrition.ProteinG, &m.Nutrition.CarbsG, &m.Nutrition.FatG,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}

	return meals, nil
}

// Update は記録を上書き更新する。
func (r *PostgresMealRepo) Update(ctx context.Context, meal *model.Meal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE meals SET meal_type = $2, food_name = $3, notes = $4, ate_at = $5,
		        calories = $6, protein_g = $7, carbs_g = $8, fat_g = $9, updated_at = $10
		 WHERE id = $1`,
		meal.ID, meal.Type, meal.FoodName, meal.Notes, meal.AteAt,
		meal.Nutrition.Calories, meal.Nutrition.ProteinG, meal.Nutrition.CarbsG, meal.Nutrition.FatG,
		meal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update meal: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("meal not found: %s", meal.ID)
	}
	return nil
}

// Delete は指定IDの記録を削除する。
func (r *PostgresMealRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("meal not found: %s", id)
	}
	return nil
}

// SumCalories は期間内の摂取カロリー合計を返す。
func (r *PostgresMealRepo) SumCalories(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(calories), 0) FROM meals
		 WHERE user_id = $1 AND ate_at >= $2 AND ate_at < $3`,
		userID, from, to,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum calories: %w", err)
	}
	return total, nil
}

// compile-time interface check
var _ MealRepository = (*PostgresMealRepo)(nil)
