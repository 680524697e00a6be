package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fitlog/internal/model"
)

// PostgresPlanRepo はPostgreSQLを使用したプランリポジトリ。
type PostgresPlanRepo struct {
	db *sql.DB
}

// NewPostgresPlanRepo はPostgresPlanRepoを生成する。
func NewPostgresPlanRepo(db *sql.DB) *PostgresPlanRepo {
	return &PostgresPlanRepo{db: db}
}

// Create はプランを作成する。
func (r *PostgresPlanRepo) Create(ctx context.Context, plan *model.Plan) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO plans (id, user_id, goal, content, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		plan.ID, plan.UserID, plan.Goal, plan.Content, plan.Source, plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

// FindByID は指定IDのプランを取得する。見つからない場合はnilを返す。
func (r *PostgresPlanRepo) FindByID(ctx context.Context, id string) (*model.Plan, error) {
	plan := &model.Plan{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, goal, content, source, created_at FROM plans WHERE id = $1`,
		id,
	).Scan(&plan.ID, &plan.UserID, &plan.Goal, &plan.Content, &plan.Source, &plan.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan by ID: %w", err)
	}

	return plan, nil
}

// ListByUser はユーザーのプラン一覧を作成日時の降順で返す。
func (r *PostgresPlanRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, goal, content, source, created_at
		 FROM plans WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*model.Plan
	for rows.Next() {
		p := &model.Plan{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Goal, &p.Content, &p.Source, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}

	return plans, nil
}

// Delete は指定IDのプランを削除する。
func (r *PostgresPlanRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("plan not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ PlanRepository = (*PostgresPlanRepo)(nil)
