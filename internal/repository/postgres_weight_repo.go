package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/fitlog/internal/model"
)

// PostgresWeightRepo はPostgreSQLを使用した体重記録リポジトリ。
type PostgresWeightRepo struct {
	db *sql.DB
}

// NewPostgresWeightRepo はPostgresWeightRepoを生成する。
func NewPostgresWeightRepo(db *sql.DB) *PostgresWeightRepo {
	return &PostgresWeightRepo{db: db}
}

// Create は体重記録を作成する。
func (r *PostgresWeightRepo) Create(ctx context.Context, entry *model.WeightEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO weight_entries (id, user_id, weight_kg, recorded_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.UserID, entry.WeightKg, entry.RecordedAt, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert weight entry: %w", err)
	}
	return nil
}

// ListByUser は期間内の体重記録を記録日時の昇順で返す。
func (r *PostgresWeightRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*model.WeightEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, weight_kg, recorded_at, created_at
		 FROM weight_entries
		 WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		 ORDER BY recorded_at`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list weight entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.WeightEntry
	for rows.Next() {
		e := &model.WeightEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.WeightKg, &e.RecordedAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weight entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate weight entries: %w", err)
	}

	return entries, nil
}

// FindLatest はユーザーの最新の体重記録を返す。見つからない場合はnilを返す。
func (r *PostgresWeightRepo) FindLatest(ctx context.Context, userID string) (*model.WeightEntry, error) {
	entry := &model.WeightEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, weight_kg, recorded_at, created_at
		 FROM weight_entries WHERE user_id = $1
		 ORDER BY recorded_at DESC LIMIT 1`,
		userID,
	).Scan(&entry.ID, &entry.UserID, &entry.WeightKg, &entry.RecordedAt, &entry.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest weight entry: %w", err)
	}

	return entry, nil
}

// Delete は指定IDの記録を削除する。
func (r *PostgresWeightRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM weight_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete weight entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("weight entry not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ WeightRepository = (*PostgresWeightRepo)(nil)
