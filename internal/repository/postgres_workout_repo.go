package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/fitlog/internal/model"
)

// PostgresWorkoutRepo はPostgreSQLを使用したトレーニング記録リポジトリ。
type PostgresWorkoutRepo struct {
	db *sql.DB
}

// NewPostgresWorkoutRepo はPostgresWorkoutRepoを生成する。
func NewPostgresWorkoutRepo(db *sql.DB) *PostgresWorkoutRepo {
	return &PostgresWorkoutRepo{db: db}
}

// Create はトレーニング記録と種目を同一トランザクションで作成する。
func (r *PostgresWorkoutRepo) Create(ctx context.Context, workout *model.Workout) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workouts (id, user_id, performed_at, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		workout.ID, workout.UserID, workout.PerformedAt, workout.Notes, workout.CreatedAt, workout.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workout: %w", err)
	}

	for _, ex := range workout.Exercises {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO exercises (id, workout_id, name, sets, reps, weight_kg, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ex.ID, ex.WorkoutID, ex.Name, ex.Sets, ex.Reps, ex.WeightKg, ex.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert exercise: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDの記録を種目付きで取得する。見つからない場合はnilを返す。
func (r *PostgresWorkoutRepo) FindByID(ctx context.Context, id string) (*model.Workout, error) {
	workout := &model.Workout{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, performed_at, notes, created_at, updated_at FROM workouts WHERE id = $1`,
		id,
	).Scan(&workout.ID, &workout.UserID, &workout.PerformedAt, &workout.Notes, &workout.CreatedAt, &workout.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find workout by ID: %w", err)
	}

	exercises, err := r.listExercises(ctx, id)
	if err != nil {
		return nil, err
	}
	workout.Exercises = exercises

	return workout, nil
}

// ListByUser はユーザーの記録一覧を実施日時の降順で返す。
func (r *PostgresWorkoutRepo) ListByUser(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Workout, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, performed_at, notes, created_at, updated_at
		 FROM workouts
		 WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3
		 ORDER BY performed_at DESC
		 LIMIT $4`,
		userID, from, to, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*model.Workout
	for rows.Next() {
		w := &model.Workout{}
		if err := rows.Scan(&w.ID, &w.UserID, &w.PerformedAt, &w.Notes, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workouts: %w", err)
	}

	for _, w := range workouts {
		exercises, err := r.listExercises(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		w.Exercises = exercises
	}

	return workouts, nil
}

// Update は記録を上書き更新する。種目は全削除のうえ再挿入する。
func (r *PostgresWorkoutRepo) Update(ctx context.Context, workout *model.Workout) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE workouts SET performed_at = $2, notes = $3, updated_at = $4 WHERE id = $1`,
		workout.ID, workout.PerformedAt, workout.Notes, workout.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update workout: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("workout not found: %s", workout.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE workout_id = $1`, workout.ID); err != nil {
		return fmt.Errorf("failed to delete exercises: %w", err)
	}

	for _, ex := range workout.Exercises {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO exercises (id, workout_id, name, sets, reps, weight_kg, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ex.ID, ex.WorkoutID, ex.Name, ex.Sets, ex.Reps, ex.WeightKg, ex.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert exercise: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete は指定IDの記録を削除する。種目はCASCADE削除される。
func (r *PostgresWorkoutRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workout: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("workout not found: %s", id)
	}
	return nil
}

// CountByUser は期間内の記録数を返す。
func (r *PostgresWorkoutRepo) CountByUser(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workouts WHERE user_id = $1 AND performed_at >= $2 AND performed_at < $3`,
		userID, from, to,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count workouts: %w", err)
	}
	return count, nil
}

// listExercises はトレーニング記録に属する種目を作成順で取得する。
func (r *PostgresWorkoutRepo) listExercises(ctx context.Context, workoutID string) ([]model.Exercise, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workout_id, name, sets, reps, weight_kg, created_at
		 FROM exercises WHERE workout_id = $1 ORDER BY created_at`,
		workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []model.Exercise
	for rows.Next() {
		var ex model.Exercise
		if err := rows.Scan(&ex.ID, &ex.WorkoutID, &ex.Name, &ex.Sets, &ex.Reps, &ex.WeightKg, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exercises: %w", err)
	}

	return exercises, nil
}

// compile-time interface check
var _ WorkoutRepository = (*PostgresWorkoutRepo)(nil)
