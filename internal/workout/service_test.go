package workout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/security"
)

// mockWorkoutRepo はWorkoutRepository のテスト用モック。
type mockWorkoutRepo struct {
	createFn     func(ctx context.Context, workout *model.Workout) error
	findByIDFn   func(ctx context.Context, id string) (*model.Workout, error)
	listByUserFn func(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Workout, error)
	updateFn     func(ctx context.Context, workout *model.Workout) error
	deleteFn     func(ctx context.Context, id string) error
	countFn      func(ctx context.Context, userID string, from, to time.Time) (int, error)
}

func (m *mockWorkoutRepo) Create(ctx context.Context, workout *model.Workout) error {
	return m.createFn(ctx, workout)
}

func (m *mockWorkoutRepo) FindByID(ctx context.Context, id string) (*model.Workout, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockWorkoutRepo) ListByUser(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Workout, error) {
	return m.listByUserFn(ctx, userID, from, to, limit)
}

func (m *mockWorkoutRepo) Update(ctx context.Context, workout *model.Workout) error {
	return m.updateFn(ctx, workout)
}

func (m *mockWorkoutRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockWorkoutRepo) CountByUser(ctx context.Context, userID string, from, to time.Time) (int, error) {
	return m.countFn(ctx, userID, from, to)
}

func validInput() CreateInput {
	return CreateInput{
		PerformedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		Notes:       "朝トレ",
		Exercises: []ExerciseInput{
			{Name: "スクワット", Sets: 3, Reps: 10, WeightKg: 60},
		},
	}
}

func TestService_Create_SanitizesNotes(t *testing.T) {
	var saved *model.Workout
	repo := &mockWorkoutRepo{
		createFn: func(ctx context.Context, workout *model.Workout) error {
			saved = workout
			return nil
		},
	}
	svc := NewService(repo, security.NewNotesSanitizer())

	input := validInput()
	input.Notes = `<script>alert("x")</script>フォーム重視`

	w, err := svc.Create(context.Background(), "user-1", input)
	if err != nil {
		t.Fatalf("Create がエラーを返した: %v", err)
	}
	if saved == nil {
		t.Fatal("リポジトリのCreateが呼ばれていない")
	}
	if w.Notes != "フォーム重視" {
		t.Errorf("Notes = %q, want フォーム重視", w.Notes)
	}
	if w.ID == "" || w.Exercises[0].WorkoutID != w.ID {
		t.Error("IDの採番と種目への紐付けが行われるべき")
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	svc := NewService(&mockWorkoutRepo{}, security.NewNotesSanitizer())

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"実施日時なし", func(in *CreateInput) { in.PerformedAt = time.Time{} }},
		{"種目なし", func(in *CreateInput) { in.Exercises = nil }},
		{"種目名なし", func(in *CreateInput) { in.Exercises[0].Name = "  " }},
		{"負の重量", func(in *CreateInput) { in.Exercises[0].WeightKg = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), "user-1", input)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
				t.Errorf("VALIDATION_FAILED を返すべき: %v", err)
			}
		})
	}
}

func TestService_Get_OtherUsersWorkoutIsNotFound(t *testing.T) {
	repo := &mockWorkoutRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Workout, error) {
			return &model.Workout{ID: id, UserID: "other-user"}, nil
		},
	}
	svc := NewService(repo, security.NewNotesSanitizer())

	_, err := svc.Get(context.Background(), "user-1", "w-1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeWorkoutNotFound {
		t.Errorf("他ユーザーの記録はWORKOUT_NOT_FOUNDにするべき: %v", err)
	}
}

func TestService_Update_ReplacesExercises(t *testing.T) {
	existing := &model.Workout{
		ID:     "w-1",
		UserID: "user-1",
		Exercises: []model.Exercise{
			{ID: "ex-old", WorkoutID: "w-1", Name: "ベンチプレス"},
		},
	}
	var updated *model.Workout
	repo := &mockWorkoutRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Workout, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, workout *model.Workout) error {
			updated = workout
			return nil
		},
	}
	svc := NewService(repo, security.NewNotesSanitizer())

	input := validInput()
	input.Exercises = []ExerciseInput{{Name: "デッドリフト", Sets: 5, Reps: 5, WeightKg: 100}}

	w, err := svc.Update(context.Background(), "user-1", "w-1", input)
	if err != nil {
		t.Fatalf("Update がエラーを返した: %v", err)
	}
	if updated == nil {
		t.Fatal("リポジトリのUpdateが呼ばれていない")
	}
	if len(w.Exercises) != 1 || w.Exercises[0].Name != "デッドリフト" {
		t.Errorf("種目が差し替えられていない: %+v", w.Exercises)
	}
	if w.Exercises[0].ID == "ex-old" {
		t.Error("種目IDは再採番されるべき")
	}
}

func TestService_Delete_NotFoundForMissing(t *testing.T) {
	repo := &mockWorkoutRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Workout, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, security.NewNotesSanitizer())

	err := svc.Delete(context.Background(), "user-1", "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeWorkoutNotFound {
		t.Errorf("存在しない記録はWORKOUT_NOT_FOUNDにするべき: %v", err)
	}
}

func TestService_List_DefaultsLimit(t *testing.T) {
	var gotLimit int
	repo := &mockWorkoutRepo{
		listByUserFn: func(ctx context.Context, userID string, from, to time.Time, limit int) ([]*model.Workout, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	svc := NewService(repo, security.NewNotesSanitizer())

	if _, err := svc.List(context.Background(), "user-1", time.Time{}, time.Now(), 0); err != nil {
		t.Fatalf("List がエラーを返した: %v", err)
	}
	if gotLimit != defaultListLimit {
		t.Errorf("limit = %d, want %d", gotLimit, defaultListLimit)
	}
}
