package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/fitlog/internal/model"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn           func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn        func(ctx context.Context, email string) (*model.User, error)
	createFn             func(ctx context.Context, user *model.User) error
	updatePasswordHashFn func(ctx context.Context, id, passwordHash string) error
	deleteByIDFn         func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if m.updatePasswordHashFn != nil {
		return m.updatePasswordHashFn(ctx, id, passwordHash)
	}
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

// --- テスト ---

func TestService_Register_CreatesUserWithHashedCredential(t *testing.T) {
	hasher := NewHasher("test-pepper")
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := NewService(repo, hasher)

	user, err := svc.Register(context.Background(), "A@B.com", "テスト太郎", "Secret123!")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Email != "a@b.com" {
		t.Errorf("メールアドレスが小文字に正規化されていない: %q", user.Email)
	}
	if created == nil {
		t.Fatal("リポジトリのCreateが呼ばれていない")
	}
	if created.PasswordHash == "Secret123!" || created.PasswordHash == "" {
		t.Error("パスワードが平文または空で保存されている")
	}
	if !hasher.Verify("Secret123!", created.PasswordHash) {
		t.Error("保存されたクレデンシャルが元のパスワードを検証できない")
	}
}

func TestService_Register_DuplicateEmail_ReturnsEmailTaken(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "existing", Email: email}, nil
		},
	}
	svc := NewService(repo, NewHasher("test-pepper"))

	_, err := svc.Register(context.Background(), "a@b.com", "名前", "Secret123!")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
		t.Errorf("err = %v, want EMAIL_TAKEN", err)
	}
}

func TestService_Register_InvalidInput_ReturnsValidationError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, NewHasher("test-pepper"))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"メールアドレスが空", "", "Secret123!"},
		{"メールアドレスに@がない", "not-an-email", "Secret123!"},
		{"パスワードが短い", "a@b.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, "名前", tt.password)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
				t.Errorf("err = %v, want VALIDATION_FAILED", err)
			}
		})
	}
}

func TestService_Login_CorrectPassword_Succeeds(t *testing.T) {
	hasher := NewHasher("test-pepper")
	stored := hasher.NewCredential("Secret123!")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: stored}, nil
		},
	}
	svc := NewService(repo, hasher)

	user, err := svc.Login(context.Background(), "a@b.com", "Secret123!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("UserID = %q, want user-1", user.ID)
	}
}

func TestService_Login_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	hasher := NewHasher("test-pepper")
	stored := hasher.NewCredential("Secret123!")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: stored}, nil
		},
	}
	svc := NewService(repo, hasher)

	_, err := svc.Login(context.Background(), "a@b.com", "WrongPassword!")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("err = %v, want INVALID_CREDENTIALS", err)
	}
}

func TestService_Login_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	svc := NewService(&mockUserRepo{}, NewHasher("test-pepper"))

	_, err := svc.Login(context.Background(), "nobody@example.com", "Secret123!")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("未登録メールでもINVALID_CREDENTIALSを返すはず, got %v", err)
	}
}

func TestService_ChangePassword_OverwritesCredential(t *testing.T) {
	hasher := NewHasher("test-pepper")
	stored := hasher.NewCredential("OldSecret123!")
	var updated string
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, PasswordHash: stored}, nil
		},
		updatePasswordHashFn: func(ctx context.Context, id, passwordHash string) error {
			updated = passwordHash
			return nil
		},
	}
	svc := NewService(repo, hasher)

	if err := svc.ChangePassword(context.Background(), "user-1", "OldSecret123!", "NewSecret456!"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if updated == "" {
		t.Fatal("クレデンシャルが上書きされていない")
	}
	if !hasher.Verify("NewSecret456!", updated) {
		t.Error("新しいパスワードで検証できない")
	}
	if hasher.Verify("OldSecret123!", updated) {
		t.Error("古いパスワードがまだ有効")
	}
}

func TestService_ChangePassword_WrongCurrentPassword_Fails(t *testing.T) {
	hasher := NewHasher("test-pepper")
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, PasswordHash: hasher.NewCredential("OldSecret123!")}, nil
		},
	}
	svc := NewService(repo, hasher)

	err := svc.ChangePassword(context.Background(), "user-1", "WrongOld!", "NewSecret456!")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("err = %v, want INVALID_CREDENTIALS", err)
	}
}

func TestService_DeleteAccount_CorrectPassword_DeletesUser(t *testing.T) {
	hasher := NewHasher("test-pepper")
	stored := hasher.NewCredential("Secret123!")
	var deletedID string
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, PasswordHash: stored}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	svc := NewService(repo, hasher)

	if err := svc.DeleteAccount(context.Background(), "user-1", "Secret123!"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if deletedID != "user-1" {
		t.Errorf("deleted id = %s, want user-1", deletedID)
	}
}

func TestService_DeleteAccount_WrongPassword_DoesNotDelete(t *testing.T) {
	hasher := NewHasher("test-pepper")
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, PasswordHash: hasher.NewCredential("Secret123!")}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			t.Error("パスワード不一致で削除してはならない")
			return nil
		},
	}
	svc := NewService(repo, hasher)

	err := svc.DeleteAccount(context.Background(), "user-1", "Wrong!")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("err = %v, want INVALID_CREDENTIALS", err)
	}
}
