package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/fitlog/internal/model"
	"github.com/hitoshi/fitlog/internal/repository"
)

const minPasswordLength = 8

// Service はパスワード認証のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *Hasher
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher *Hasher) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Register は新規ユーザーを登録する。
// メールアドレスが既に使われている場合はEmailTakenエラーを返す。
func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateRegistration(email, password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: s.hasher.NewCredential(password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login はメールアドレスとパスワードで認証する。
// ユーザー未登録とパスワード不一致は区別せず、同一のInvalidCredentialsエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		slog.Warn("login failed: password mismatch",
			slog.String("user_id", user.ID),
		)
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return user, nil
}

// ChangePassword はパスワードを変更する。
// 既存クレデンシャルは新しいソルトで導出した値で上書きされる。
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return model.NewInvalidCredentialsError()
	}
	if len(newPassword) < minPasswordLength {
		return model.NewValidationError(fmt.Sprintf("パスワードは%d文字以上にしてください", minPasswordLength))
	}

	credential := s.hasher.NewCredential(newPassword)
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, credential); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password changed", slog.String("user_id", userID))
	return nil
}

// DeleteAccount は退会処理を実行する。現在のパスワードを検証したうえで
// ユーザーを削除する。関連する記録はDB側のCASCADEで削除される。
func (s *Service) DeleteAccount(ctx context.Context, userID, currentPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return model.NewInvalidCredentialsError()
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user account deleted", slog.String("user_id", userID))
	return nil
}

// GetUser は指定IDのユーザーを取得する。
func (s *Service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// validateRegistration は登録時の入力を検証する。
func validateRegistration(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	if len(password) < minPasswordLength {
		return model.NewValidationError(fmt.Sprintf("パスワードは%d文字以上にしてください", minPasswordLength))
	}
	return nil
}
