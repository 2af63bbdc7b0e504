// Package auth はユーザー登録とログインの認証ロジックを提供する。
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZennXzy/Puzzle-Quest/internal/model"
	"github.com/ZennXzy/Puzzle-Quest/internal/repository"
)

// Service は認証に関するビジネスロジックを提供する。
// パスワードは平文を保存せず、bcryptハッシュのみを永続化する。
type Service struct {
	users      repository.UserRepository
	validate   *validator.Validate
	bcryptCost int
}

// NewService はServiceを生成する。
// bcryptCostに0以下を渡した場合はbcrypt.DefaultCostを使用する。
func NewService(users repository.UserRepository, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		validate:   validator.New(),
		bcryptCost: bcryptCost,
	}
}

// Register は新規ユーザーを登録し、作成されたユーザーを返す。
// メールアドレスの一意性は事前チェックに加えてDBの一意制約でも防御する。
// 同一メールアドレスの並行登録はcheck-then-insertの競合になりうるため、
// 挿入時の制約違反もEmailTakenにマップする。
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return nil, model.NewInvalidInputError("Email and password are required")
	}

	if err := s.validate.Var(email, "email"); err != nil {
		return nil, model.NewInvalidEmailError()
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		slog.Error("failed to check email existence", slog.String("error", err.Error()))
		return nil, model.NewStorageFailureError()
	}
	if exists {
		return nil, model.NewEmailTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, model.NewStorageFailureError()
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError()
		}
		slog.Error("failed to create user", slog.String("error", err.Error()))
		return nil, model.NewStorageFailureError()
	}

	return user, nil
}

// Login はメールアドレスとパスワードでユーザーを認証する。
// メールアドレス不存在とパスワード不一致は区別せず、
// 同一のInvalidCredentialsエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return nil, model.NewInvalidInputError("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("failed to find user by email", slog.String("error", err.Error()))
		return nil, model.NewStorageFailureError()
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	return user, nil
}
