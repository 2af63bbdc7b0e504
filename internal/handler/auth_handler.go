// Package handler はHTTPリクエストの処理を担当する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ZennXzy/Puzzle-Quest/internal/model"
)

// AuthService は認証機能のインターフェース。
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
}

// AuthHandler は認証関連のHTTPリクエストを処理する。
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler は新しいAuthHandlerを作成する。
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はAPIレスポンス用のユーザー表現。パスワードハッシュは含めない。
type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func newUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Register はPOST /api/auth/registerを処理する。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, model.NewInvalidInputError("Invalid request body"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Registered successfully",
		"userId":  user.ID,
	})
}

// Login はPOST /api/auth/loginを処理する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, model.NewInvalidInputError("Invalid request body"))
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    newUserResponse(user),
	})
}
