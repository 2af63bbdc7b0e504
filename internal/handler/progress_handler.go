package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ZennXzy/Puzzle-Quest/internal/model"
)

// ProgressService は進行状況同期機能のインターフェース。
type ProgressService interface {
	Load(ctx context.Context, userID, authToken string) (*model.ProgressSnapshot, error)
	Save(ctx context.Context, userID string, snapshot *model.ProgressSnapshot, authToken string) error
}

// ProgressHandler は進行状況関連のHTTPリクエストを処理する。
type ProgressHandler struct {
	service ProgressService
}

// NewProgressHandler は新しいProgressHandlerを作成する。
func NewProgressHandler(service ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// progressPayload は進行状況のJSON表現。
// クライアントが省略したフィールドはデフォルト値として扱う。
type progressPayload struct {
	Email             string           `json:"email"`
	CurrentLevel      int              `json:"currentLevel"`
	CompletedImageIDs []string         `json:"completedImageIds"`
	SavedStates       map[string]any   `json:"savedStates"`
	BestTimes         map[string]int64 `json:"bestTimes"`
	Achievements      map[string]bool  `json:"achievements"`
}

func newProgressPayload(s *model.ProgressSnapshot) progressPayload {
	return progressPayload{
		Email:             s.Email,
		CurrentLevel:      s.CurrentLevel,
		CompletedImageIDs: s.CompletedImageIDs,
		SavedStates:       s.SavedStates,
		BestTimes:         s.BestTimes,
		Achievements:      s.Achievements,
	}
}

func (p *progressPayload) toSnapshot() *model.ProgressSnapshot {
	snapshot := &model.ProgressSnapshot{
		Email:             p.Email,
		CurrentLevel:      p.CurrentLevel,
		CompletedImageIDs: p.CompletedImageIDs,
		SavedStates:       p.SavedStates,
		BestTimes:         p.BestTimes,
		Achievements:      p.Achievements,
	}
	snapshot.Normalize()
	return snapshot
}

// saveProgressRequest は進行状況保存リクエストのボディ。
type saveProgressRequest struct {
	UserID    string           `json:"userId"`
	Progress  *progressPayload `json:"progress"`
	AuthToken string           `json:"authToken"`
}

// authTokenFromRequest はAuthorizationヘッダー（Bearer形式）または
// フォールバックのトークン文字列から認証トークンを取り出す。
func authTokenFromRequest(r *http.Request, fallback string) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}
	return fallback
}

// Load はGET /api/progressを処理する。
func (h *ProgressHandler) Load(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		respondError(w, model.NewInvalidInputError("User ID is required"))
		return
	}
	authToken := authTokenFromRequest(r, r.URL.Query().Get("authToken"))

	snapshot, err := h.service.Load(r.Context(), userID, authToken)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"progress": newProgressPayload(snapshot),
	})
}

// Save はPOST /api/progressを処理する。
func (h *ProgressHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, model.NewInvalidInputError("Invalid request body"))
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || req.Progress == nil {
		respondError(w, model.NewInvalidInputError("User ID and progress data are required"))
		return
	}
	authToken := authTokenFromRequest(r, req.AuthToken)

	if err := h.service.Save(r.Context(), req.UserID, req.Progress.toSnapshot(), authToken); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
	})
}
