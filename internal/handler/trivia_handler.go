package handler

import (
	"context"
	"net/http"
)

// TriviaService は豆知識機能のインターフェース。
type TriviaService interface {
	RandomFact(ctx context.Context) (string, bool, error)
}

// TriviaHandler はSDG豆知識のHTTPリクエストを処理する。
type TriviaHandler struct {
	service TriviaService
}

// NewTriviaHandler は新しいTriviaHandlerを作成する。
func NewTriviaHandler(service TriviaService) *TriviaHandler {
	return &TriviaHandler{service: service}
}

// Random はGET /api/triviaを処理する。
// 豆知識が1件も存在しない場合はHTTP 200のままsuccess:falseを返す。
func (h *TriviaHandler) Random(w http.ResponseWriter, r *http.Request) {
	fact, found, err := h.service.RandomFact(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if !found {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "No trivia found",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"fact":    fact,
	})
}
