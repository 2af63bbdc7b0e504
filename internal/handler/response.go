package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ZennXzy/Puzzle-Quest/internal/model"
)

// writeJSON はpayloadをJSONとして書き込む。
// エンコード失敗はヘッダー送信後のため、ログ出力のみ行う。
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// respondError はエラーを統一エンベロープ {"success": false, "error": ...} で返す。
// model.APIErrorのコードをHTTPステータスに対応付け、それ以外は500として扱う。
func respondError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Internal server error",
		})
		return
	}

	statusCode := http.StatusInternalServerError
	switch apiErr.Code {
	case model.ErrCodeInvalidInput, model.ErrCodeInvalidEmail:
		statusCode = http.StatusBadRequest
	case model.ErrCodeInvalidCredentials:
		statusCode = http.StatusUnauthorized
	case model.ErrCodeEmailTaken:
		statusCode = http.StatusConflict
	}

	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   apiErr.Message,
	})
}
