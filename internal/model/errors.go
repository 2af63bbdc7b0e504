// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// MessageはそのままAPIレスポンスのerrorフィールドとしてクライアントに返る。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（クライアント向け）
	Category string // カテゴリ: auth, validation, storage, remote
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeInvalidEmail       = "INVALID_EMAIL"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeRemoteStoreFailure = "REMOTE_STORE_FAILURE"
	ErrCodeLocalStoreFailure  = "LOCAL_STORE_FAILURE"
	ErrCodeStorageFailure     = "STORAGE_FAILURE"
)

// NewInvalidInputError は必須フィールド欠落等の入力エラーを生成する。
func NewInvalidInputError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  message,
		Category: "validation",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "Invalid email",
		Category: "validation",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不存在とパスワード不一致のどちらでも同一のレスポンスを返し、
// どちらが誤っていたかを外部から区別できないようにする。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: "auth",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "Email already registered",
		Category: "validation",
	}
}

// NewRemoteStoreFailureError はリモートストア障害エラーを生成する。
// フォールバック先が成功した場合は呼び出し側でこのエラーを握りつぶす。
func NewRemoteStoreFailureError() *APIError {
	return &APIError{
		Code:     ErrCodeRemoteStoreFailure,
		Message:  "Failed to save progress to remote store",
		Category: "remote",
	}
}

// NewLocalStoreFailureError はローカルストア障害エラーを生成する。
func NewLocalStoreFailureError() *APIError {
	return &APIError{
		Code:     ErrCodeLocalStoreFailure,
		Message:  "Failed to save progress",
		Category: "storage",
	}
}

// NewStorageFailureError は汎用ストレージ障害エラーを生成する。
func NewStorageFailureError() *APIError {
	return &APIError{
		Code:     ErrCodeStorageFailure,
		Message:  "Storage failure",
		Category: "storage",
	}
}
