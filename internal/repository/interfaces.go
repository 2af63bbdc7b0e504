// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/ZennXzy/Puzzle-Quest/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
// check-then-insertの競合時にDB側の制約が最終的な防壁となるため、
// Create実行時にも返りうる。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーアカウントの永続化インターフェース。
type UserRepository interface {
	// FindByEmail はメールアドレス完全一致でユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByEmail は指定メールアドレスのユーザーが存在するかを返す。
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// ProgressRepository は進行状況スナップショットの永続化インターフェース。
// コレクション型フィールドはJSONテキストとしてカラムに格納される。
type ProgressRepository interface {
	// FindByUserID は指定ユーザーのスナップショットを取得する。見つからない場合はnilを返す。
	// 古いスナップショットで存在しないカラム（NULL）はフィールドのデフォルト値として扱う。
	FindByUserID(ctx context.Context, userID string) (*model.ProgressSnapshot, error)

	// Upsert はスナップショットを単一のアトミックなステートメントでUPSERTする。
	// 行が存在しなければ挿入し、存在すれば全進行フィールドを上書きする。
	Upsert(ctx context.Context, userID string, snapshot *model.ProgressSnapshot) error
}

// TriviaRepository はトリビア（SDG豆知識）の取得インターフェース。
type TriviaRepository interface {
	// RandomFact はランダムに1件のトリビアを返す。
	// 1件も存在しない場合はfound=falseを返す（エラーではない）。
	RandomFact(ctx context.Context) (fact string, found bool, err error)
}
