// Package model はドメインモデルを定義する。
package model

// ProgressSnapshot は1ユーザーの保存済みプレイ進行状況を表す。
// ユーザーごとに論理的に1件のみ存在する（upsertセマンティクス）。
type ProgressSnapshot struct {
	// Email はリモートストア互換のための非正規化コピー。ローカル検索には使用しない。
	Email string
	// CurrentLevel は現在のレベル（1以上）。
	CurrentLevel int
	// CompletedImageIDs はクリア済みパズルの識別子集合（順序は意味を持たない）。
	CompletedImageIDs []string
	// SavedStates はレベルキーから途中保存状態へのマッピング。
	// 値は構造化データまたは生文字列（デコード不能なblob）。
	SavedStates map[string]any
	// BestTimes はレベルキーからベストタイム（整数秒）へのマッピング。
	BestTimes map[string]int64
	// Achievements は実績キーから達成フラグへのマッピング。
	Achievements map[string]bool
}

// DefaultSnapshot は保存データが存在しない場合の初期スナップショットを返す。
func DefaultSnapshot() *ProgressSnapshot {
	return &ProgressSnapshot{
		Email:             "",
		CurrentLevel:      1,
		CompletedImageIDs: []string{},
		SavedStates:       map[string]any{},
		BestTimes:         map[string]int64{},
		Achievements:      map[string]bool{},
	}
}

// Normalize はnilのコレクションを空のコレクションに、0以下のレベルを1に補正する。
// クライアントが省略したフィールドをデフォルト値として扱うために使用する。
func (s *ProgressSnapshot) Normalize() {
	if s.CurrentLevel < 1 {
		s.CurrentLevel = 1
	}
	if s.CompletedImageIDs == nil {
		s.CompletedImageIDs = []string{}
	}
	if s.SavedStates == nil {
		s.SavedStates = map[string]any{}
	}
	if s.BestTimes == nil {
		s.BestTimes = map[string]int64{}
	}
	if s.Achievements == nil {
		s.Achievements = map[string]bool{}
	}
}
