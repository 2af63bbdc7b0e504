package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZennXzy/Puzzle-Quest/internal/model"
)

// PostgresProgressRepo はPostgreSQLを使用した進行状況リポジトリ。
// コレクション型フィールドはJSONテキストとしてTEXTカラムに格納する。
type PostgresProgressRepo struct {
	db *sql.DB
}

// NewPostgresProgressRepo はPostgresProgressRepoを生成する。
func NewPostgresProgressRepo(db *sql.DB) *PostgresProgressRepo {
	return &PostgresProgressRepo{db: db}
}

// FindByUserID は指定ユーザーのスナップショットを取得する。見つからない場合はnilを返す。
// NULLカラム（フィールド追加前に作成された行）はデフォルト値として扱う。
func (r *PostgresProgressRepo) FindByUserID(ctx context.Context, userID string) (*model.ProgressSnapshot, error) {
	var (
		currentLevel    int
		completedLevels sql.NullString
		savedStates     sql.NullString
		bestTimes       sql.NullString
		achievements    sql.NullString
		email           sql.NullString
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT current_level, completed_levels, saved_states, best_times, achievements, email
		 FROM user_progress WHERE user_id = $1`,
		userID,
	).Scan(&currentLevel, &completedLevels, &savedStates, &bestTimes, &achievements, &email)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find progress by user ID: %w", err)
	}

	snapshot := model.DefaultSnapshot()
	snapshot.CurrentLevel = currentLevel
	snapshot.Email = email.String

	if err := decodeColumn(completedLevels, &snapshot.CompletedImageIDs); err != nil {
		return nil, fmt.Errorf("failed to decode completed_levels: %w", err)
	}
	if err := decodeColumn(savedStates, &snapshot.SavedStates); err != nil {
		return nil, fmt.Errorf("failed to decode saved_states: %w", err)
	}
	if err := decodeColumn(bestTimes, &snapshot.BestTimes); err != nil {
		return nil, fmt.Errorf("failed to decode best_times: %w", err)
	}
	if err := decodeColumn(achievements, &snapshot.Achievements); err != nil {
		return nil, fmt.Errorf("failed to decode achievements: %w", err)
	}

	snapshot.Normalize()
	return snapshot, nil
}

// Upsert はスナップショットを単一のINSERT ON CONFLICTステートメントでUPSERTする。
// 同一ユーザーへの並行保存でも行はuser_idごとに高々1つに保たれる。
func (r *PostgresProgressRepo) Upsert(ctx context.Context, userID string, snapshot *model.ProgressSnapshot) error {
	completedLevels, err := encodeColumn(snapshot.CompletedImageIDs)
	if err != nil {
		return fmt.Errorf("failed to encode completed_levels: %w", err)
	}
	savedStates, err := encodeColumn(snapshot.SavedStates)
	if err != nil {
		return fmt.Errorf("failed to encode saved_states: %w", err)
	}
	bestTimes, err := encodeColumn(snapshot.BestTimes)
	if err != nil {
		return fmt.Errorf("failed to encode best_times: %w", err)
	}
	achievements, err := encodeColumn(snapshot.Achievements)
	if err != nil {
		return fmt.Errorf("failed to encode achievements: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_progress (user_id, current_level, completed_levels, saved_states, best_times, achievements, email, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		     current_level = EXCLUDED.current_level,
		     completed_levels = EXCLUDED.completed_levels,
		     saved_states = EXCLUDED.saved_states,
		     best_times = EXCLUDED.best_times,
		     achievements = EXCLUDED.achievements,
		     email = EXCLUDED.email,
		     updated_at = EXCLUDED.updated_at`,
		userID, snapshot.CurrentLevel, completedLevels, savedStates, bestTimes, achievements,
		snapshot.Email, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}

// encodeColumn はコレクションフィールドをTEXTカラム用のJSON文字列に変換する。
func encodeColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeColumn はTEXTカラムのJSON文字列をデコードする。
// NULLまたは空文字列の場合はdestを変更しない（デフォルト値を維持する）。
func decodeColumn(col sql.NullString, dest any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dest)
}

// compile-time interface check
var _ ProgressRepository = (*PostgresProgressRepo)(nil)
