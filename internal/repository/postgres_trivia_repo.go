package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresTriviaRepo はPostgreSQLを使用したトリビアリポジトリ。
type PostgresTriviaRepo struct {
	db *sql.DB
}

// NewPostgresTriviaRepo はPostgresTriviaRepoを生成する。
func NewPostgresTriviaRepo(db *sql.DB) *PostgresTriviaRepo {
	return &PostgresTriviaRepo{db: db}
}

// RandomFact はランダムに1件のトリビアを返す。
// 1件も存在しない場合はfound=falseを返す。
func (r *PostgresTriviaRepo) RandomFact(ctx context.Context) (string, bool, error) {
	var fact string
	err := r.db.QueryRowContext(ctx,
		`SELECT fact FROM sdg_trivia ORDER BY RANDOM() LIMIT 1`,
	).Scan(&fact)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch trivia fact: %w", err)
	}

	return fact, true, nil
}

// compile-time interface check
var _ TriviaRepository = (*PostgresTriviaRepo)(nil)
