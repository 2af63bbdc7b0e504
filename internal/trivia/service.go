// Package trivia はSDG豆知識のランダム取得を提供する。
package trivia

import (
	"context"
	"fmt"

	"github.com/ZennXzy/Puzzle-Quest/internal/repository"
)

// Service はトリビア取得のビジネスロジックを提供する。
type Service struct {
	repo repository.TriviaRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.TriviaRepository) *Service {
	return &Service{repo: repo}
}

// RandomFact はランダムに1件のトリビアを返す。
// 1件も登録されていない場合はfound=falseを返す。
func (s *Service) RandomFact(ctx context.Context) (string, bool, error) {
	fact, found, err := s.repo.RandomFact(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch random trivia: %w", err)
	}
	return fact, found, nil
}
