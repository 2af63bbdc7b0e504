package trivia

import (
	"context"
	"errors"
	"testing"
)

type mockTriviaRepo struct {
	randomFactFn func(ctx context.Context) (string, bool, error)
}

func (m *mockTriviaRepo) RandomFact(ctx context.Context) (string, bool, error) {
	if m.randomFactFn != nil {
		return m.randomFactFn(ctx)
	}
	return "", false, nil
}

func TestService_RandomFact_Found(t *testing.T) {
	repo := &mockTriviaRepo{
		randomFactFn: func(ctx context.Context) (string, bool, error) {
			return "Goal 14 is about life below water.", true, nil
		},
	}
	svc := NewService(repo)

	fact, found, err := svc.RandomFact(context.Background())
	if err != nil {
		t.Fatalf("RandomFact returned error: %v", err)
	}
	if !found {
		t.Fatal("expected found=true")
	}
	if fact == "" {
		t.Error("expected non-empty fact")
	}
}

func TestService_RandomFact_Empty(t *testing.T) {
	svc := NewService(&mockTriviaRepo{})

	_, found, err := svc.RandomFact(context.Background())
	if err != nil {
		t.Fatalf("RandomFact returned error: %v", err)
	}
	if found {
		t.Error("expected found=false when table is empty")
	}
}

func TestService_RandomFact_RepoError(t *testing.T) {
	repo := &mockTriviaRepo{
		randomFactFn: func(ctx context.Context) (string, bool, error) {
			return "", false, errors.New("connection lost")
		},
	}
	svc := NewService(repo)

	_, _, err := svc.RandomFact(context.Background())
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}
